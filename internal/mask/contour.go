package mask

// componentStats tracks the size and bounding box of one connected component.
type componentStats struct {
	label int
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

// OuterContour extracts the outer boundary of the largest 4-connected
// foreground component as an ordered pixel ring using Moore-neighbour
// tracing. Collinear intermediate points are elided. It returns nil when the
// bitmap has no foreground or the traced boundary has fewer than three
// distinct points; that is the normal outcome for noisy detections, not an
// error.
func OuterContour(b Bitmap) []Point {
	if b.Width <= 0 || b.Height <= 0 || len(b.Bits) != b.Width*b.Height {
		return nil
	}

	labels, comps := labelComponents(b)
	if len(comps) == 0 {
		return nil
	}

	// The instance mask should hold a single blob; with stray speckles we
	// keep the largest component as the crown outline.
	best := comps[0]
	for _, c := range comps[1:] {
		if c.count > best.count {
			best = c
		}
	}

	pts := traceBoundary(labels, b.Width, b.Height, best)
	if len(pts) < 3 {
		return nil
	}
	return pts
}

// labelComponents assigns a positive label to every 4-connected foreground
// component and returns per-component statistics.
func labelComponents(b Bitmap) ([]int, []componentStats) {
	labels := make([]int, b.Width*b.Height)
	var comps []componentStats
	next := 1

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			idx := y*b.Width + x
			if !b.Bits[idx] || labels[idx] != 0 {
				continue
			}
			comps = append(comps, floodFill(b, labels, x, y, next))
			next++
		}
	}
	return labels, comps
}

// floodFill labels one component via BFS from a seed pixel.
func floodFill(b Bitmap, labels []int, sx, sy, label int) componentStats {
	st := componentStats{label: label, minX: sx, minY: sy, maxX: sx, maxY: sy}
	queue := []Point{{sx, sy}}
	labels[sy*b.Width+sx] = label

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		st.count++
		if p.X < st.minX {
			st.minX = p.X
		}
		if p.X > st.maxX {
			st.maxX = p.X
		}
		if p.Y < st.minY {
			st.minY = p.Y
		}
		if p.Y > st.maxY {
			st.maxY = p.Y
		}

		for _, d := range [4]Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := p.X+d.X, p.Y+d.Y
			if !b.At(nx, ny) {
				continue
			}
			nidx := ny*b.Width + nx
			if labels[nidx] == 0 {
				labels[nidx] = label
				queue = append(queue, Point{nx, ny})
			}
		}
	}
	return st
}

// traceBoundary walks the component's outer boundary clockwise using
// Moore-neighbour tracing. Points are pixel coordinates of boundary pixels.
func traceBoundary(labels []int, w, h int, st componentStats) []Point {
	sx, sy := startingBoundaryPixel(labels, w, h, st)
	if sx == -1 {
		return nil
	}

	pts := make([]Point, 0, 64)
	appendPoint := func(p Point) {
		n := len(pts)
		if n >= 2 {
			a, b := pts[n-2], pts[n-1]
			cross := (b.X-a.X)*(p.Y-b.Y) - (b.Y-a.Y)*(p.X-b.X)
			dot := (b.X-a.X)*(p.X-b.X) + (b.Y-a.Y)*(p.Y-b.Y)
			// Drop the middle point of same-direction collinear triples.
			// A reversal (dot < 0) is the tip of a one-pixel-wide spur and
			// stays in the ring.
			if cross == 0 && dot > 0 {
				pts = pts[:n-1]
			}
		}
		pts = append(pts, p)
	}

	cx, cy := sx, sy
	bx, by := sx-1, sy // backtrack starts to the left of the seed
	appendPoint(Point{cx, cy})

	// Jacob's stopping criterion: the walk has wrapped when it is about to
	// repeat its first move out of the start pixel.
	var secondX, secondY int
	haveSecond := false
	maxSteps := w*h*4 + 8

	for steps := 0; steps < maxSteps; steps++ {
		nx, ny, nbx, nby, ok := nextBoundaryPixel(labels, w, h, st.label, cx, cy, bx, by)
		if !ok {
			break
		}
		if haveSecond && cx == sx && cy == sy && nx == secondX && ny == secondY {
			break
		}
		bx, by = nbx, nby
		cx, cy = nx, ny
		if !haveSecond {
			secondX, secondY = cx, cy
			haveSecond = true
		}

		if last := pts[len(pts)-1]; last.X != cx || last.Y != cy {
			appendPoint(Point{cx, cy})
		}
	}

	// Remove a duplicated closing point if present.
	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// startingBoundaryPixel scans the component's bounding box for the first
// pixel with a 4-neighbour outside the component.
func startingBoundaryPixel(labels []int, w, h int, st componentStats) (int, int) {
	isLabel := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == st.label
	}
	for y := st.minY; y <= st.maxY; y++ {
		for x := st.minX; x <= st.maxX; x++ {
			if !isLabel(x, y) {
				continue
			}
			if !isLabel(x+1, y) || !isLabel(x-1, y) || !isLabel(x, y+1) || !isLabel(x, y-1) {
				return x, y
			}
		}
	}
	return -1, -1
}

// nextBoundaryPixel finds the next component pixel scanning the Moore
// neighbourhood clockwise from the backtrack position.
func nextBoundaryPixel(labels []int, w, h, label, cx, cy, bx, by int) (int, int, int, int, bool) {
	isLabel := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return labels[y*w+x] == label
	}

	// 8-neighbourhood in clockwise order: E, SE, S, SW, W, NW, N, NE.
	ndx := [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy := [8]int{0, 1, 1, 1, 0, -1, -1, -1}

	start := 0
	for i := 0; i < 8; i++ {
		if ndx[i] == bx-cx && ndy[i] == by-cy {
			start = (i + 1) % 8
			break
		}
	}

	for k := 0; k < 8; k++ {
		i := (start + k) % 8
		tx, ty := cx+ndx[i], cy+ndy[i]
		if isLabel(tx, ty) {
			return tx, ty, cx, cy, true
		}
		bx, by = tx, ty
	}
	return 0, 0, bx, by, false
}
