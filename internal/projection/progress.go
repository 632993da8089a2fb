package projection

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// ProgressCallback receives progress notifications while a run is projecting
// files. Implementations must be safe for concurrent use; parallel batches
// report completions from their own goroutines.
type ProgressCallback interface {
	// OnStart is called once with the number of files to project.
	OnStart(total int)

	// OnProgress is called after each file with the running completion count.
	OnProgress(current, total int)

	// OnComplete is called when all batches have finished.
	OnComplete()
}

// NoOpProgressCallback implements ProgressCallback and does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)             {}
func (NoOpProgressCallback) OnProgress(current, total int) {}
func (NoOpProgressCallback) OnComplete()                   {}

// ConsoleProgressCallback prints a progress line every Nth completed file.
type ConsoleProgressCallback struct {
	writer io.Writer
	prefix string
	every  int
	mu     sync.Mutex
}

// NewConsoleProgressCallback creates a console progress reporter printing
// every 50th file.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer: writer,
		prefix: prefix,
		every:  50,
	}
}

// WithInterval sets how many files pass between progress lines.
func (c *ConsoleProgressCallback) WithInterval(every int) *ConsoleProgressCallback {
	if every > 0 {
		c.every = every
	}
	return c
}

// OnStart prints the total file count.
func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "%sProjecting %d files\n", c.prefix, total)
}

// OnProgress prints a line every Nth file and on the final one.
func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	if current%c.every != 0 && current != total {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "%s%d/%d files\n", c.prefix, current, total)
}

// OnComplete prints a completion line.
func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "%sCompleted\n", c.prefix)
}
