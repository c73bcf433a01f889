package archive

import (
	"context"
	"io"
	"sync/atomic"
)

// countingWriter counts bytes and refuses writes once ctx is done, so a
// build that timed out stops at its next write.
type countingWriter struct {
	ctx context.Context
	w   io.Writer
	n   atomic.Int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := c.w.Write(p)
	c.n.Add(int64(n))
	return n, err
}

// Count returns the number of bytes written so far.
func (c *countingWriter) Count() int64 {
	return c.n.Load()
}
