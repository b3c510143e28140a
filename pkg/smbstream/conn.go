package smbstream

import (
	"errors"
	"io"
	"sync"

	"github.com/marmos91/smbwire/pkg/posixerr"
)

// Metrics observes raw transfers on a Conn. A nil Metrics disables
// collection.
type Metrics interface {
	ObserveRead(bytes int, err error)
	ObserveWrite(bytes int, err error)
}

// Option configures a Conn.
type Option func(*Conn)

// WithMetrics attaches a metrics observer.
func WithMetrics(m Metrics) Option {
	return func(c *Conn) {
		c.metrics = m
	}
}

// Conn exposes an io.ReadWriter (typically a net.Conn) through the raw
// InputStream/OutputStream contract. A failed transfer returns -errno and
// the typed error is kept for StreamError.
//
// One reader and one writer may use a Conn concurrently.
type Conn struct {
	rw      io.ReadWriter
	metrics Metrics

	mu        sync.Mutex
	lastErr   error
	pendingRd error // error delivered alongside data, reported on the next read
	eof       bool
}

// NewConn wraps rw.
func NewConn(rw io.ReadWriter, opts ...Option) *Conn {
	c := &Conn{rw: rw}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RawRead implements InputStream.
func (c *Conn) RawRead(p []byte) int {
	c.mu.Lock()
	pending, eof := c.pendingRd, c.eof
	c.pendingRd = nil
	c.mu.Unlock()

	if pending != nil {
		return c.fail(pending, c.observeRead)
	}
	if eof || len(p) == 0 {
		return 0
	}

	n, err := c.rw.Read(p)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		c.mu.Lock()
		c.eof = true
		c.mu.Unlock()
	case n > 0:
		c.mu.Lock()
		c.pendingRd = err
		c.mu.Unlock()
	default:
		return c.fail(err, c.observeRead)
	}

	c.observeRead(n, nil)
	return n
}

// RawWrite implements OutputStream.
func (c *Conn) RawWrite(p []byte) int {
	n, err := c.rw.Write(p)
	if err != nil && n == 0 {
		return c.fail(err, c.observeWrite)
	}
	if err != nil {
		// Partial write; the caller sees the short count and the error on retry.
		c.setErr(posixerr.FromError(err, posixerr.EIO))
	}
	c.observeWrite(n, nil)
	return n
}

// StreamError implements ErrorReporter.
func (c *Conn) StreamError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close closes the underlying stream when it supports it.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Conn) fail(err error, observe func(int, error)) int {
	pe := posixerr.FromError(err, posixerr.EIO)
	c.setErr(pe)
	observe(0, pe)
	if pe.Code == 0 {
		return -int(posixerr.EIO)
	}
	return -int(pe.Code)
}

func (c *Conn) setErr(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Conn) observeRead(n int, err error) {
	if c.metrics != nil {
		c.metrics.ObserveRead(n, err)
	}
}

func (c *Conn) observeWrite(n int, err error) {
	if c.metrics != nil {
		c.metrics.ObserveWrite(n, err)
	}
}
