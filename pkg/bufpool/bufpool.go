// Package bufpool recycles scratch buffers used while assembling SMB2
// frames from partial stream reads.
//
// Buffers come in three size classes. Requests above the largest class are
// allocated directly and never pooled.
//
//	buf := bufpool.Get(n)
//	defer bufpool.Put(buf)
package bufpool

import (
	"sync"
)

// Default size classes.
const (
	// SmallSize covers session headers and NEGOTIATE requests.
	SmallSize = 4 << 10

	// MediumSize covers a NEGOTIATE response at the default size limit.
	MediumSize = 64 << 10

	// LargeSize matches a typical SMB2 MaxReadSize chunk.
	LargeSize = 1 << 20
)

// Pool hands out byte slices from a fixed set of size classes.
// It is safe for concurrent use.
type Pool struct {
	classes []sizeClass
}

type sizeClass struct {
	size int
	pool *sync.Pool
}

// NewPool creates a pool with the given ascending class sizes. With no
// sizes the default classes are used.
func NewPool(sizes ...int) *Pool {
	if len(sizes) == 0 {
		sizes = []int{SmallSize, MediumSize, LargeSize}
	}
	p := &Pool{classes: make([]sizeClass, 0, len(sizes))}
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		p.classes = append(p.classes, sizeClass{
			size: size,
			pool: &sync.Pool{New: func() any {
				buf := make([]byte, size)
				return &buf
			}},
		})
	}
	return p
}

// Get returns a slice of length size. Its capacity is that of the smallest
// class that fits; sizes above every class get a fresh, unpooled slice.
func (p *Pool) Get(size int) []byte {
	if size < 0 {
		size = 0
	}
	for _, c := range p.classes {
		if size <= c.size {
			buf := *c.pool.Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns buf to its class. Slices whose capacity matches no class are
// left to the garbage collector. buf must not be used afterwards.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for _, c := range p.classes {
		if cap(buf) == c.size {
			full := buf[:c.size]
			c.pool.Put(&full)
			return
		}
	}
}

var defaultPool = NewPool()

// Get returns a slice of length size from the default pool.
func Get(size int) []byte {
	return defaultPool.Get(size)
}

// Put returns buf to the default pool.
func Put(buf []byte) {
	defaultPool.Put(buf)
}
