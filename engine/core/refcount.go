package core

import "sync/atomic"

// RefCount tracks shared ownership of a native object. It starts with one
// reference held by the creator and runs release when the last reference is
// dropped.
type RefCount struct {
	count   atomic.Int32
	release func()
}

func NewRefCount(release func()) *RefCount {
	r := &RefCount{release: release}
	r.count.Store(1)
	return r
}

// Retain adds a reference. Retaining an object that was already released is a
// programming error and panics.
func (r *RefCount) Retain() {
	for {
		n := r.count.Load()
		if n <= 0 {
			panic(ErrReleased)
		}
		if r.count.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Release drops a reference and reports whether it was the last one.
func (r *RefCount) Release() bool {
	n := r.count.Add(-1)
	if n < 0 {
		panic(ErrReleased)
	}
	if n > 0 {
		return false
	}
	if r.release != nil {
		r.release()
	}
	return true
}

func (r *RefCount) Count() int32 {
	return r.count.Load()
}
