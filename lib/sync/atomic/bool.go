package atomic

import "sync/atomic"

// Boolean is a boolean flag, all actions of it are atomic
type Boolean struct {
	v uint32
}

// Get reads the value atomically
func (b *Boolean) Get() bool {
	return atomic.LoadUint32(&b.v) != 0
}

// Set writes the value atomically
func (b *Boolean) Set(v bool) {
	atomic.StoreUint32(&b.v, toUint32(v))
}

// CompareAndSwap sets the value to new only if it currently equals old, reports whether it was swapped
func (b *Boolean) CompareAndSwap(old, new bool) bool {
	return atomic.CompareAndSwapUint32(&b.v, toUint32(old), toUint32(new))
}

func toUint32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}
