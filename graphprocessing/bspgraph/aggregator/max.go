package aggregator

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Float64Max implements a concurrent-safe aggregator that keeps track of the
// largest float64 value it has seen.
type Float64Max struct {
	prevMax float64
	curMax  float64
}

// Type implements bspgraph.Aggregator.
func (a *Float64Max) Type() string {
	return "Float64Max"
}

// Get returns the current maximum.
func (a *Float64Max) Get() interface{} {
	return loadFloat64(&a.curMax)
}

// Set the current maximum to v.
func (a *Float64Max) Set(v interface{}) {
	v64 := v.(float64)
	storeFloat64(&a.prevMax, v64)
	storeFloat64(&a.curMax, v64)
}

// Aggregate replaces the current maximum with v if v is larger.
func (a *Float64Max) Aggregate(v interface{}) {
	for v64 := v.(float64); ; {
		oldV := loadFloat64(&a.curMax)
		if v64 <= oldV {
			return
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curMax)),
			math.Float64bits(oldV),
			math.Float64bits(v64),
		) {
			return
		}
	}
}

// Delta returns the change of the maximum since the last call to Delta or Set.
func (a *Float64Max) Delta() interface{} {
	for {
		curMax := loadFloat64(&a.curMax)
		prevMax := loadFloat64(&a.prevMax)
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.prevMax)),
			math.Float64bits(prevMax),
			math.Float64bits(curMax),
		) {
			return curMax - prevMax
		}
	}
}
