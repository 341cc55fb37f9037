// Package mmio provides load/store primitives for memory that is shared with
// hardware or with the bootloader. The compiler may not cache, reorder or
// eliminate any of these accesses.
package mmio

import (
	"sync/atomic"
	"unsafe"
)

// Load64 reads the 64-bit value at addr.
//
//go:nosplit
func Load64(addr *uint64) uint64 {
	return atomic.LoadUint64(addr)
}

// Store64 writes val to the 64-bit location at addr.
//
//go:nosplit
func Store64(addr *uint64, val uint64) {
	atomic.StoreUint64(addr, val)
}

// LoadPointer reads the pointer stored at addr.
//
//go:nosplit
func LoadPointer(addr *unsafe.Pointer) unsafe.Pointer {
	return atomic.LoadPointer(addr)
}
