// Package limine negotiates with a Limine-compliant bootloader for the
// resources the kernel needs to run.
package limine

import (
	"sync/atomic"
	"thaunos/kernel"
	"thaunos/kernel/kfmt"
	"thaunos/kernel/mmio"
)

// maxCmdLineLen bounds the scan for the command line NUL terminator.
const maxCmdLineLen = 4096

// MemoryModelRGB is the only framebuffer memory model defined by the
// protocol.
const MemoryModelRGB = 1

var (
	// panicFn is mocked by tests.
	panicFn = kfmt.Panic

	errUnsupportedRevision = &kernel.Error{Module: "limine", Message: "bootloader does not support the requested base revision"}
	errNoFramebuffer       = &kernel.Error{Module: "limine", Message: "no framebuffer available"}
)

// FramebufferInfo describes the framebuffer negotiated with the bootloader.
type FramebufferInfo struct {
	// Virtual address of the first pixel.
	Address uintptr

	// Width and height in pixels.
	Width, Height uint64

	// Row pitch in bytes.
	Pitch uint64

	// Bits per pixel.
	Bpp uint16

	// Pixel layout; Limine only defines MemoryModelRGB.
	MemoryModel uint8

	// The size and position (in bits) of each color component.
	RedMaskSize, RedMaskShift     uint8
	GreenMaskSize, GreenMaskShift uint8
	BlueMaskSize, BlueMaskShift   uint8
}

// Negotiator validates the bootloader responses to the kernel's request
// records and publishes the resources obtained through them. The zero value
// uses the request records embedded in the kernel image.
type Negotiator struct {
	base    *[3]uint64
	fbReq   *request
	cmdReq  *request
	fb      FramebufferInfo
	cmdLine string

	// ready is set with release semantics once fb and cmdLine have been
	// populated.
	ready atomic.Bool
}

// Negotiate validates the bootloader responses and copies the details of the
// first framebuffer. If the bootloader does not support the requested base
// revision or no framebuffer is available, Negotiate halts the system and
// never returns.
func (n *Negotiator) Negotiate() {
	if n.base == nil {
		n.base, n.fbReq, n.cmdReq = &baseRevision, &framebufferRequest, &cmdLineRequest
	}

	if mmio.Load64(&n.base[2]) != 0 {
		panicFn(errUnsupportedRevision)
		return
	}

	fb := n.firstFramebuffer()
	if fb == nil {
		panicFn(errNoFramebuffer)
		return
	}

	n.fb = FramebufferInfo{
		Address:        fb.address,
		Width:          fb.width,
		Height:         fb.height,
		Pitch:          fb.pitch,
		Bpp:            fb.bpp,
		MemoryModel:    fb.memoryModel,
		RedMaskSize:    fb.redMaskSize,
		RedMaskShift:   fb.redMaskShift,
		GreenMaskSize:  fb.greenMaskSize,
		GreenMaskShift: fb.greenMaskShift,
		BlueMaskSize:   fb.blueMaskSize,
		BlueMaskShift:  fb.blueMaskShift,
	}
	n.cmdLine = readCmdLine(n.cmdReq)

	n.ready.Store(true)
}

// firstFramebuffer returns the first framebuffer reported by the bootloader
// or nil if the framebuffer request was not honored.
func (n *Negotiator) firstFramebuffer() *framebufferRecord {
	resp := (*framebufferResponse)(mmio.LoadPointer(&n.fbReq.response))
	if resp == nil || resp.framebufferCount < 1 || resp.framebuffers == nil {
		return nil
	}

	return *(**framebufferRecord)(resp.framebuffers)
}

// Framebuffer returns the negotiated framebuffer details. It returns false if
// negotiation has not completed.
func (n *Negotiator) Framebuffer() (FramebufferInfo, bool) {
	if !n.ready.Load() {
		return FramebufferInfo{}, false
	}
	return n.fb, true
}

// LoadedRevision returns the base revision the bootloader loaded the kernel
// with. It returns false if the bootloader did not report it.
func (n *Negotiator) LoadedRevision() (uint64, bool) {
	if n.base == nil {
		return 0, false
	}

	rev := mmio.Load64(&n.base[1])
	if rev == baseRevisionMagic1 {
		return 0, false
	}
	return rev, true
}
