package kmain

import (
	"thaunos/device"
	"thaunos/device/keyboard"
	"thaunos/device/serial"
	"thaunos/kernel"
	"thaunos/kernel/cpu"
	"thaunos/kernel/gate"
	"thaunos/kernel/hal"
	"thaunos/kernel/hal/limine"
	"thaunos/kernel/kfmt"
	"thaunos/kernel/pic"
)

// maxLineLen is the capacity of the echo loop line buffer.
const maxLineLen = 128

// The kernel runs without an allocator and Go package initializers are never
// executed, so all long-lived state is static and only assigned from Kmain.
// Package-level initializers are limited to values the linker can lay out.
var (
	ports cpu.NativePorts
	pics  pic.Controller
	kbd   keyboard.Driver
	idt   gate.Manager
	boot  limine.Negotiator
	sys   system

	lineBuf [maxLineLen]byte

	keyboardDriverInfo = device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeKeyboard,
	}

	// The following functions are mocked by tests.
	enableInterruptsFn = cpu.EnableInterrupts
	waitFn             = cpu.WaitForInterrupt
	panicFn            = kfmt.Panic

	errIDTNotInstalled = &kernel.Error{Module: "kmain", Message: "interrupt table not installed before enabling interrupts"}
)

// interruptTable is implemented by gate.Manager.
type interruptTable interface {
	Install(ack gate.Acknowledger, routes []gate.Route)
	Installed() bool
}

// interruptController is implemented by pic.Controller.
type interruptController interface {
	gate.Acknowledger
	MaskAll()
	Init()
	UnmaskIRQ(line uint8)
}

// bootNegotiator is implemented by limine.Negotiator.
type bootNegotiator interface {
	hal.CmdLine
	Negotiate()
	Framebuffer() (limine.FramebufferInfo, bool)
	LoadedRevision() (uint64, bool)
}

// lineReader is implemented by keyboard.Driver.
type lineReader interface {
	gate.IRQHandler
	ReadLine(p []byte) int
}

// system groups the components brought up by Kmain.
type system struct {
	idt      interruptTable
	pics     interruptController
	boot     bootNegotiator
	kbd      lineReader
	detectHW func(hal.CmdLine)

	routes [1]gate.Route
}

func probeKeyboard() device.Driver {
	return &kbd
}

// Kmain is the only Go symbol that is visible (exported) from the boot
// entrypoint. The bootloader transfers control with interrupts disabled.
//
// Kmain is not expected to return. If it does, the entrypoint code will halt
// the CPU.
//
//go:noinline
func Kmain() {
	pics = pic.New(ports)
	kbd.Attach(ports, &pics)
	if err := device.RegisterDriver(&serial.COM1DriverInfo); err != nil {
		panicFn(err)
	}
	if err := device.RegisterDriver(&keyboardDriverInfo); err != nil {
		panicFn(err)
	}

	sys.idt = &idt
	sys.pics = &pics
	sys.boot = &boot
	sys.kbd = &kbd
	sys.detectHW = hal.DetectHardware
	sys.bringUp()

	if v, _ := boot.CmdLineValue("echo"); v == "off" {
		for {
			waitFn()
		}
	}

	for {
		echoLine(&kbd)
	}
}

// bringUp installs the interrupt table, negotiates with the bootloader,
// initializes the device drivers, programs the interrupt controller and
// finally enables interrupts.
func (s *system) bringUp() {
	s.routes[0] = gate.Route{Line: keyboard.IRQLine, Handler: s.kbd}
	s.idt.Install(s.pics, s.routes[:])

	s.boot.Negotiate()
	printBanner(s.boot)

	if s.detectHW != nil {
		s.detectHW(s.boot)
	}

	s.pics.MaskAll()
	s.pics.Init()
	s.pics.UnmaskIRQ(keyboard.IRQLine)

	if !s.idt.Installed() {
		panicFn(errIDTNotInstalled)
		return
	}

	enableInterruptsFn()
	kfmt.Printf("[kmain] interrupts enabled\n")
}

// printBanner logs the boot details.
func printBanner(boot bootNegotiator) {
	kfmt.Printf("[kmain] thaunos booting (limine base revision %d", limine.BaseRevision)
	if rev, ok := boot.LoadedRevision(); ok {
		kfmt.Printf(", loaded with %d", rev)
	}
	kfmt.Printf(")\n")

	if fb, ok := boot.Framebuffer(); ok {
		kfmt.Printf("[kmain] framebuffer: %dx%d, %d bpp, pitch %d at 0x%16x\n", fb.Width, fb.Height, fb.Bpp, fb.Pitch, fb.Address)
	}
}

// echoLine reads a line from r and echoes it back to the kernel log.
func echoLine(r lineReader) {
	kfmt.Printf("> ")
	n := r.ReadLine(lineBuf[:])
	kfmt.Printf("%s\n", lineBuf[:n])
}
