// Package keyboard implements a driver for the PS/2 keyboard attached to the
// i8042 controller. Scancodes are translated to ASCII by the IRQ handler and
// queued for foreground consumers.
package keyboard

import (
	"io"
	"thaunos/kernel"
	"thaunos/kernel/cpu"
	"thaunos/kernel/kfmt"
)

const (
	// IRQLine is the PIC line the keyboard raises interrupts on.
	IRQLine = 1

	// Backspace is the character produced by the backspace key.
	Backspace = 8

	dataPort   = 0x60
	statusPort = 0x64

	// statusOutputFull is set while the controller output buffer holds a
	// byte that has not been read from dataPort.
	statusOutputFull = 1 << 0

	// maxFlushReads bounds the number of stale bytes drained at init.
	maxFlushReads = 16
)

var (
	// pauseFn is mocked by tests.
	pauseFn = cpu.Pause

	errNotAttached = &kernel.Error{Module: "ps2-keyboard", Message: "driver not attached to a port bus"}
)

// EOISender is implemented by interrupt controllers that need an explicit
// acknowledgement at the end of each interrupt.
type EOISender interface {
	SendEOI(line uint8)
}

// Driver is a PS/2 keyboard driver. HandleIRQ is the single producer and the
// Read* methods are the single consumer of the driver's character queue.
type Driver struct {
	ports cpu.Ports
	eoi   EOISender

	// Modifier state; only ever touched by HandleIRQ.
	shiftHeld bool
	capsLock  bool

	buf ringBuffer
}

// Attach connects the driver to the port bus it reads scancodes from and the
// interrupt controller it acknowledges interrupts with.
func (d *Driver) Attach(ports cpu.Ports, eoi EOISender) {
	d.ports = ports
	d.eoi = eoi
}

// DriverName returns the name of this driver.
func (*Driver) DriverName() string {
	return "ps2-keyboard"
}

// DriverVersion returns the version of this driver.
func (*Driver) DriverVersion() (uint16, uint16, uint16) {
	return 1, 0, 0
}

// DriverInit drains any bytes left in the controller output buffer so that
// stale scancodes do not reach the queue once the IRQ line is unmasked.
func (d *Driver) DriverInit(w io.Writer) *kernel.Error {
	if d.ports == nil {
		return errNotAttached
	}

	var drained int
	for ; drained < maxFlushReads; drained++ {
		if d.ports.PortReadByte(statusPort)&statusOutputFull == 0 {
			break
		}
		d.ports.PortReadByte(dataPort)
	}

	kfmt.Fprintf(w, "drained %d stale bytes; queue capacity %d\n", drained, BufferSize-1)
	return nil
}

// HandleIRQ services a keyboard interrupt. It reads one scancode, updates the
// modifier state or queues the translated character, and acknowledges the
// interrupt. Characters that arrive while the queue is full are dropped.
//
//go:nosplit
func (d *Driver) HandleIRQ(line uint8) {
	scancode := d.ports.PortReadByte(dataPort)

	if scancode&releaseBit != 0 {
		switch scancode &^ releaseBit {
		case scLeftShift, scRightShift:
			d.shiftHeld = false
		}
	} else {
		switch scancode {
		case scLeftShift, scRightShift:
			d.shiftHeld = true
		case scCapsLock:
			d.capsLock = !d.capsLock
		default:
			if ch := Translate(scancode, d.shiftHeld, d.capsLock); ch != 0 {
				d.buf.push(ch)
			}
		}
	}

	d.eoi.SendEOI(line)
}

// TryReadChar returns the next queued character. If the queue is empty, it
// returns false without waiting.
func (d *Driver) TryReadChar() (byte, bool) {
	return d.buf.pop()
}

// ReadChar busy-waits until a character is available and returns it.
func (d *Driver) ReadChar() byte {
	for {
		if ch, ok := d.buf.pop(); ok {
			return ch
		}
		pauseFn()
	}
}

// ReadLine reads characters into p until a carriage return or line feed is
// received; the terminator is not stored. Backspace removes the last stored
// character. Once p is full, further characters are consumed and discarded
// until the end of the line. ReadLine returns the number of bytes stored in
// p.
func (d *Driver) ReadLine(p []byte) int {
	var n int
	for {
		switch ch := d.ReadChar(); ch {
		case '\r', '\n':
			return n
		case Backspace:
			if n > 0 {
				n--
			}
		default:
			if n < len(p) {
				p[n] = ch
				n++
			}
		}
	}
}

// Buffered returns the number of characters waiting in the queue.
func (d *Driver) Buffered() int {
	return d.buf.len()
}
