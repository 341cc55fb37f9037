// Package pic drives the two cascaded 8259 programmable interrupt
// controllers of the PC platform.
package pic

import "thaunos/kernel/cpu"

const (
	masterCmdPort  = 0x20
	masterDataPort = 0x21
	slaveCmdPort   = 0xa0
	slaveDataPort  = 0xa1

	// ICW1: start initialization; an ICW4 will follow.
	icw1Init = 0x10
	icw1ICW4 = 0x01

	// ICW4: 8086/88 mode.
	icw4Mode8086 = 0x01

	// OCW2 non-specific end-of-interrupt.
	cmdEOI = 0x20

	// OCW3 command selecting the in-service register for the next read
	// of the command port.
	cmdReadISR = 0x0b
)

const (
	// MasterOffset is the vector that IRQ 0 is mapped to.
	MasterOffset = 0x20

	// SlaveOffset is the vector that IRQ 8 is mapped to.
	SlaveOffset = 0x28

	// NumLines is the number of IRQ lines served by both controllers.
	NumLines = 16

	// CascadeLine is the master line the slave controller is wired to.
	CascadeLine = 2
)

// Controller manages the master/slave 8259 pair. All state lives in the
// controllers' registers; the Controller only carries the port bus.
type Controller struct {
	ports cpu.Ports
}

// New returns a Controller that talks to the 8259 pair through ports.
func New(ports cpu.Ports) Controller {
	return Controller{ports: ports}
}

// Init remaps IRQ 0-7 to vectors 0x20-0x27 and IRQ 8-15 to vectors 0x28-0x2f
// so that they do not collide with CPU exceptions. The mask registers are
// saved before the initialization handshake and restored afterwards so
// remapping never implicitly unmasks a line.
func (c *Controller) Init() {
	masterMask := c.ports.PortReadByte(masterDataPort)
	slaveMask := c.ports.PortReadByte(slaveDataPort)

	// ICW1: begin init sequence in cascade mode
	c.write(masterCmdPort, icw1Init|icw1ICW4)
	c.write(slaveCmdPort, icw1Init|icw1ICW4)

	// ICW2: vector offsets
	c.write(masterDataPort, MasterOffset)
	c.write(slaveDataPort, SlaveOffset)

	// ICW3: the master gets a bitmask of slave lines; the slave gets its
	// cascade identity.
	c.write(masterDataPort, 1<<CascadeLine)
	c.write(slaveDataPort, CascadeLine)

	// ICW4
	c.write(masterDataPort, icw4Mode8086)
	c.write(slaveDataPort, icw4Mode8086)

	c.write(masterDataPort, masterMask)
	c.write(slaveDataPort, slaveMask)
}

// MaskAll suppresses every IRQ line on both controllers.
func (c *Controller) MaskAll() {
	c.write(masterDataPort, 0xff)
	c.write(slaveDataPort, 0xff)
}

// UnmaskIRQ enables delivery of the given IRQ line. Unmasking a slave line
// also unmasks the cascade line on the master as slave interrupts cannot
// reach the CPU otherwise.
func (c *Controller) UnmaskIRQ(line uint8) {
	if line < 8 {
		mask := c.ports.PortReadByte(masterDataPort) &^ (1 << line)
		c.ports.PortWriteByte(masterDataPort, mask)
		return
	}

	mask := c.ports.PortReadByte(slaveDataPort) &^ (1 << (line - 8))
	c.ports.PortWriteByte(slaveDataPort, mask)

	mask = c.ports.PortReadByte(masterDataPort) &^ (1 << CascadeLine)
	c.ports.PortWriteByte(masterDataPort, mask)
}

// MaskIRQ suppresses the given IRQ line. The cascade line is left untouched
// as other slave lines may still depend on it.
func (c *Controller) MaskIRQ(line uint8) {
	port, bit := uint16(masterDataPort), line
	if line >= 8 {
		port, bit = slaveDataPort, line-8
	}

	c.ports.PortWriteByte(port, c.ports.PortReadByte(port)|(1<<bit))
}

// Masks returns the current contents of the master and slave mask
// registers.
func (c *Controller) Masks() (master, slave uint8) {
	return c.ports.PortReadByte(masterDataPort), c.ports.PortReadByte(slaveDataPort)
}

// SendEOI acknowledges the given IRQ line. Lines served by the slave need an
// EOI on both controllers. It must be invoked exactly once per serviced
// interrupt; otherwise the line stays latched and never fires again.
//
//go:nosplit
func (c *Controller) SendEOI(line uint8) {
	if line >= 8 {
		c.ports.PortWriteByte(slaveCmdPort, cmdEOI)
	}
	c.ports.PortWriteByte(masterCmdPort, cmdEOI)
}

// Spurious reports whether an interrupt on line is spurious. The 8259 raises
// IRQ 7 (or IRQ 15) when a request disappears before it is acknowledged; in
// that case the line's in-service bit is clear and no EOI must be sent to the
// controller that raised it. Only lines 7 and 15 can be spurious.
//
//go:nosplit
func (c *Controller) Spurious(line uint8) bool {
	var cmdPort uint16
	switch line {
	case 7:
		cmdPort = masterCmdPort
	case 15:
		cmdPort = slaveCmdPort
	default:
		return false
	}

	c.ports.PortWriteByte(cmdPort, cmdReadISR)
	return c.ports.PortReadByte(cmdPort)&(1<<7) == 0
}

// write sends a command word and gives the controller time to settle.
func (c *Controller) write(port uint16, val uint8) {
	c.ports.PortWriteByte(port, val)
	cpu.IOWait(c.ports)
}
