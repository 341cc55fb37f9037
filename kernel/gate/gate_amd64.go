package gate

import (
	"encoding/binary"
	"sync/atomic"
	"thaunos/kernel/cpu"
	"thaunos/kernel/kfmt"
	"unsafe"
)

const (
	// NumVectors is the number of slots in the IDT.
	NumVectors = 256

	// IRQBase is the vector that hardware IRQ line 0 is remapped to.
	IRQBase = 0x20

	// NumIRQLines is the number of hardware IRQ lines routed through the
	// cascaded PICs.
	NumIRQLines = 16

	// KernelCodeSelector is the 64-bit code segment selector in the GDT
	// that the bootloader hands over to the kernel.
	KernelCodeSelector = 0x28

	// gateAttrInterrupt marks a present, ring-0, 64-bit interrupt gate.
	// Interrupt gates clear IF on entry.
	gateAttrInterrupt = 0x8e
)

var (
	// loadIDTFn is mocked by tests.
	loadIDTFn = cpu.LoadIDT

	// activeManager receives interrupts from the assembly entry stubs once
	// its table has been loaded.
	activeManager *Manager
)

// Vector returns the IDT vector that the given IRQ line is mapped to.
func Vector(line uint8) uint8 {
	return IRQBase + line
}

// Descriptor is a 16-byte IDT gate descriptor.
type Descriptor struct {
	OffsetLow  uint16
	Selector   uint16
	IST        uint8
	Attributes uint8
	OffsetMid  uint16
	OffsetHigh uint32
	reserved   uint32
}

// SetHandler points the gate to the entrypoint at addr, using the supplied
// code segment selector. If ist is non-zero, the CPU switches to the matching
// interrupt stack table entry before invoking the handler.
func (d *Descriptor) SetHandler(addr uintptr, selector uint16, ist uint8) {
	d.OffsetLow = uint16(addr)
	d.OffsetMid = uint16(addr >> 16)
	d.OffsetHigh = uint32(uint64(addr) >> 32)
	d.Selector = selector
	d.IST = ist & 0x7
	d.Attributes = gateAttrInterrupt
	d.reserved = 0
}

// Handler reassembles the entrypoint address encoded in the descriptor.
func (d *Descriptor) Handler() uintptr {
	return uintptr(uint64(d.OffsetHigh)<<32 | uint64(d.OffsetMid)<<16 | uint64(d.OffsetLow))
}

// Table is the interrupt descriptor table.
type Table [NumVectors]Descriptor

// Acknowledger is implemented by interrupt controllers.
type Acknowledger interface {
	// SendEOI acknowledges the given IRQ line.
	SendEOI(line uint8)

	// Spurious reports whether an interrupt on line was spurious.
	Spurious(line uint8) bool
}

// IRQHandler is implemented by drivers that service an IRQ line. Handlers run
// with interrupts disabled and are responsible for acknowledging the line.
// They must not block or allocate.
type IRQHandler interface {
	HandleIRQ(line uint8)
}

// Route binds an IRQ line to its handler.
type Route struct {
	Line    uint8
	Handler IRQHandler
}

// Manager owns the IDT and routes hardware interrupts to the registered
// IRQ handlers.
type Manager struct {
	table    Table
	idtr     [10]byte
	ack      Acknowledger
	handlers [NumIRQLines]IRQHandler

	installed uint32
}

// Install builds the IDT and loads it into the CPU. Every vector initially
// points to an entrypoint that disables interrupts and halts; the vectors of
// all hardware IRQ lines are then pointed to entrypoints that acknowledge the
// interrupt via ack and return. Finally, each route overrides the default
// handling of its line; routes for lines past NumIRQLines are logged and
// ignored.
//
// Install must complete before interrupts are enabled.
func (m *Manager) Install(ack Acknowledger, routes []Route) {
	var (
		haltAddr uintptr
		irqAddrs [NumIRQLines]uintptr
	)
	entryAddrs(&haltAddr, &irqAddrs)

	for vec := range m.table {
		m.table[vec].SetHandler(haltAddr, KernelCodeSelector, 0)
	}

	m.ack = ack
	for line := uint8(0); line < NumIRQLines; line++ {
		m.table[Vector(line)].SetHandler(irqAddrs[line], KernelCodeSelector, 0)
		m.handlers[line] = nil
	}

	for i := range routes {
		if routes[i].Line >= NumIRQLines {
			kfmt.Printf("[gate] ignoring route for invalid IRQ line %d\n", routes[i].Line)
			continue
		}
		m.handlers[routes[i].Line] = routes[i].Handler
	}

	// The lidt operand is a packed 16-bit limit followed by the 64-bit
	// table base.
	binary.LittleEndian.PutUint16(m.idtr[0:], uint16(unsafe.Sizeof(m.table)-1))
	binary.LittleEndian.PutUint64(m.idtr[2:], uint64(uintptr(unsafe.Pointer(&m.table))))

	activeManager = m
	loadIDTFn(uintptr(unsafe.Pointer(&m.idtr)))
	atomic.StoreUint32(&m.installed, 1)
}

// Installed returns true if the IDT has been built and loaded.
func (m *Manager) Installed() bool {
	return atomic.LoadUint32(&m.installed) == 1
}

// Descriptor returns a copy of the gate descriptor for vec.
func (m *Manager) Descriptor(vec uint8) Descriptor {
	return m.table[vec]
}

// dispatch routes an interrupt on the given IRQ line to its handler.
//
//go:nosplit
func (m *Manager) dispatch(line uint8) {
	if line >= NumIRQLines {
		return
	}

	if m.ack.Spurious(line) {
		// The master raised the cascade line for a spurious slave
		// interrupt and still needs its EOI.
		if line >= 8 {
			m.ack.SendEOI(2)
		}
		return
	}

	if h := m.handlers[line]; h != nil {
		h.HandleIRQ(line)
		return
	}

	m.ack.SendEOI(line)
}

// dispatchIRQ is invoked by the IRQ entrypoints with the line number that
// triggered the interrupt.
//
//go:nosplit
func dispatchIRQ(line uint64) {
	if activeManager != nil {
		activeManager.dispatch(uint8(line))
	}
}

// entryAddrs stores the addresses of the assembly gate entrypoints into halt
// and irq.
func entryAddrs(halt *uintptr, irq *[NumIRQLines]uintptr)

// haltEntry is the default gate entrypoint. It disables interrupts and halts
// the CPU; any exception or interrupt that the kernel does not expect is
// treated as unrecoverable.
func haltEntry()

// irqCommon saves the interrupted context, calls dispatchIRQ and returns to
// the interrupted code via IRETQ.
func irqCommon()

// IRQ gate entrypoints; each one pushes its line number and jumps to
// irqCommon.
func irqEntry0()
func irqEntry1()
func irqEntry2()
func irqEntry3()
func irqEntry4()
func irqEntry5()
func irqEntry6()
func irqEntry7()
func irqEntry8()
func irqEntry9()
func irqEntry10()
func irqEntry11()
func irqEntry12()
func irqEntry13()
func irqEntry14()
func irqEntry15()
