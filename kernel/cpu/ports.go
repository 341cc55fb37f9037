package cpu

// ioDelayPort is the POST diagnostics port. Nothing listens on it so writes
// only cost a bus cycle.
const ioDelayPort = 0x80

// Ports is implemented by objects that provide byte-sized access to the CPU
// I/O port space.
type Ports interface {
	// PortReadByte reads a uint8 value from the requested port.
	PortReadByte(port uint16) uint8

	// PortWriteByte writes a uint8 value to the requested port.
	PortWriteByte(port uint16, val uint8)
}

// IOWait waits for roughly a microsecond by writing to an unused port. Slow
// devices such as the 8259 PIC need this settling time between commands.
//
//go:nosplit
func IOWait(p Ports) {
	p.PortWriteByte(ioDelayPort, 0)
}
