package cpu

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt disables interrupts and stops instruction execution. Halt never
// returns.
func Halt()

// WaitForInterrupt enables interrupts and stops instruction execution until
// the next interrupt has been serviced.
func WaitForInterrupt()

// Pause hints the CPU that the caller is in a busy-wait loop.
func Pause()

// LoadIDT loads the IDT register with the 10-byte limit/base operand located
// at idtrAddr.
func LoadIDT(idtrAddr uintptr)

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// NativePorts implements Ports using the IN/OUT instructions.
type NativePorts struct{}

// PortWriteByte writes a uint8 value to the requested port.
//
//go:nosplit
func (NativePorts) PortWriteByte(port uint16, val uint8) {
	PortWriteByte(port, val)
}

// PortReadByte reads a uint8 value from the requested port.
//
//go:nosplit
func (NativePorts) PortReadByte(port uint16) uint8 {
	return PortReadByte(port)
}
