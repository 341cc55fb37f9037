// Package serial implements a polled driver for 16550-compatible UARTs. The
// driver serves as a kernel log sink.
package serial

import (
	"io"
	"thaunos/device"
	"thaunos/kernel"
	"thaunos/kernel/cpu"
	"thaunos/kernel/kfmt"
)

const (
	// COM1 is the base I/O port of the first serial port.
	COM1 = 0x3f8

	// Baud is the line speed the port is programmed with.
	Baud = 38400

	// The UART input clock divided by 16.
	baseClock = 115200

	// Register offsets from the port base.
	regData        = 0 // THR/RBR; divisor latch low while DLAB is set
	regIntEnable   = 1 // IER; divisor latch high while DLAB is set
	regFIFOControl = 2
	regLineControl = 3
	regModemCtrl   = 4
	regLineStatus  = 5
	regScratch     = 7

	lineControlDLAB = 0x80
	lineControl8N1  = 0x03

	// Enable and clear both FIFOs with a 14-byte receive threshold.
	fifoControlInit = 0xc7

	// DTR, RTS and OUT2.
	modemControlInit = 0x0b

	lineStatusTHREmpty = 0x20

	scratchProbeValue = 0xae

	// maxTxSpins bounds the wait for the transmitter holding register.
	maxTxSpins = 1 << 16
)

var (
	// pauseFn is mocked by tests.
	pauseFn = cpu.Pause

	// probePorts is the port bus used by the probe function. It is
	// mocked by tests; a nil value selects cpu.NativePorts.
	probePorts cpu.Ports

	// com1 is the driver instance handed out by the COM1 probe.
	com1 Port

	// COM1DriverInfo registers the COM1 probe with the device package.
	// Output sinks are probed early so that the rest of the hardware
	// detection log reaches them.
	COM1DriverInfo = device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForCOM1,
	}

	errTxTimeout = &kernel.Error{Module: "serial", Message: "timed out waiting for transmitter"}
)

// Port is a driver for a 16550-compatible UART. Port implements io.Writer
// and io.ByteWriter so it can be registered as an output sink.
type Port struct {
	ports cpu.Ports
	base  uint16
}

// NewPort returns a driver for the UART at the supplied base port.
func NewPort(ports cpu.Ports, base uint16) *Port {
	return &Port{ports: ports, base: base}
}

// DriverName returns the name of this driver.
func (*Port) DriverName() string {
	return "serial-16550"
}

// DriverVersion returns the version of this driver.
func (*Port) DriverVersion() (uint16, uint16, uint16) {
	return 1, 0, 0
}

// DriverInit programs the UART for Baud 8N1 operation with FIFOs enabled and
// its interrupts disabled.
func (p *Port) DriverInit(w io.Writer) *kernel.Error {
	divisor := uint16(baseClock / Baud)

	p.ports.PortWriteByte(p.base+regIntEnable, 0)
	p.ports.PortWriteByte(p.base+regLineControl, lineControlDLAB)
	p.ports.PortWriteByte(p.base+regData, uint8(divisor))
	p.ports.PortWriteByte(p.base+regIntEnable, uint8(divisor>>8))
	p.ports.PortWriteByte(p.base+regLineControl, lineControl8N1)
	p.ports.PortWriteByte(p.base+regFIFOControl, fifoControlInit)
	p.ports.PortWriteByte(p.base+regModemCtrl, modemControlInit)

	kfmt.Fprintf(w, "port 0x%x, %d baud 8N1\n", p.base, Baud)
	return nil
}

// WriteByte transmits b once the transmitter holding register is empty.
func (p *Port) WriteByte(b byte) error {
	for spins := 0; p.ports.PortReadByte(p.base+regLineStatus)&lineStatusTHREmpty == 0; spins++ {
		if spins == maxTxSpins {
			return errTxTimeout
		}
		pauseFn()
	}

	p.ports.PortWriteByte(p.base+regData, b)
	return nil
}

// Write transmits the contents of data translating each '\n' to "\r\n". It
// returns the number of bytes from data that were transmitted.
func (p *Port) Write(data []byte) (int, error) {
	for i, b := range data {
		if b == '\n' {
			if err := p.WriteByte('\r'); err != nil {
				return i, err
			}
		}

		if err := p.WriteByte(b); err != nil {
			return i, err
		}
	}

	return len(data), nil
}

// probeForCOM1 checks for a UART at COM1 by round-tripping a value through
// its scratch register.
func probeForCOM1() device.Driver {
	ports := probePorts
	if ports == nil {
		ports = cpu.NativePorts{}
	}

	ports.PortWriteByte(COM1+regScratch, scratchProbeValue)
	if ports.PortReadByte(COM1+regScratch) != scratchProbeValue {
		return nil
	}

	com1 = Port{ports: ports, base: COM1}
	return &com1
}
