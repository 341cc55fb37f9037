package serial

import (
	"bytes"
	"go.uber.org/mock/gomock"
	"testing"
	"thaunos/device"
	"thaunos/kernel/cpu"
	"thaunos/kernel/cpu/mock_cpu"
)

func TestDriverInit(t *testing.T) {
	ctrl := gomock.NewController(t)
	ports := mock_cpu.NewMockPorts(ctrl)

	gomock.InOrder(
		ports.EXPECT().PortWriteByte(uint16(0x3f9), uint8(0x00)),
		ports.EXPECT().PortWriteByte(uint16(0x3fb), uint8(0x80)),
		ports.EXPECT().PortWriteByte(uint16(0x3f8), uint8(0x03)),
		ports.EXPECT().PortWriteByte(uint16(0x3f9), uint8(0x00)),
		ports.EXPECT().PortWriteByte(uint16(0x3fb), uint8(0x03)),
		ports.EXPECT().PortWriteByte(uint16(0x3fa), uint8(0xc7)),
		ports.EXPECT().PortWriteByte(uint16(0x3fc), uint8(0x0b)),
	)

	var (
		buf bytes.Buffer
		drv = NewPort(ports, COM1)
	)

	if err := drv.DriverInit(&buf); err != nil {
		t.Fatal(err)
	}

	if exp, got := "port 0x3f8, 38400 baud 8N1\n", buf.String(); got != exp {
		t.Fatalf("expected init log %q; got %q", exp, got)
	}

	if drv.DriverName() != "serial-16550" {
		t.Fatalf("unexpected driver name %q", drv.DriverName())
	}

	if major, minor, patch := drv.DriverVersion(); major != 1 || minor != 0 || patch != 0 {
		t.Fatalf("unexpected driver version %d.%d.%d", major, minor, patch)
	}
}

func TestWrite(t *testing.T) {
	defer func() {
		pauseFn = cpu.Pause
	}()

	var pauses int
	pauseFn = func() { pauses++ }

	ctrl := gomock.NewController(t)
	ports := mock_cpu.NewMockPorts(ctrl)

	gomock.InOrder(
		// transmitter busy once before 'o'
		ports.EXPECT().PortReadByte(uint16(0x3fd)).Return(uint8(0x00)),
		ports.EXPECT().PortReadByte(uint16(0x3fd)).Return(uint8(0x60)),
		ports.EXPECT().PortWriteByte(uint16(0x3f8), uint8('o')),
		ports.EXPECT().PortReadByte(uint16(0x3fd)).Return(uint8(0x20)),
		ports.EXPECT().PortWriteByte(uint16(0x3f8), uint8('k')),
		ports.EXPECT().PortReadByte(uint16(0x3fd)).Return(uint8(0x20)),
		ports.EXPECT().PortWriteByte(uint16(0x3f8), uint8('\r')),
		ports.EXPECT().PortReadByte(uint16(0x3fd)).Return(uint8(0x20)),
		ports.EXPECT().PortWriteByte(uint16(0x3f8), uint8('\n')),
	)

	n, err := NewPort(ports, COM1).Write([]byte("ok\n"))
	if err != nil {
		t.Fatal(err)
	}

	if n != 3 {
		t.Fatalf("expected Write to report 3 bytes; got %d", n)
	}

	if pauses != 1 {
		t.Fatalf("expected 1 pause while the transmitter was busy; got %d", pauses)
	}
}

func TestWriteTimeout(t *testing.T) {
	defer func() {
		pauseFn = cpu.Pause
	}()
	pauseFn = func() {}

	ctrl := gomock.NewController(t)
	ports := mock_cpu.NewMockPorts(ctrl)
	ports.EXPECT().PortReadByte(uint16(0x3fd)).Return(uint8(0x00)).Times(maxTxSpins + 1)

	n, err := NewPort(ports, COM1).Write([]byte("x"))
	if err != errTxTimeout {
		t.Fatalf("expected errTxTimeout; got %v", err)
	}

	if n != 0 {
		t.Fatalf("expected Write to report 0 bytes; got %d", n)
	}
}

func TestProbe(t *testing.T) {
	defer func() {
		probePorts = nil
	}()

	specs := []struct {
		descr     string
		readBack  uint8
		expDriver bool
	}{
		{"UART present", 0xae, true},
		{"no UART", 0xff, false},
	}

	for _, spec := range specs {
		t.Run(spec.descr, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			ports := mock_cpu.NewMockPorts(ctrl)
			probePorts = ports

			gomock.InOrder(
				ports.EXPECT().PortWriteByte(uint16(0x3ff), uint8(0xae)),
				ports.EXPECT().PortReadByte(uint16(0x3ff)).Return(spec.readBack),
			)

			drv := probeForCOM1()
			if got := drv != nil; got != spec.expDriver {
				t.Fatalf("expected probe to return a driver: %t; got %t", spec.expDriver, got)
			}
		})
	}
}

func TestProbeReturnsStaticDriver(t *testing.T) {
	defer func() {
		probePorts = nil
	}()

	ctrl := gomock.NewController(t)
	ports := mock_cpu.NewMockPorts(ctrl)
	probePorts = ports
	gomock.InOrder(
		ports.EXPECT().PortWriteByte(uint16(0x3ff), uint8(0xae)),
		ports.EXPECT().PortReadByte(uint16(0x3ff)).Return(uint8(0xae)),
	)

	drv := probeForCOM1()
	if drv != device.Driver(&com1) {
		t.Fatal("expected the probe to hand out the static COM1 driver")
	}

	if com1.base != COM1 || com1.ports != ports {
		t.Fatalf("expected the COM1 driver to be bound to port 0x%x", COM1)
	}
}

func TestCOM1DriverInfo(t *testing.T) {
	if COM1DriverInfo.Order != device.DetectOrderEarly {
		t.Fatalf("expected the COM1 probe to run at DetectOrderEarly; got %d", COM1DriverInfo.Order)
	}

	if COM1DriverInfo.Probe == nil {
		t.Fatal("expected COM1DriverInfo to carry a probe function")
	}
}
