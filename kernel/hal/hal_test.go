package hal

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"thaunos/device"
	"thaunos/kernel"
	"thaunos/kernel/kfmt"
)

type mockDriver struct {
	name    string
	initErr *kernel.Error
	initLog string
}

func (d *mockDriver) DriverName() string                      { return d.name }
func (d *mockDriver) DriverVersion() (uint16, uint16, uint16) { return 1, 2, 3 }
func (d *mockDriver) DriverInit(w io.Writer) *kernel.Error {
	if d.initLog != "" {
		kfmt.Fprintf(w, "%s", d.initLog)
	}
	return d.initErr
}

type mockOutputDriver struct {
	mockDriver
	bytes.Buffer
}

type cmdLineMap map[string]string

func (m cmdLineMap) CmdLineValue(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

var (
	quietDriver     = mockDriver{name: "quiet"}
	quietDriverInfo = device.DriverInfo{Order: device.DetectOrderNormal, Probe: probeQuietDriver}
)

func probeQuietDriver() device.Driver { return &quietDriver }

func resetDevices() {
	devices = managedDevices{}
	kfmt.SetOutputSink(nil)
}

func TestProbe(t *testing.T) {
	defer resetDevices()

	var (
		early   bytes.Buffer
		failing = &mockDriver{name: "failing", initErr: &kernel.Error{Module: "test", Message: "no device"}}
		plain   = &mockDriver{name: "plain", initLog: "ready\n"}
		out     = &mockOutputDriver{mockDriver: mockDriver{name: "uart"}}
		out2    = &mockOutputDriver{mockDriver: mockDriver{name: "uart2"}}
	)

	resetDevices()
	kfmt.SetOutputSink(&early)

	probe(device.DriverInfoList{
		{Probe: func() device.Driver { return nil }},
		{Probe: func() device.Driver { return failing }},
		{Probe: func() device.Driver { return out }},
		{Probe: func() device.Driver { return plain }},
		{Probe: func() device.Driver { return out2 }},
	}, cmdLineMap{})

	if exp, got := "[hal] failing(1.2.3): init failed: no device\n[hal] uart(1.2.3): initialized\n", early.String(); got != exp {
		t.Fatalf("expected log before the output device was selected to be:\n%q\ngot:\n%q", exp, got)
	}

	if exp, got := "[hal] plain(1.2.3): ready\n[hal] plain(1.2.3): initialized\n[hal] uart2(1.2.3): initialized\n", out.String(); got != exp {
		t.Fatalf("expected output device to receive:\n%q\ngot:\n%q", exp, got)
	}

	if ActiveOutput() != io.Writer(out) {
		t.Fatal("expected the first output-capable driver to become the active output")
	}

	if exp, got := 3, len(ActiveDrivers()); got != exp {
		t.Fatalf("expected %d active drivers; got %d", exp, got)
	}
}

func TestProbeWithSerialOff(t *testing.T) {
	defer resetDevices()

	var (
		early bytes.Buffer
		out   = &mockOutputDriver{mockDriver: mockDriver{name: "uart"}}
	)

	resetDevices()
	kfmt.SetOutputSink(&early)

	probe(device.DriverInfoList{
		{Probe: func() device.Driver { return out }},
	}, cmdLineMap{"serial": "off"})

	if ActiveOutput() != nil {
		t.Fatal("expected no active output when serial=off")
	}

	if out.Len() != 0 {
		t.Fatalf("expected the output device to receive nothing; got %q", out.String())
	}

	if exp, got := "[hal] uart(1.2.3): initialized\n", early.String(); got != exp {
		t.Fatalf("expected log %q; got %q", exp, got)
	}
}

func TestDetectHardware(t *testing.T) {
	defer resetDevices()

	var buf bytes.Buffer
	resetDevices()
	kfmt.SetOutputSink(&buf)

	if err := device.RegisterDriver(&quietDriverInfo); err != nil {
		t.Fatal(err)
	}

	DetectHardware(cmdLineMap{})

	if !strings.Contains(buf.String(), "[hal] quiet(1.2.3): initialized\n") {
		t.Fatalf("expected the registered driver to be initialized; got log:\n%s", buf.String())
	}

	var found bool
	for _, drv := range ActiveDrivers() {
		found = found || drv == device.Driver(&quietDriver)
	}
	if !found {
		t.Fatal("expected the registered driver to be tracked as active")
	}
}

func TestDetectHardwareDoesNotAllocate(t *testing.T) {
	defer resetDevices()

	resetDevices()
	kfmt.SetOutputSink(io.Discard)

	if err := device.RegisterDriver(&quietDriverInfo); err != nil {
		t.Fatal(err)
	}

	cmdLine := cmdLineMap{"serial": "off"}
	if allocs := testing.AllocsPerRun(10, func() {
		devices = managedDevices{}
		DetectHardware(cmdLine)
	}); allocs != 0 {
		t.Fatalf("expected hardware detection not to allocate; got %v allocations", allocs)
	}
}
