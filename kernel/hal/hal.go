// Package hal probes for the devices registered with the device package,
// initializes their drivers and selects the kernel output sink.
package hal

import (
	"io"
	"thaunos/device"
	"thaunos/kernel/kfmt"
)

// CmdLine provides access to the kernel command line options.
type CmdLine interface {
	CmdLineValue(key string) (string, bool)
}

// outputDevice is implemented by drivers that can serve as the kernel log
// sink.
type outputDevice interface {
	io.Writer
	io.ByteWriter
}

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeOutput io.Writer

	// activeDrivers tracks all initialized device drivers.
	activeDrivers   [device.MaxDrivers]device.Driver
	activeDriverCnt int
}

var (
	devices managedDevices

	// drvWriter prefixes the output of each driver's init code.
	drvWriter kfmt.PrefixWriter
)

// ActiveOutput returns the device that currently receives the kernel log or
// nil if no output device has been initialized.
func ActiveOutput() io.Writer {
	return devices.activeOutput
}

// ActiveDrivers returns the drivers initialized by DetectHardware.
func ActiveDrivers() []device.Driver {
	return devices.activeDrivers[:devices.activeDriverCnt]
}

// DetectHardware probes for hardware devices and initializes the appropriate
// drivers in detection order. Setting the "serial" option to "off" in cmdLine
// prevents a serial port from becoming the active output device.
func DetectHardware(cmdLine CmdLine) {
	probe(device.DriverList(), cmdLine)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver.
func probe(driverInfoList device.DriverInfoList, cmdLine CmdLine) {
	drvWriter.Sink = kfmt.GetOutputSink()

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		major, minor, patch := drv.DriverVersion()
		drvWriter.SetPrefixf("[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)

		if err := drv.DriverInit(&drvWriter); err != nil {
			kfmt.Fprintf(&drvWriter, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&drvWriter, "initialized\n")
		if devices.activeDriverCnt < len(devices.activeDrivers) {
			devices.activeDrivers[devices.activeDriverCnt] = drv
			devices.activeDriverCnt++
		}

		if onDriverInit(drv, cmdLine) {
			drvWriter.Sink = kfmt.GetOutputSink()
		}
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is detected
// and successfully initialized. It returns true if drv became the active
// output device.
func onDriverInit(drv device.Driver, cmdLine CmdLine) bool {
	out, ok := drv.(outputDevice)
	if !ok || devices.activeOutput != nil {
		return false
	}

	if cmdLine != nil {
		if v, _ := cmdLine.CmdLineValue("serial"); v == "off" {
			return false
		}
	}

	devices.activeOutput = out
	kfmt.SetOutputSink(devices.activeOutput)
	return true
}
