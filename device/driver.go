package device

import (
	"io"
	"thaunos/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it.
type ProbeFn func() Driver

// DetectOrder specifies when each driver's probe function will be invoked
// by the hardware detection code.
type DetectOrder int8

const (
	// DetectOrderEarly specifies that the driver's probe function should
	// be executed at an early stage. Output sinks are probed at this stage
	// so that the rest of the detection log reaches them.
	DetectOrderEarly DetectOrder = -128

	// DetectOrderNormal is the default detection order for drivers.
	DetectOrderNormal = 0

	// DetectOrderLast specifies that the driver's probe function should
	// be executed after all other probe functions.
	DetectOrderLast = 127
)

// DriverInfo is a driver-defined struct that is passed to calls to RegisterDriver.
type DriverInfo struct {
	// Order specifies at which stage of the HW detection step should
	// the probe function be invoked.
	Order DetectOrder

	// Probe is invoked by the HW detection code to detect whether a
	// particular device is present. It returns nil if the device is
	// absent.
	Probe ProbeFn
}

// DriverInfoList is a list of registered drivers ordered by DetectOrder.
type DriverInfoList []*DriverInfo

// MaxDrivers is the capacity of the driver registry.
const MaxDrivers = 16

var (
	// registeredDrivers tracks the drivers registered via a call to
	// RegisterDriver. The kernel has no allocator so the registry is a
	// fixed-size array kept sorted by DetectOrder.
	registeredDrivers   [MaxDrivers]*DriverInfo
	registeredDriverCnt int

	errRegistryFull = &kernel.Error{Module: "device", Message: "driver registry is full"}
)

// RegisterDriver adds the supplied driver info to the list of drivers that
// are probed during hardware detection. Drivers with the same DetectOrder
// are probed in registration order. Registering the same info twice has no
// effect.
func RegisterDriver(info *DriverInfo) *kernel.Error {
	for i := 0; i < registeredDriverCnt; i++ {
		if registeredDrivers[i] == info {
			return nil
		}
	}

	if registeredDriverCnt == MaxDrivers {
		return errRegistryFull
	}

	pos := registeredDriverCnt
	for ; pos > 0 && registeredDrivers[pos-1].Order > info.Order; pos-- {
		registeredDrivers[pos] = registeredDrivers[pos-1]
	}
	registeredDrivers[pos] = info
	registeredDriverCnt++

	return nil
}

// DriverList returns the list of registered drivers sorted by DetectOrder.
func DriverList() DriverInfoList {
	return registeredDrivers[:registeredDriverCnt]
}
