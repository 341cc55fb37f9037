package limine

import "unsafe"

// Request records exchanged with a Limine-compliant bootloader. The loader
// locates each record by scanning the kernel image for its 8-byte aligned ID
// and patches the response fields before jumping to the kernel entrypoint.
// Their layout and magic values are fixed by the Limine boot protocol.

const (
	commonMagic0 = 0xc7b1dd30df4c8b88
	commonMagic1 = 0x0a82e883a194f07b

	baseRevisionMagic0 = 0xf9562b2d5c95a6c8
	baseRevisionMagic1 = 0x6a7b384944536bdc

	// BaseRevision is the protocol base revision requested by the kernel.
	BaseRevision = 4
)

var (
	// baseRevision asks for BaseRevision. A supporting bootloader zeroes
	// the last word; it may also replace the second word with the revision
	// it actually loaded the kernel with.
	baseRevision = [3]uint64{baseRevisionMagic0, baseRevisionMagic1, BaseRevision}

	framebufferRequest = request{
		id: [4]uint64{commonMagic0, commonMagic1, 0x9d5827dcd881dd75, 0xa3148604f6fab11b},
	}

	cmdLineRequest = request{
		id: [4]uint64{commonMagic0, commonMagic1, 0x4b161536e598651e, 0xb390ad4a2f1f303a},
	}
)

// request is the common layout of all Limine feature requests.
type request struct {
	id       [4]uint64
	revision uint64

	// response is populated by the bootloader. A nil value indicates
	// that the request was not honored.
	response unsafe.Pointer
}

// framebufferResponse is the bootloader response to a framebuffer request.
type framebufferResponse struct {
	revision         uint64
	framebufferCount uint64

	// framebuffers points to an array of framebufferCount pointers to
	// framebufferRecord entries.
	framebuffers unsafe.Pointer
}

// framebufferRecord describes a single framebuffer set up by the bootloader.
type framebufferRecord struct {
	address uintptr
	width   uint64
	height  uint64
	pitch   uint64
	bpp     uint16

	memoryModel    uint8
	redMaskSize    uint8
	redMaskShift   uint8
	greenMaskSize  uint8
	greenMaskShift uint8
	blueMaskSize   uint8
	blueMaskShift  uint8
	_              [7]uint8

	edidSize uint64
	edid     uintptr
}

// cmdLineResponse is the bootloader response to an executable command line
// request.
type cmdLineResponse struct {
	revision uint64

	// cmdLine points to a NUL-terminated string.
	cmdLine unsafe.Pointer
}
