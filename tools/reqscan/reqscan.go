// Command reqscan checks that a kernel image carries the Limine request
// records in a form the bootloader can discover and patch: each record must
// start on an 8-byte boundary inside a writable PROGBITS section.
package main

import (
	"debug/elf"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"os"
)

const (
	commonMagic0 = 0xc7b1dd30df4c8b88
	commonMagic1 = 0x0a82e883a194f07b

	baseRevisionMagic0 = 0xf9562b2d5c95a6c8
	baseRevisionMagic1 = 0x6a7b384944536bdc
)

// requestID identifies a request by the last two words of its ID.
type requestID [2]uint64

var (
	knownRequests = map[requestID]string{
		{0x9d5827dcd881dd75, 0xa3148604f6fab11b}: "framebuffer",
		{0x4b161536e598651e, 0xb390ad4a2f1f303a}: "cmdline",
	}

	// requiredRecords lists the records the kernel cannot boot without.
	requiredRecords = []string{"base-revision", "framebuffer"}
)

// record describes a request record located in the kernel image.
type record struct {
	name     string
	section  string
	addr     uint64
	writable bool
	progbits bool
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[reqscan] error: %s\n", err.Error())
	os.Exit(1)
}

// scanSection locates request records within the contents of a single
// section. Records are matched at any byte offset so that misaligned records
// are reported instead of silently skipped.
func scanSection(sec *elf.SectionHeader, data []byte) []record {
	var records []record
	for off := 0; off+16 <= len(data); off++ {
		w0 := binary.LittleEndian.Uint64(data[off:])
		w1 := binary.LittleEndian.Uint64(data[off+8:])

		var name string
		switch {
		case w0 == baseRevisionMagic0 && w1 == baseRevisionMagic1:
			name = "base-revision"
		case w0 == commonMagic0 && w1 == commonMagic1 && off+32 <= len(data):
			id := requestID{
				binary.LittleEndian.Uint64(data[off+16:]),
				binary.LittleEndian.Uint64(data[off+24:]),
			}
			if name = knownRequests[id]; name == "" {
				name = fmt.Sprintf("unknown(%x,%x)", id[0], id[1])
			}
		default:
			continue
		}

		records = append(records, record{
			name:     name,
			section:  sec.Name,
			addr:     sec.Addr + uint64(off),
			writable: sec.Flags&elf.SHF_WRITE != 0,
			progbits: sec.Type == elf.SHT_PROGBITS,
		})
	}

	return records
}

// check validates the located records and returns the list of problems found.
func check(records []record) []error {
	var (
		problems []error
		found    = make(map[string]bool)
	)

	for _, r := range records {
		found[r.name] = true

		if r.addr%8 != 0 {
			problems = append(problems, fmt.Errorf("%s record at 0x%x in %s is not 8-byte aligned", r.name, r.addr, r.section))
		}
		if !r.writable {
			problems = append(problems, fmt.Errorf("%s record at 0x%x in %s is not writable", r.name, r.addr, r.section))
		}
		if !r.progbits {
			problems = append(problems, fmt.Errorf("%s record at 0x%x in %s is not in a PROGBITS section", r.name, r.addr, r.section))
		}
	}

	for _, name := range requiredRecords {
		if !found[name] {
			problems = append(problems, fmt.Errorf("missing %s record", name))
		}
	}

	return problems
}

func scanImage(imgFile string) ([]record, error) {
	f, err := elf.Open(imgFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []record
	for _, sec := range f.Sections {
		if sec.Type == elf.SHT_NOBITS || sec.Flags&elf.SHF_ALLOC == 0 {
			continue
		}

		data, err := sec.Data()
		if err != nil {
			return nil, fmt.Errorf("%s: %s", sec.Name, err)
		}

		records = append(records, scanSection(&sec.SectionHeader, data)...)
	}

	return records, nil
}

func main() {
	verbose := flag.Bool("v", false, "list the located records")
	flag.Parse()

	if len(flag.Args()) != 1 {
		exit(errors.New("usage: reqscan [-v] kernel.elf"))
	}

	imgFile := flag.Arg(0)
	records, err := scanImage(imgFile)
	if err != nil {
		exit(err)
	}

	if *verbose {
		for _, r := range records {
			fmt.Printf("[reqscan] %s: %s at 0x%x\n", r.name, r.section, r.addr)
		}
	}

	if problems := check(records); len(problems) != 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "[reqscan] %s: %s\n", imgFile, p)
		}
		os.Exit(1)
	}
}
