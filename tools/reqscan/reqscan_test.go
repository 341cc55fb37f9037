package main

import (
	"debug/elf"
	"encoding/binary"
	"strings"
	"testing"
)

func words(w ...uint64) []byte {
	buf := make([]byte, 8*len(w))
	for i, v := range w {
		binary.LittleEndian.PutUint64(buf[i*8:], v)
	}
	return buf
}

func TestScanSection(t *testing.T) {
	var data []byte
	data = append(data, words(0)...)
	data = append(data, words(baseRevisionMagic0, baseRevisionMagic1, 4)...)
	data = append(data, words(commonMagic0, commonMagic1, 0x9d5827dcd881dd75, 0xa3148604f6fab11b, 0, 0)...)
	// misaligned cmdline request
	data = append(data, 0xff)
	data = append(data, words(commonMagic0, commonMagic1, 0x4b161536e598651e, 0xb390ad4a2f1f303a)...)
	data = append(data, words(commonMagic0, commonMagic1, 1, 2)...)

	sec := &elf.SectionHeader{
		Name:  ".data",
		Type:  elf.SHT_PROGBITS,
		Flags: elf.SHF_ALLOC | elf.SHF_WRITE,
		Addr:  0xffffffff80100000,
	}

	records := scanSection(sec, data)

	exp := []record{
		{"base-revision", ".data", 0xffffffff80100008, true, true},
		{"framebuffer", ".data", 0xffffffff80100020, true, true},
		{"cmdline", ".data", 0xffffffff80100051, true, true},
		{"unknown(1,2)", ".data", 0xffffffff80100071, true, true},
	}

	if len(records) != len(exp) {
		t.Fatalf("expected %d records; got %d: %+v", len(exp), len(records), records)
	}

	for i := range exp {
		if records[i] != exp[i] {
			t.Errorf("[record %d] expected %+v; got %+v", i, exp[i], records[i])
		}
	}
}

func TestCheck(t *testing.T) {
	specs := []struct {
		descr       string
		records     []record
		expProblems []string
	}{
		{
			"valid image",
			[]record{
				{"base-revision", ".data", 0x1000, true, true},
				{"framebuffer", ".data", 0x1018, true, true},
			},
			nil,
		},
		{
			"misaligned read-only record",
			[]record{
				{"base-revision", ".rodata", 0x1004, false, true},
				{"framebuffer", ".data", 0x1018, true, true},
			},
			[]string{"not 8-byte aligned", "not writable"},
		},
		{
			"missing records",
			[]record{
				{"cmdline", ".data", 0x1000, true, true},
			},
			[]string{"missing base-revision record", "missing framebuffer record"},
		},
		{
			"record outside PROGBITS",
			[]record{
				{"base-revision", ".init_array", 0x1000, true, false},
				{"framebuffer", ".data", 0x1018, true, true},
			},
			[]string{"not in a PROGBITS section"},
		},
	}

	for _, spec := range specs {
		t.Run(spec.descr, func(t *testing.T) {
			problems := check(spec.records)
			if len(problems) != len(spec.expProblems) {
				t.Fatalf("expected %d problems; got %v", len(spec.expProblems), problems)
			}

			for i, exp := range spec.expProblems {
				if !strings.Contains(problems[i].Error(), exp) {
					t.Errorf("expected problem %d to mention %q; got %q", i, exp, problems[i])
				}
			}
		})
	}
}
