package limine

import (
	"thaunos/kernel/mmio"
	"unsafe"
)

// CmdLineVisitor is invoked by VisitCmdLine for each key/value pair of the
// kernel command line. Keys without a value are reported with an empty value.
// The visitor must return true to continue or false to abort the scan.
type CmdLineVisitor func(key, value string) bool

// CmdLine returns the command line the kernel was booted with.
func (n *Negotiator) CmdLine() string {
	if !n.ready.Load() {
		return ""
	}
	return n.cmdLine
}

// VisitCmdLine invokes visitor for each space-separated key=value pair of the
// kernel command line.
func (n *Negotiator) VisitCmdLine(visitor CmdLineVisitor) {
	visitCmdLine(n.CmdLine(), visitor)
}

// CmdLineValue returns the value of the first command line pair that matches
// key.
func (n *Negotiator) CmdLineValue(key string) (string, bool) {
	var (
		value string
		found bool
	)

	n.VisitCmdLine(func(k, v string) bool {
		if k != key {
			return true
		}
		value, found = v, true
		return false
	})

	return value, found
}

func visitCmdLine(cmdLine string, visitor CmdLineVisitor) {
	for start := 0; start < len(cmdLine); {
		if cmdLine[start] == ' ' || cmdLine[start] == '\t' {
			start++
			continue
		}

		end, sep := start, -1
		for ; end < len(cmdLine) && cmdLine[end] != ' ' && cmdLine[end] != '\t'; end++ {
			if sep == -1 && cmdLine[end] == '=' {
				sep = end
			}
		}

		key, value := cmdLine[start:end], ""
		if sep != -1 {
			key, value = cmdLine[start:sep], cmdLine[sep+1:end]
		}

		if !visitor(key, value) {
			return
		}
		start = end
	}
}

// readCmdLine returns the command line string referenced by the response to
// req without copying it. It returns an empty string if the request was not
// honored.
func readCmdLine(req *request) string {
	if req == nil {
		return ""
	}

	resp := (*cmdLineResponse)(mmio.LoadPointer(&req.response))
	if resp == nil || resp.cmdLine == nil {
		return ""
	}

	var length int
	for ; length < maxCmdLineLen && *(*byte)(unsafe.Add(resp.cmdLine, length)) != 0; length++ {
	}

	if length == 0 {
		return ""
	}
	return unsafe.String((*byte)(resp.cmdLine), length)
}
