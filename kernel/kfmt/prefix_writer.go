package kfmt

import "io"

// maxPrefixLen is the capacity of the prefix storage used by SetPrefixf.
// Longer prefixes are truncated.
const maxPrefixLen = 64

// PrefixWriter is an io.Writer that wraps another io.Writer and injects a
// prefix at the beginning of each line.
type PrefixWriter struct {
	// A writer where all writes get sent to.
	Sink io.Writer

	// The prefix injected at the beginning of each line.
	Prefix []byte

	bytesAfterPrefix int
	prefixBuf        prefixBuffer
}

// SetPrefixf formats a new prefix into storage owned by the writer so that
// prefixes can be switched without allocating. The next write starts on a
// new prefixed line.
func (w *PrefixWriter) SetPrefixf(format string, args ...interface{}) {
	w.prefixBuf.n = 0
	Fprintf(&w.prefixBuf, format, args...)
	w.Prefix = w.prefixBuf.buf[:w.prefixBuf.n]
	w.bytesAfterPrefix = 0
}

// Write writes len(p) bytes from p to the underlying data stream and returns
// back the number of bytes written. The PrefixWriter keeps track of the
// beginning of new lines and injects the configured prefix at each new line.
// The injected prefix is not included in the number of written bytes returned
// by this method.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var (
		written              int
		startIndex, curIndex int
	)

	if w.bytesAfterPrefix == 0 && len(p) != 0 {
		w.Sink.Write(w.Prefix)
	}

	for ; curIndex < len(p); curIndex++ {
		if p[curIndex] != '\n' {
			continue
		}

		n, err := w.Sink.Write(p[startIndex : curIndex+1])
		written += n
		if err != nil {
			return written, err
		}

		if curIndex+1 != len(p) {
			w.Sink.Write(w.Prefix)
		}
		w.bytesAfterPrefix = 0
		startIndex = curIndex + 1
	}

	if startIndex < curIndex {
		n, err := w.Sink.Write(p[startIndex:curIndex])
		written += n
		w.bytesAfterPrefix += n
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

// prefixBuffer is a fixed-capacity io.Writer that drops bytes past its
// capacity.
type prefixBuffer struct {
	buf [maxPrefixLen]byte
	n   int
}

func (b *prefixBuffer) Write(p []byte) (int, error) {
	b.n += copy(b.buf[b.n:], p)
	return len(p), nil
}
