package keyboard

import "testing"

func TestTranslateTables(t *testing.T) {
	var (
		expUnshifted = "\x00\x1b1234567890-=\x08\tqwertyuiop[]\n\x00asdfghjkl;'`\x00\\zxcvbnm,./\x00*\x00 "
		expShifted   = "\x00\x1b!@#$%^&*()_+\x08\tQWERTYUIOP{}\n\x00ASDFGHJKL:\"~\x00|ZXCVBNM<>?\x00*\x00 "
	)

	if len(expUnshifted) != 58 || len(expShifted) != 58 {
		t.Fatalf("reference tables must have 58 entries; got %d and %d", len(expUnshifted), len(expShifted))
	}

	for sc := 0; sc < 58; sc++ {
		if got := Translate(byte(sc), false, false); got != expUnshifted[sc] {
			t.Errorf("[scancode 0x%02x] expected unshifted %q; got %q", sc, expUnshifted[sc], got)
		}
		if got := Translate(byte(sc), true, false); got != expShifted[sc] {
			t.Errorf("[scancode 0x%02x] expected shifted %q; got %q", sc, expShifted[sc], got)
		}
	}
}

func TestTranslateCapsLock(t *testing.T) {
	const scA = 0x1e

	specs := []struct {
		shift, caps bool
		exp         byte
	}{
		{false, false, 'a'},
		{false, true, 'A'},
		{true, false, 'A'},
		{true, true, 'a'},
	}

	for specIndex, spec := range specs {
		if got := Translate(scA, spec.shift, spec.caps); got != spec.exp {
			t.Errorf("[spec %d] shift=%t caps=%t: expected %q; got %q", specIndex, spec.shift, spec.caps, spec.exp, got)
		}
	}

	// Caps lock leaves non-letters alone.
	if got := Translate(0x02, false, true); got != '1' {
		t.Errorf("expected caps lock not to affect digits; got %q", got)
	}
	if got := Translate(0x02, true, true); got != '!' {
		t.Errorf("expected caps lock not to affect shifted symbols; got %q", got)
	}
}

func TestTranslateOutOfRange(t *testing.T) {
	for _, sc := range []byte{58, 0x3b, 0x7f, 0xff} {
		if got := Translate(sc, false, false); got != 0 {
			t.Errorf("[scancode 0x%02x] expected no character; got %q", sc, got)
		}
	}
}
