package ui

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
)

func TestNormalizeColorMode(t *testing.T) {
	cases := map[string]ColorMode{
		"":        ColorAuto,
		"ALWAYS":  ColorAlways,
		" never ": ColorNever,
		"bogus":   ColorAuto,
	}
	for in, want := range cases {
		if got := NormalizeColorMode(in); got != want {
			t.Fatalf("NormalizeColorMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMessagesWithoutColor(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorAlways, true)
	if u.ColorEnabled {
		t.Fatalf("ColorEnabled = true with disableColor")
	}

	u.Warnf("skipped %d\n", 2)
	u.Infof("stored %d", 3)
	if got := errOut.String(); got != "skipped 2\nstored 3\n" {
		t.Fatalf("stderr = %q", got)
	}
	if out.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", out.String())
	}
}

func TestColorizeScoreDisabled(t *testing.T) {
	output := termenv.NewOutput(&bytes.Buffer{})
	if got := ColorizeScore(output, false, 0.9, "0.900"); got != "0.900" {
		t.Fatalf("ColorizeScore() = %q", got)
	}
	if got := ColorizeScore(nil, true, 0.9, "0.900"); got != "0.900" {
		t.Fatalf("ColorizeScore(nil) = %q", got)
	}
}
