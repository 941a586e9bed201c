package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestCollapseSpace(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "newlines", in: "Song\nA  /\tArtist", want: "Song A / Artist"},
		{name: "ideographic space", in: "曲　名", want: "曲 名"},
		{name: "trims", in: "  padded  ", want: "padded"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := CollapseSpace(tt.in); got != tt.want {
				t.Errorf("CollapseSpace(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatClock(t *testing.T) {
	tc := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{90, "01:30"},
		{3725, "62:05"},
		{-5, "00:00"},
	}

	for _, tt := range tc {
		if got := FormatClock(tt.seconds); got != tt.want {
			t.Errorf("FormatClock(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTimestampURL(t *testing.T) {
	got := TimestampURL("abc123", 90)
	want := "https://www.youtube.com/watch?v=abc123&t=90s"
	if got != want {
		t.Errorf("TimestampURL() = %q, want %q", got, want)
	}
}

func TestLogger(t *testing.T) {
	t.Run("SetLogLevel", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&buf)

		if err := SetLogLevel(l, "warn"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		l.Info("hidden")
		l.Warn("shown")

		if strings.Contains(buf.String(), "hidden") {
			t.Error("info entry should be filtered at warn level")
		}
		if !strings.Contains(buf.String(), "shown") {
			t.Error("warn entry should be written")
		}
	})

	t.Run("SetLogLevel rejects unknown level", func(t *testing.T) {
		if err := SetLogLevel(NewLogger(&bytes.Buffer{}), "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := WithLogger(NewLogger(&buf), "component", "artist")
		l.Info("resolved")

		if !strings.Contains(buf.String(), "component=artist") {
			t.Errorf("expected key/value in output, got %q", buf.String())
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected unique ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string of length 36, got %d", len(a))
	}
}
