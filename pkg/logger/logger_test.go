package logger

import (
	"bytes"
	"strings"
	"testing"
)

func newBuffered(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Output: &buf}), &buf
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBuffered(WARN)
	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)
	l.Errorf("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO line leaked at WARN level: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 2") {
		t.Errorf("missing WARN line: %q", out)
	}
	if !strings.Contains(out, "[ERROR] also shown") {
		t.Errorf("missing ERROR line: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"":        INFO,
		"warning": WARN,
		"Error":   ERROR,
		"fatal":   FATAL,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestWithPrefixesComponent(t *testing.T) {
	l, buf := newBuffered(DEBUG)
	l.With("storage").Debugf("opened %s", "db")

	if !strings.Contains(buf.String(), "[storage] opened db") {
		t.Errorf("output = %q", buf.String())
	}

	// the parent keeps its own prefix
	buf.Reset()
	l.Infof("plain")
	if strings.Contains(buf.String(), "[storage]") {
		t.Errorf("parent picked up child prefix: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Errorf("nothing to see")
	if l.Level() <= FATAL {
		t.Errorf("discard level = %v", l.Level())
	}
}

func TestColorize(t *testing.T) {
	l, buf := newBuffered(INFO)
	l.SetColorize(true)
	l.Errorf("red")
	if !strings.Contains(buf.String(), colorRed) {
		t.Errorf("expected colour codes in %q", buf.String())
	}
}
