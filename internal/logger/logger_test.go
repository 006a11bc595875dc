package logger

import (
	"bytes"
	"os"
	"testing"
)

// captureStdout redirects stdout for the duration of fn.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestTaggedLevels_IncludeTagAndMessage(t *testing.T) {
	out := captureStdout(t, func() {
		Info("WIKI", "fetching prices")
		Success("DB", "opened")
		Warn("ENGINE", "pool exhausted")
		Error("REPORT", "write failed")
	})
	for _, want := range []string{"WIKI", "fetching prices", "DB", "opened", "ENGINE", "pool exhausted", "REPORT", "write failed"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBanner_EmptyVersionFallsBackToDev(t *testing.T) {
	out := captureStdout(t, func() {
		Banner("")
	})
	if !bytes.Contains([]byte(out), []byte("dev")) {
		t.Errorf("Banner(\"\") output missing dev fallback:\n%s", out)
	}
}

func TestSectionAndStats_NoPanic(t *testing.T) {
	out := captureStdout(t, func() {
		Section("Analysis Summary")
		Stats("opportunities", 20)
	})
	if !bytes.Contains([]byte(out), []byte("Analysis Summary")) {
		t.Errorf("Section output missing name:\n%s", out)
	}
	if !bytes.Contains([]byte(out), []byte("20")) {
		t.Errorf("Stats output missing value:\n%s", out)
	}
}
