package utils

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJSONToString(t *testing.T) {
	compact := JSONToString(map[string]string{"a": "1"}, false)
	if compact != `{"a":"1"}` {
		t.Errorf("Unexpected compact output %q", compact)
	}

	indented := JSONToString(map[string]string{"a": "1"}, true)
	if !strings.Contains(indented, "\n  \"a\"") {
		t.Errorf("Expected two-space indentation, got %q", indented)
	}

	if got := JSONToString(make(chan int), false); !strings.Contains(got, "failed to marshal") {
		t.Errorf("Expected an error object, got %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdef", 3, "abc... (truncated, total: 6 chars)"},
		{"runes", "ééééé", 2, "éé... (truncated, total: 5 chars)"},
		{"default", "abc", 0, "abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateString(tc.input, tc.maxLen); got != tc.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	if timer.Duration() != 0 {
		t.Errorf("Duration before Stop = %v, want 0", timer.Duration())
	}

	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()
	if elapsed <= 0 || elapsed != timer.Duration() {
		t.Errorf("Expected Stop to return the captured duration, got %v and %v", elapsed, timer.Duration())
	}

	timer.Start()
	if again := timer.Stop(); again > elapsed+time.Second {
		t.Errorf("Expected Start to reset the measurement, got %v", again)
	}
}

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("boom")
}

func TestCloseWithLog(t *testing.T) {
	c := &failingCloser{}
	CloseWithLog(c)
	if !c.closed {
		t.Error("Expected Close to be called")
	}
	CloseWithLog(nil)
}
