package util

import "testing"

func TestTruncateLog_ShortString(t *testing.T) {
	input := "short log"
	if got := TruncateLog(input, DefaultLogMaxLen); got != input {
		t.Errorf("TruncateLog() should not truncate short strings, got %q", got)
	}
}

func TestTruncateLog_LongString(t *testing.T) {
	input := "1234567890abcdefghij" // 20 chars
	want := "1234567890... [truncated, 20 bytes total]"
	if got := TruncateLog(input, 10); got != want {
		t.Errorf("TruncateLog() = %q, want %q", got, want)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int
		want string
	}{
		{ms: 0, want: "00:00"},
		{ms: 59999, want: "00:59"},
		{ms: 60000, want: "01:00"},
		{ms: 213432, want: "03:33"},
		{ms: 3599000, want: "59:59"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
