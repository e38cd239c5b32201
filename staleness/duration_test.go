package staleness

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", "90s", 90 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"days", "3d", 72 * time.Hour, false},
		{"combined", "1h30m", 90 * time.Minute, false},
		{"all units", "1d2h3m4s", 26*time.Hour + 3*time.Minute + 4*time.Second, false},
		{"zero", "0s", 0, false},
		{"empty", "", 0, true},
		{"no digits", "s", 0, true},
		{"no unit", "90", 0, true},
		{"trailing digits", "1h30", 0, true},
		{"unknown unit", "10w", 0, true},
		{"trailing garbage", "10s extra", 0, true},
		{"fractional", "1.5h", 0, true},
		{"negative", "-10s", 0, true},
		{"unit only twice", "1hm", 0, true},
		{"space inside", "1h 30m", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Errorf("ParseDuration(%q) error = %v, want ErrInvalidDuration", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Minute, "60"},
		{90 * time.Second, "90"},
		{time.Hour, "3600"},
		{1500 * time.Millisecond, "1"},
	}
	for _, tt := range tests {
		if got := FormatSeconds(tt.d); got != tt.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
