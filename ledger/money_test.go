package ledger

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "12.34", want: 1234},
		{in: "0.01", want: 1},
		{in: "90", want: 9000},
		{in: "0", want: 0},
		{in: "-5.50", want: -550},
		{in: "1234567.89", want: 123456789},
		{in: "12.3", want: 1230},
		{in: "12.345", wantErr: true},
		{in: "12,34", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "1e2", want: 10000}, // decimal accepts exponent notation
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{1, "0.01"},
		{0, "0.00"},
		{-550, "-5.50"},
		{9000, "90.00"},
	}

	for _, tt := range tests {
		if got := FormatAmount(tt.cents); got != tt.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestParseFormatRoundTripPreservesCents(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345, -12345, 1000000000} {
		got, err := ParseAmount(FormatAmount(cents))
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", cents, err)
		}
		if got != cents {
			t.Errorf("round trip of %d = %d", cents, got)
		}
	}
}
