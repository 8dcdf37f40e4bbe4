package tournamentkey

import (
	"errors"
	"math"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "2222"},
		{1, "2223"},
		{12, "222D"},
		{13, "2232"},
		{169, "2322"},
		{13 * 13 * 13, "3222"},
		{13 * 13 * 13 * 13, "32222"},
	}

	for _, tt := range tests {
		if got := Encode(tt.n); got != tt.want {
			t.Errorf("Encode(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 2, 12, 13, 14, 168, 169, 2196, 28560, 28561, 1 << 20, 1 << 40, math.MaxUint64}
	for n := uint64(0); n < 5000; n++ {
		values = append(values, n)
	}

	for _, n := range values {
		key := Encode(n)
		if len(key) < MinWidth {
			t.Fatalf("Encode(%d) = %q, shorter than %d", n, key, MinWidth)
		}
		got, err := Decode(key)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", key, err)
		}
		if got != n {
			t.Fatalf("Decode(Encode(%d)) = %d", n, got)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Run("lowercase accepted", func(t *testing.T) {
		got, err := Decode("222d")
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != 12 {
			t.Errorf("got %d, want 12", got)
		}
	})

	t.Run("unpadded key", func(t *testing.T) {
		got, err := Decode("32")
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if got != 13 {
			t.Errorf("got %d, want 13", got)
		}
	})

	t.Run("invalid character", func(t *testing.T) {
		if _, err := Decode("22O2"); !errors.Is(err, ErrInvalidChar) {
			t.Errorf("expected ErrInvalidChar, got %v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := Decode("  "); !errors.Is(err, ErrEmptyKey) {
			t.Errorf("expected ErrEmptyKey, got %v", err)
		}
	})

	t.Run("overflow", func(t *testing.T) {
		if _, err := Decode("DDDDDDDDDDDDDDDDDDDDDDDDDD"); !errors.Is(err, ErrOverflow) {
			t.Errorf("expected ErrOverflow, got %v", err)
		}
	})
}
