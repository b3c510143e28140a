package bytesize

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{"Plain", "65536", 65536, false},
		{"Zero", "0", 0, false},
		{"Bytes", "512B", 512, false},
		{"KiB", "64KiB", 64 * 1024, false},
		{"KiShort", "64ki", 64 * 1024, false},
		{"MiB", "8MiB", 8 << 20, false},
		{"GiB", "1GiB", 1 << 30, false},
		{"KB", "64KB", 64000, false},
		{"MShort", "1M", 1000000, false},
		{"Spaces", " 1 MiB ", 1 << 20, false},
		{"Fraction", "1.5KiB", 1536, false},
		{"Empty", "", 0, true},
		{"Negative", "-1", 0, true},
		{"UnknownUnit", "5XB", 0, true},
		{"Tebibyte", "1TiB", 0, true},
		{"Overflow", "18446744073709551615KiB", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   ByteSize
		want string
	}{
		{0, "0B"},
		{1500, "1500B"},
		{64 * KiB, "64KiB"},
		{MiB, "1MiB"},
		{1536, "1536B"},
		{3 * GiB, "3GiB"},
	}

	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("ByteSize(%d).String() = %q, want %q", uint64(tt.in), got, tt.want)
		}
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, v := range []ByteSize{0, 1, 1500, 64 * KiB, 3 * MiB, 10 * GiB} {
		text, err := v.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", uint64(v), err)
		}
		var back ByteSize
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != v {
			t.Errorf("round trip of %d gave %d", uint64(v), uint64(back))
		}
	}

	var b ByteSize
	if err := b.UnmarshalText([]byte("lots")); err == nil {
		t.Error("UnmarshalText accepted garbage")
	}
}

func TestInt(t *testing.T) {
	if got := (64 * KiB).Int(); got != 65536 {
		t.Errorf("Int() = %d, want 65536", got)
	}
	if got := ByteSize(math.MaxUint64).Int(); got != math.MaxInt {
		t.Errorf("Int() = %d, want saturation at MaxInt", got)
	}
}
