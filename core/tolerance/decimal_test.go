package tolerance

import "testing"

func TestParseDec(t *testing.T) {
	tests := []struct {
		in   string
		want string // plain String form
	}{
		{"4", "4"},
		{"4.50", "4.5"},
		{"-3.25", "-3.25"},
		{"+7", "7"},
		{"0.000", "0"},
		{"2e3", "2000"},
		{"2.5E-2", "0.025"},
		{"  12  ", "12"},
	}
	for _, tt := range tests {
		d, err := ParseDec(tt.in)
		if err != nil {
			t.Errorf("ParseDec(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got := d.String(); got != tt.want {
			t.Errorf("ParseDec(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDecErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "1.2.3", "1e", "12x", "."} {
		if _, err := ParseDec(in); err == nil {
			t.Errorf("ParseDec(%q): expected error, got none", in)
		}
	}
}

func TestWire(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"4", "4.0"},
		{"4.50", "4.5"},
		{"0", "0.0"},
		{"-2", "-2.0"},
		{"0.005", "0.005"},
		{"1234", "1234.0"},
		{"0.000001", "0.000001"},      // adjusted exponent -6, still plain
		{"1e20", "100000000000000000000.0"}, // below the scientific cutoff
		{"2e21", "2.0E+21"},
		{"1e-7", "1.0E-7"},
		{"-1.5e25", "-1.5E+25"},
		{"123000", "123000.0"},
	}
	for _, tt := range tests {
		if got := MustDec(tt.in).Wire(); got != tt.want {
			t.Errorf("Wire(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	// Exact decimal arithmetic: no binary float drift.
	sum := MustDec("0.1").Add(MustDec("0.2"))
	if sum.Cmp(MustDec("0.3")) != 0 {
		t.Errorf("0.1 + 0.2 = %s, want 0.3", sum)
	}

	diff := MustDec("1").Sub(MustDec("0.999"))
	if diff.Cmp(MustDec("0.001")) != 0 {
		t.Errorf("1 - 0.999 = %s, want 0.001", diff)
	}

	prod := MustDec("1.5").Mul(MustDec("2"))
	if prod.Cmp(MustDec("3")) != 0 {
		t.Errorf("1.5 * 2 = %s, want 3", prod)
	}

	if got := MustDec("-4").Abs().String(); got != "4" {
		t.Errorf("Abs(-4) = %s, want 4", got)
	}
	if got := MustDec("4").Neg().String(); got != "-4" {
		t.Errorf("Neg(4) = %s, want -4", got)
	}
}

func TestCmp(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1", "2", -1},
		{"2", "1", 1},
		{"1.50", "1.5", 0},
		{"-0.1", "0.1", -1},
		{"100", "1e2", 0},
	}
	for _, tt := range tests {
		if got := MustDec(tt.a).Cmp(MustDec(tt.b)); got != tt.want {
			t.Errorf("Cmp(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestZeroValue(t *testing.T) {
	var zero Dec
	if !zero.IsZero() {
		t.Error("zero-value Dec should report IsZero")
	}
	if got := zero.Add(MustDec("5")); got.Cmp(MustDec("5")) != 0 {
		t.Errorf("zero + 5 = %s, want 5", got)
	}
	if got := zero.Wire(); got != "0.0" {
		t.Errorf("zero Wire() = %q, want \"0.0\"", got)
	}
}
