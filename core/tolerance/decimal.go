package tolerance

import (
	"fmt"
	"math/big"
	"strings"
)

// Dec is an arbitrary-precision decimal: coef * 10^exp. Arithmetic here is
// exact; no binary floating point is involved in bound computation, so the
// serialized bounds match the authored values digit for digit.
type Dec struct {
	coef *big.Int
	exp  int
}

var (
	ten     = big.NewInt(10)
	five    = big.NewInt(5)
	hundred = big.NewInt(100)
)

// DecFromInt returns the Dec for an integer value.
func DecFromInt(v int64) Dec {
	return Dec{coef: big.NewInt(v), exp: 0}
}

// ParseDec parses a decimal literal, optionally in scientific notation.
// Thousands separators must be stripped by the caller.
func ParseDec(s string) (Dec, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Dec{}, fmt.Errorf("empty numeric value")
	}

	mantissa := raw
	exp := 0
	if i := strings.IndexAny(raw, "eE"); i >= 0 {
		mantissa = raw[:i]
		if _, err := fmt.Sscanf(raw[i+1:], "%d", &exp); err != nil {
			return Dec{}, fmt.Errorf("invalid exponent in %q", s)
		}
	}

	neg := false
	switch {
	case strings.HasPrefix(mantissa, "-"):
		neg = true
		mantissa = mantissa[1:]
	case strings.HasPrefix(mantissa, "+"):
		mantissa = mantissa[1:]
	}

	intPart := mantissa
	fracPart := ""
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart = mantissa[:i]
		fracPart = mantissa[i+1:]
	}
	digits := intPart + fracPart
	if digits == "" || strings.Trim(digits, "0123456789") != "" {
		return Dec{}, fmt.Errorf("invalid numeric value %q", s)
	}

	coef, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Dec{}, fmt.Errorf("invalid numeric value %q", s)
	}
	if neg {
		coef.Neg(coef)
	}
	return Dec{coef: coef, exp: exp - len(fracPart)}, nil
}

// MustDec parses a decimal literal and panics on failure. Test helper and
// constant initializer.
func MustDec(s string) Dec {
	d, err := ParseDec(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether the value is exactly zero. The zero Dec (no
// coefficient) counts as zero.
func (d Dec) IsZero() bool {
	return d.coef == nil || d.coef.Sign() == 0
}

// Sign returns -1, 0, or +1.
func (d Dec) Sign() int {
	if d.coef == nil {
		return 0
	}
	return d.coef.Sign()
}

// Abs returns |d|.
func (d Dec) Abs() Dec {
	if d.coef == nil {
		return DecFromInt(0)
	}
	return Dec{coef: new(big.Int).Abs(d.coef), exp: d.exp}
}

// Neg returns -d.
func (d Dec) Neg() Dec {
	if d.coef == nil {
		return DecFromInt(0)
	}
	return Dec{coef: new(big.Int).Neg(d.coef), exp: d.exp}
}

// align returns the two coefficients scaled to a common exponent.
func align(a, b Dec) (*big.Int, *big.Int, int) {
	ac, bc := a.coefOrZero(), b.coefOrZero()
	switch {
	case a.exp == b.exp:
		return ac, bc, a.exp
	case a.exp > b.exp:
		scale := pow10(a.exp - b.exp)
		return new(big.Int).Mul(ac, scale), bc, b.exp
	default:
		scale := pow10(b.exp - a.exp)
		return ac, new(big.Int).Mul(bc, scale), a.exp
	}
}

func (d Dec) coefOrZero() *big.Int {
	if d.coef == nil {
		return big.NewInt(0)
	}
	return d.coef
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(n)), nil)
}

// Add returns d + o exactly.
func (d Dec) Add(o Dec) Dec {
	ac, bc, exp := align(d, o)
	return Dec{coef: new(big.Int).Add(ac, bc), exp: exp}
}

// Sub returns d - o exactly.
func (d Dec) Sub(o Dec) Dec {
	ac, bc, exp := align(d, o)
	return Dec{coef: new(big.Int).Sub(ac, bc), exp: exp}
}

// Mul returns d * o exactly.
func (d Dec) Mul(o Dec) Dec {
	return Dec{coef: new(big.Int).Mul(d.coefOrZero(), o.coefOrZero()), exp: d.exp + o.exp}
}

// Cmp compares d and o: -1 if d < o, 0 if equal, +1 if d > o.
func (d Dec) Cmp(o Dec) int {
	ac, bc, _ := align(d, o)
	return ac.Cmp(bc)
}

// adjustedExp is the exponent of the leading digit: 2 for 345.6, -1 for 0.05.
// Zero reports 0.
func (d Dec) adjustedExp() int {
	if d.IsZero() {
		return 0
	}
	digits := len(new(big.Int).Abs(d.coef).String())
	return digits - 1 + d.exp
}

// normalize folds trailing zero digits of the coefficient into the exponent.
func (d Dec) normalize() Dec {
	if d.IsZero() {
		return DecFromInt(0)
	}
	coef := new(big.Int).Set(d.coef)
	exp := d.exp
	rem := new(big.Int)
	for {
		q, r := new(big.Int).QuoRem(coef, ten, rem)
		if r.Sign() != 0 {
			break
		}
		coef = q
		exp++
	}
	return Dec{coef: coef, exp: exp}
}

// halfUlp returns 0.5 * 10^k.
func halfUlp(k int) Dec {
	return Dec{coef: new(big.Int).Set(five), exp: k - 1}
}

// String renders the value in plain decimal notation without the wire
// format's trailing-fraction rule. Use Wire for serialized output.
func (d Dec) String() string {
	return d.plain()
}

func (d Dec) plain() string {
	n := d.normalize()
	if n.IsZero() {
		return "0"
	}
	neg := n.coef.Sign() < 0
	digits := new(big.Int).Abs(n.coef).String()

	var body string
	switch {
	case n.exp >= 0:
		body = digits + strings.Repeat("0", n.exp)
	default:
		point := len(digits) + n.exp
		if point <= 0 {
			body = "0." + strings.Repeat("0", -point) + digits
		} else {
			body = digits[:point] + "." + digits[point:]
		}
	}
	if neg {
		return "-" + body
	}
	return body
}

// Wire renders the value in the import format's strict decimal notation:
// an explicit fractional component is mandatory ("4.0", never "4"), and
// scientific notation keeps a dotted mantissa ("2.0E+5", never "2E+5").
// Scientific form is used only for magnitudes outside [1e-6, 1e21).
func (d Dec) Wire() string {
	n := d.normalize()
	if n.IsZero() {
		return "0.0"
	}

	adj := n.adjustedExp()
	if adj >= -6 && adj < 21 {
		body := n.plain()
		if !strings.Contains(body, ".") {
			body += ".0"
		}
		return body
	}

	neg := n.coef.Sign() < 0
	digits := new(big.Int).Abs(n.coef).String()
	mantissa := digits[:1]
	if len(digits) > 1 {
		mantissa += "." + digits[1:]
	} else {
		mantissa += ".0"
	}
	if neg {
		mantissa = "-" + mantissa
	}
	return fmt.Sprintf("%sE%+d", mantissa, adj)
}
