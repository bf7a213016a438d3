package tolerance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Authored tolerance modifiers are tiny expressions ("5%", "+/- 0.5",
// "3 sig figs", "1 to 20"). Each surface form gets its own participle
// grammar over a shared lexer; the parsers normalize into a Spec.

var tolLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[+-]?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`},
	{Name: "Percent", Pattern: `%|(?i:percentage|percent)`},
	{Name: "PlusMinus", Pattern: `±|\+/-|−`},
	{Name: "To", Pattern: `(?i:to)\b`},
	{Name: "Word", Pattern: `[a-zA-Z][a-zA-Z.]*`},
	{Name: "Dash", Pattern: `[-–—]`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

type marginExpr struct {
	PlusMinus bool   `parser:"(@PlusMinus)?"`
	Value     string `parser:"@Number"`
	Percent   bool   `parser:"(@Percent)?"`
}

type precisionExpr struct {
	Value string   `parser:"@Number"`
	Unit  []string `parser:"@Word+"`
}

type rangeExpr struct {
	Min string `parser:"@Number"`
	Sep bool   `parser:"(@To | @Dash)?"`
	Max string `parser:"@Number"`
}

var (
	marginParser = participle.MustBuild[marginExpr](
		participle.Lexer(tolLexer),
		participle.Elide("Whitespace"),
	)
	precisionParser = participle.MustBuild[precisionExpr](
		participle.Lexer(tolLexer),
		participle.Elide("Whitespace"),
	)
	rangeParser = participle.MustBuild[rangeExpr](
		participle.Lexer(tolLexer),
		participle.Elide("Whitespace"),
	)
)

// ParseNumber parses an authored numeric value. Thousands separators are
// accepted and stripped.
func ParseNumber(raw string) (Dec, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return Dec{}, fmt.Errorf("numeric field requires a value")
	}
	// Unicode minus shows up in pasted text.
	cleaned = strings.ReplaceAll(cleaned, "−", "-")
	return ParseDec(cleaned)
}

// ParseMargin parses a Tolerance: field value into a percent-margin or
// absolute-margin Spec. "5%" and "5 percent" are percent; "0.5", "±0.5"
// and "+/- 0.5" are absolute. The magnitude is taken; sign is ignored.
func ParseMargin(raw string) (Spec, error) {
	expr, err := marginParser.ParseString("", strings.TrimSpace(raw))
	if err != nil {
		return Spec{}, fmt.Errorf("invalid tolerance %q: use '5%%' or '0.5'", raw)
	}
	value, err := ParseNumber(expr.Value)
	if err != nil {
		return Spec{}, err
	}
	if expr.Percent {
		return Spec{Mode: PercentMargin, Margin: value.Abs()}, nil
	}
	return Spec{Mode: AbsoluteMargin, Margin: value.Abs()}, nil
}

// ParsePrecision parses a Precision: field value into a significant-digit
// or decimal-place Spec. Accepted units include "sig figs", "significant
// digits", "decimal places", and "dp".
func ParsePrecision(raw string) (Spec, error) {
	expr, err := precisionParser.ParseString("", strings.TrimSpace(raw))
	if err != nil {
		return Spec{}, fmt.Errorf("invalid precision %q: use '3 sig figs' or '2 decimal places'", raw)
	}
	digits, err := strconv.Atoi(expr.Value)
	if err != nil || digits < 0 {
		return Spec{}, fmt.Errorf("precision value must be a non-negative integer, got %q", expr.Value)
	}

	unit := strings.ToLower(strings.Join(expr.Unit, " "))
	switch {
	case strings.Contains(unit, "sig"), strings.Contains(unit, "significant"):
		return Spec{Mode: SigFigs, Digits: digits}, nil
	case strings.Contains(unit, "decimal"), strings.Contains(unit, "place"), strings.Contains(unit, "dp"):
		return Spec{Mode: DecimalPlaces, Digits: digits}, nil
	default:
		return Spec{}, fmt.Errorf("precision %q must name significant digits or decimal places", raw)
	}
}

// ParseRange parses a Range: field value ("5 to 10", "1-20") into a range
// Spec, validating min < max.
func ParseRange(raw string) (Spec, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), "−", "-")
	expr, err := rangeParser.ParseString("", normalized)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid range %q: use 'min to max'", raw)
	}
	maxRaw := expr.Max
	if !expr.Sep && strings.HasPrefix(maxRaw, "-") {
		// "1-20" lexes the dash into the second number's sign; the dash is
		// the separator, not a negative sign.
		maxRaw = maxRaw[1:]
	}
	lo, err := ParseNumber(expr.Min)
	if err != nil {
		return Spec{}, err
	}
	hi, err := ParseNumber(maxRaw)
	if err != nil {
		return Spec{}, err
	}
	if lo.Cmp(hi) >= 0 {
		return Spec{}, fmt.Errorf("range minimum %s must be less than maximum %s", lo, hi)
	}
	return Spec{Mode: Range, Min: lo, Max: hi}, nil
}
