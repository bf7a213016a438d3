package tolerance

import (
	"errors"
	"testing"

	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
)

func TestResolveExact(t *testing.T) {
	b, err := Resolve(MustDec("5"), Spec{Mode: Exact}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("5")) != 0 || b.Upper.Cmp(MustDec("5")) != 0 || b.StrictLower {
		t.Errorf("exact bounds = [%s, %s] strict=%v, want [5, 5] inclusive", b.Lower, b.Upper, b.StrictLower)
	}
}

func TestResolvePercentMargin(t *testing.T) {
	b, err := Resolve(MustDec("100"), Spec{Mode: PercentMargin, Margin: MustDec("10")}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("90")) != 0 || b.Upper.Cmp(MustDec("110")) != 0 {
		t.Errorf("100 ±10%% = [%s, %s], want [90, 110]", b.Lower, b.Upper)
	}

	// Negative targets widen symmetrically around the target.
	b, err = Resolve(MustDec("-40"), Spec{Mode: PercentMargin, Margin: MustDec("5")}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("-42")) != 0 || b.Upper.Cmp(MustDec("-38")) != 0 {
		t.Errorf("-40 ±5%% = [%s, %s], want [-42, -38]", b.Lower, b.Upper)
	}
}

func TestResolvePercentMarginZeroTarget(t *testing.T) {
	// A percentage of zero is zero, which would accept nothing but exactly
	// 0; the fallback margin substitutes.
	b, err := Resolve(MustDec("0"), Spec{Mode: PercentMargin, Margin: MustDec("10")}, MustDec("0.1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("-0.1")) != 0 || b.Upper.Cmp(MustDec("0.1")) != 0 {
		t.Errorf("0 ±10%% with fallback 0.1 = [%s, %s], want [-0.1, 0.1]", b.Lower, b.Upper)
	}
}

func TestResolveAbsoluteMargin(t *testing.T) {
	b, err := Resolve(MustDec("10"), Spec{Mode: AbsoluteMargin, Margin: MustDec("0.5")}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("9.5")) != 0 || b.Upper.Cmp(MustDec("10.5")) != 0 {
		t.Errorf("10 ±0.5 = [%s, %s], want [9.5, 10.5]", b.Lower, b.Upper)
	}
}

func TestResolveRange(t *testing.T) {
	b, err := Resolve(Dec{}, Spec{Mode: Range, Min: MustDec("1"), Max: MustDec("20")}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("1")) != 0 || b.Upper.Cmp(MustDec("20")) != 0 || b.StrictLower {
		t.Errorf("range bounds = [%s, %s] strict=%v, want [1, 20] inclusive", b.Lower, b.Upper, b.StrictLower)
	}

	_, err = Resolve(Dec{}, Spec{Mode: Range, Min: MustDec("20"), Max: MustDec("1")}, Dec{})
	if !errors.Is(err, quizerr.ErrBounds) {
		t.Errorf("inverted range: got %v, want a bounds error", err)
	}
}

func TestResolveSigFigs(t *testing.T) {
	// 1234 at 3 significant figures: everything that rounds to 1230,
	// i.e. (1229, 1239] with the lower bound exclusive.
	b, err := Resolve(MustDec("1234"), Spec{Mode: SigFigs, Digits: 3}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("1229")) != 0 || b.Upper.Cmp(MustDec("1239")) != 0 {
		t.Errorf("1234 @ 3 sig figs = [%s, %s], want [1229, 1239]", b.Lower, b.Upper)
	}
	if !b.StrictLower {
		t.Error("sig-figs bounds must have an exclusive lower bound")
	}

	// 0.05 at 1 significant figure: half an ulp of the leading digit.
	b, err = Resolve(MustDec("0.05"), Spec{Mode: SigFigs, Digits: 1}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("0.045")) != 0 || b.Upper.Cmp(MustDec("0.055")) != 0 {
		t.Errorf("0.05 @ 1 sig fig = [%s, %s], want [0.045, 0.055]", b.Lower, b.Upper)
	}
}

func TestResolveSigFigsZeroTarget(t *testing.T) {
	b, err := Resolve(MustDec("0"), Spec{Mode: SigFigs, Digits: 3}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("-0.5")) != 0 || b.Upper.Cmp(MustDec("0.5")) != 0 {
		t.Errorf("0 @ 3 sig figs = [%s, %s], want [-0.5, 0.5]", b.Lower, b.Upper)
	}
}

func TestResolveDecimalPlaces(t *testing.T) {
	b, err := Resolve(MustDec("3.14"), Spec{Mode: DecimalPlaces, Digits: 2}, Dec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Lower.Cmp(MustDec("3.135")) != 0 || b.Upper.Cmp(MustDec("3.145")) != 0 {
		t.Errorf("3.14 @ 2 places = [%s, %s], want [3.135, 3.145]", b.Lower, b.Upper)
	}
	if !b.StrictLower {
		t.Error("decimal-places bounds must have an exclusive lower bound")
	}
}

func TestResolveNegativeDigits(t *testing.T) {
	for _, mode := range []Mode{SigFigs, DecimalPlaces} {
		_, err := Resolve(MustDec("1"), Spec{Mode: mode, Digits: -1}, Dec{})
		if !errors.Is(err, quizerr.ErrBounds) {
			t.Errorf("%s with negative digits: got %v, want a bounds error", mode, err)
		}
	}
}

func TestBoundsValidate(t *testing.T) {
	good := Bounds{Lower: MustDec("9"), Upper: MustDec("11")}
	if err := good.Validate(MustDec("10")); err != nil {
		t.Errorf("valid bounds rejected: %v", err)
	}

	inverted := Bounds{Lower: MustDec("11"), Upper: MustDec("9")}
	if err := inverted.Validate(MustDec("10")); err == nil {
		t.Error("inverted bounds accepted")
	}

	outside := Bounds{Lower: MustDec("1"), Upper: MustDec("2")}
	if err := outside.Validate(MustDec("10")); err == nil {
		t.Error("target outside bounds accepted")
	}
}
