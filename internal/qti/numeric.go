package qti

import (
	"strconv"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
)

// buildNumericResponse emits the typed-decimal entry and its acceptance
// condition. Canvas requires a varequal even when only bounds matter, so
// range mode without a target synthesizes the interval midpoint. Every
// number is serialized through Dec.Wire; the importer rejects bare
// integers and undotted scientific mantissas.
func buildNumericResponse(item, presentation *element, ans quiz.NumericAnswer) error {
	rs := presentation.child("response_str", attr{"ident", "response1"}, attr{"rcardinality", "Single"})
	rs.child("render_fib", attr{"fibtype", "Decimal"}).child("response_label", attr{"ident", "answer1"})

	rp := newResprocessing(item)
	cond := rp.child("respcondition", attr{"continue", "No"})
	or := cond.child("conditionvar").child("or")

	if ans.Spec.Mode == tolerance.Range {
		value := ans.Target
		if !ans.HasTarget {
			value = ans.Bounds.Lower.Add(ans.Bounds.Upper).Mul(tolerance.MustDec("0.5"))
		}
		or.child("varequal", attr{"respident", "response1"}).withText(value.Wire())
	} else {
		if !ans.HasTarget {
			return quizerr.Generationf("assessment", "numeric item in %s mode has no target value", ans.Spec.Mode)
		}
		attrs := []attr{{"respident", "response1"}}
		switch ans.Spec.Mode {
		case tolerance.Exact:
			// Bounds collapse to the target; no margin attributes.
		case tolerance.PercentMargin:
			attrs = append(attrs, attr{"margintype", "percent"}, attr{"margin", ans.Spec.Margin.Wire()})
		case tolerance.AbsoluteMargin:
			attrs = append(attrs, attr{"margintype", "absolute"}, attr{"margin", ans.Spec.Margin.Wire()})
		case tolerance.SigFigs:
			attrs = append(attrs, attr{"precisiontype", "significantDigits"}, attr{"precision", strconv.Itoa(ans.Spec.Digits)})
		case tolerance.DecimalPlaces:
			attrs = append(attrs, attr{"precisiontype", "decimals"}, attr{"precision", strconv.Itoa(ans.Spec.Digits)})
		default:
			return quizerr.Generationf("assessment", "unhandled tolerance mode %s", ans.Spec.Mode)
		}
		or.child("varequal", attrs...).withText(ans.Target.Wire())
	}

	and := or.child("and")
	lowerTag := "vargte"
	if ans.Bounds.StrictLower {
		lowerTag = "vargt"
	}
	and.child(lowerTag, attr{"respident", "response1"}).withText(ans.Bounds.Lower.Wire())
	and.child("varlte", attr{"respident", "response1"}).withText(ans.Bounds.Upper.Wire())

	cond.child("setvar", attr{"action", "Set"}, attr{"varname", "SCORE"}).withText("100")
	return nil
}
