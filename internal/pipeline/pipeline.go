// Package pipeline orchestrates a compile run: parse, validate, autofix,
// generate, crosscheck, package. Each run owns its randomness source and
// identifier set; there is no global state, and the same input bytes with
// the same configuration produce the same package byte for byte.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/longhornadam/QuizForge-sub000/core/autofix"
	"github.com/longhornadam/QuizForge-sub000/core/markup"
	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
	"github.com/longhornadam/QuizForge-sub000/core/validate"
	"github.com/longhornadam/QuizForge-sub000/internal/archive"
	"github.com/longhornadam/QuizForge-sub000/internal/config"
	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
	outlinefmt "github.com/longhornadam/QuizForge-sub000/internal/formats/outline"
	"github.com/longhornadam/QuizForge-sub000/internal/formats/qjson"
	"github.com/longhornadam/QuizForge-sub000/internal/logging"
	"github.com/longhornadam/QuizForge-sub000/internal/outline"
	"github.com/longhornadam/QuizForge-sub000/internal/qti"
)

// Format selects the input parser.
type Format int

const (
	// FormatAuto sniffs the input: a document starting with '{' is JSON.
	FormatAuto Format = iota
	// FormatOutline forces the tagged-block text parser.
	FormatOutline
	// FormatJSON forces the JSON parser.
	FormatJSON
)

// ParseFormat maps a CLI format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "auto":
		return FormatAuto, nil
	case "outline":
		return FormatOutline, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatAuto, fmt.Errorf("unknown input format %q", s)
	}
}

// Options configures one run.
type Options struct {
	// Filename of the input, used for the default quiz title.
	Filename string
	Format   Format
	Config   config.Config
	// FreshSeed draws randomness from the OS instead of the input hash,
	// giving new identifiers on every run.
	FreshSeed bool
	// TotalPoints overrides the configured point pool when positive.
	TotalPoints float64
	// KeepPoints disables point reallocation regardless of the input.
	KeepPoints bool
	// Formatter controls passage rendering. The zero value is literal.
	Formatter markup.Formatter
}

// Result is a successful run's output.
type Result struct {
	Zip       []byte
	Outline   string
	Log       string
	Fixes     []string
	Warnings  []quizerr.FairnessWarning
	Token     string
	Quiz      *quiz.Quiz
	Artifacts *qti.Artifacts
}

// Run compiles an authored quiz into a Canvas package.
func Run(ctx context.Context, src []byte, opts Options) (*Result, error) {
	source, ids, err := newSource(src, opts)
	if err != nil {
		return nil, err
	}

	q, err := parse(src, opts, ids)
	if err != nil {
		return nil, err
	}
	if opts.TotalPoints > 0 {
		q.TotalPoints = opts.TotalPoints
	}
	if opts.KeepPoints {
		q.KeepPoints = true
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := validate.Structure(q); err != nil {
		return nil, err
	}
	logging.Stage("validate", time.Since(start))

	start = time.Now()
	fixOpts := autofix.Options{
		TotalPoints:    opts.Config.TotalPoints,
		HeavyWeight:    opts.Config.HeavyWeight,
		MaxPositionRun: opts.Config.MaxPositionRun,
		Source:         source,
	}
	fixed, fixes := autofix.Apply(q, fixOpts)
	for _, fix := range fixes {
		logging.FixApplied(fix)
	}
	logging.Stage("autofix", time.Since(start))

	warnings := validate.Fairness(fixed, validate.Limits{
		LongestBias:    opts.Config.LongestBiasThreshold,
		LengthVariance: opts.Config.LengthVarianceLimit,
		MaxPositionRun: opts.Config.MaxPositionRun,
	})
	for _, w := range warnings {
		logging.FairnessWarning(w.Code, w.Message)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	formatter := opts.Formatter
	if formatter.VerseThreshold == 0 {
		formatter.VerseThreshold = opts.Config.VerseThreshold
	}
	arts, err := qti.Generate(fixed, ids, formatter)
	if err != nil {
		return nil, err
	}
	if err := qti.Crosscheck(fixed, arts, formatter); err != nil {
		return nil, err
	}
	logging.Stage("generate", time.Since(start))

	zipBytes, err := archive.Zip(arts)
	if err != nil {
		return nil, quizerr.Generationf("package", "zip assembly failed: %v", err)
	}

	return &Result{
		Zip:       zipBytes,
		Outline:   outline.AnswerKey(fixed),
		Log:       outline.ProcessingLog(fixed, fixes, warnings),
		Fixes:     fixes,
		Warnings:  warnings,
		Token:     arts.Token,
		Quiz:      fixed,
		Artifacts: arts,
	}, nil
}

// Check parses and validates without generating anything. Fairness runs on
// the unfixed quiz so the author sees what autofix would be reacting to.
func Check(ctx context.Context, src []byte, opts Options) (*quiz.Quiz, []quizerr.FairnessWarning, error) {
	_, ids, err := newSource(src, opts)
	if err != nil {
		return nil, nil, err
	}

	q, err := parse(src, opts, ids)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := validate.Structure(q); err != nil {
		return q, nil, err
	}
	warnings := validate.Fairness(q, validate.Limits{
		LongestBias:    opts.Config.LongestBiasThreshold,
		LengthVariance: opts.Config.LengthVarianceLimit,
		MaxPositionRun: opts.Config.MaxPositionRun,
	})
	return q, warnings, nil
}

// newSource builds the run's randomness source and identifier set. The
// seed is the input itself unless the caller asked for fresh entropy, so
// re-running an unchanged spec yields an identical package.
func newSource(src []byte, opts Options) (*detrand.Source, *detrand.Idents, error) {
	var source *detrand.Source
	if opts.FreshSeed {
		var err error
		source, err = detrand.NewFresh()
		if err != nil {
			return nil, nil, fmt.Errorf("seeding randomness: %w", err)
		}
	} else {
		source = detrand.New(src)
	}
	return source, detrand.NewIdents(source), nil
}

func parse(src []byte, opts Options, ids *detrand.Idents) (*quiz.Quiz, error) {
	zeroFallback, err := tolerance.ParseDec(opts.Config.ZeroPercentFallback)
	if err != nil {
		return nil, fmt.Errorf("invalid zero_percent_fallback: %w", err)
	}

	format := opts.Format
	if format == FormatAuto {
		if trimmed := bytes.TrimLeft(src, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
			format = FormatJSON
		} else {
			format = FormatOutline
		}
	}

	switch format {
	case FormatJSON:
		return qjson.Parse(src, qjson.Options{
			ZeroFallback: zeroFallback,
			Idents:       ids,
		})
	default:
		return outlinefmt.Parse(src, outlinefmt.Options{
			Filename:     opts.Filename,
			ZeroFallback: zeroFallback,
			Idents:       ids,
		})
	}
}
