// Command quizforge compiles a teacher-authored quiz specification into a
// Canvas-importable QTI package and a parallel answer-key outline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/longhornadam/QuizForge-sub000/core/markup"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/internal/archive"
	"github.com/longhornadam/QuizForge-sub000/internal/config"
	"github.com/longhornadam/QuizForge-sub000/internal/logging"
	"github.com/longhornadam/QuizForge-sub000/internal/pipeline"
)

const version = "1.0.0"

// CLI defines the command-line interface for quizforge.
var CLI struct {
	Verbose bool   `name:"verbose" short:"v" help:"Enable debug logging"`
	Config  string `name:"config" help:"Path to YAML config file" type:"path"`

	Compile CompileCmd `cmd:"" help:"Compile a quiz spec into a Canvas QTI package"`
	Check   CheckCmd   `cmd:"" help:"Parse and validate a quiz spec without generating output"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// CompileCmd compiles a spec into a package.
type CompileCmd struct {
	Spec        string  `arg:"" help:"Path to quiz spec (outline text or JSON)" type:"existingfile"`
	Output      string  `name:"output" short:"o" help:"Output zip path (default: <spec>.zip)" type:"path"`
	Outline     string  `name:"outline" help:"Write the answer-key outline to this path" type:"path"`
	Bundle      string  `name:"bundle" help:"Write a tar.xz review bundle to this path" type:"path"`
	Format      string  `name:"format" default:"auto" enum:"auto,outline,json" help:"Input format (auto, outline, json)"`
	FreshSeed   bool    `name:"fresh-seed" help:"Seed identifiers from OS entropy instead of the input hash"`
	Total       float64 `name:"total" help:"Override the total point pool"`
	KeepPoints  bool    `name:"keep-points" help:"Keep authored points, skip reallocation"`
	Enrich      bool    `name:"enrich" help:"Enable enriched passage rendering (numbering, verse layout)"`
	PassageKind string  `name:"passage-kind" default:"auto" enum:"auto,prose,verse,code" help:"Pin the passage kind for enriched rendering"`
}

func (c *CompileCmd) Run() error {
	opts, err := baseOptions()
	if err != nil {
		return err
	}
	opts.Filename = filepath.Base(c.Spec)
	opts.FreshSeed = c.FreshSeed
	opts.TotalPoints = c.Total
	opts.KeepPoints = c.KeepPoints
	if opts.Format, err = pipeline.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.Enrich {
		opts.Formatter = markup.Formatter{
			Mode: markup.Enriched,
			Kind: markup.ParseKind(c.PassageKind),
		}
	}

	src, err := os.ReadFile(c.Spec)
	if err != nil {
		return fmt.Errorf("reading spec: %w", err)
	}

	result, err := pipeline.Run(context.Background(), src, opts)
	if err != nil {
		return reportError(err)
	}

	output := c.Output
	if output == "" {
		output = strings.TrimSuffix(c.Spec, filepath.Ext(c.Spec)) + ".zip"
	}
	if err := os.WriteFile(output, result.Zip, 0644); err != nil {
		return fmt.Errorf("writing package: %w", err)
	}
	fmt.Printf("wrote %s (%d questions, %.1f points)\n", output, len(result.Quiz.Scorable()), result.Quiz.PointSum())

	if c.Outline != "" {
		if err := os.WriteFile(c.Outline, []byte(result.Outline), 0644); err != nil {
			return fmt.Errorf("writing outline: %w", err)
		}
		fmt.Printf("wrote %s\n", c.Outline)
	}
	if c.Bundle != "" {
		bundle := &archive.Bundle{
			Artifacts: result.Artifacts,
			Outline:   result.Outline,
			Log:       result.Log,
		}
		if err := archive.WriteBundle(bundle, c.Bundle); err != nil {
			return fmt.Errorf("writing bundle: %w", err)
		}
		fmt.Printf("wrote %s\n", c.Bundle)
	}

	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

// CheckCmd validates a spec and reports findings.
type CheckCmd struct {
	Spec   string `arg:"" help:"Path to quiz spec (outline text or JSON)" type:"existingfile"`
	Format string `name:"format" default:"auto" enum:"auto,outline,json" help:"Input format (auto, outline, json)"`
}

func (c *CheckCmd) Run() error {
	opts, err := baseOptions()
	if err != nil {
		return err
	}
	opts.Filename = filepath.Base(c.Spec)
	if opts.Format, err = pipeline.ParseFormat(c.Format); err != nil {
		return err
	}

	src, err := os.ReadFile(c.Spec)
	if err != nil {
		return fmt.Errorf("reading spec: %w", err)
	}

	q, warnings, err := pipeline.Check(context.Background(), src, opts)
	if err != nil {
		return reportError(err)
	}
	fmt.Printf("ok: %q, %d questions, %.1f points authored\n", q.Title, len(q.Scorable()), q.PointSum())
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("quizforge version %s\n", version)
	return nil
}

// baseOptions loads config and applies global flags.
func baseOptions() (pipeline.Options, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return pipeline.Options{}, err
	}
	level := logging.LevelInfo
	if CLI.Verbose {
		level = logging.LevelDebug
	}
	logging.InitLogger(level, logging.FormatText)
	return pipeline.Options{Config: cfg}, nil
}

// reportError renders pipeline failures with their category so authors can
// tell input problems from tool defects.
func reportError(err error) error {
	switch {
	case errors.Is(err, quizerr.ErrSpec):
		return fmt.Errorf("spec problem: %w", err)
	case errors.Is(err, quizerr.ErrStructural):
		return fmt.Errorf("validation failed: %w", err)
	case errors.Is(err, quizerr.ErrBounds):
		return fmt.Errorf("numeric tolerance problem: %w", err)
	case errors.Is(err, quizerr.ErrGeneration):
		return fmt.Errorf("internal defect, no output written: %w", err)
	default:
		return err
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("quizforge"),
		kong.Description("QuizForge - quiz spec to Canvas QTI compiler"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
