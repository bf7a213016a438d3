// Package qjson parses the structured JSON authoring format. The document
// is validated against an embedded JSON Schema before decoding, so the
// decoder only ever sees well-shaped input; schema violations surface as
// SpecErrors carrying the failing instance path.
package qjson

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var parsed any
		if err := json.Unmarshal(schemaJSON, &parsed); err != nil {
			schemaErr = fmt.Errorf("parse embedded schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://quiz.json", parsed); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = c.Compile("schema://quiz.json")
	})
	return schema, schemaErr
}

// Options configures a parse. The fields mirror the outline parser's.
type Options struct {
	TitleOverride string
	ZeroFallback  tolerance.Dec
	Idents        *detrand.Idents
}

type document struct {
	Version     string            `json:"version"`
	Title       string            `json:"title"`
	TotalPoints float64           `json:"total_points"`
	KeepPoints  bool              `json:"keep_points"`
	Items       []item            `json:"items"`
	Rationales  map[string]string `json:"rationales"`
}

type item struct {
	Type        string      `json:"type"`
	Prompt      string      `json:"prompt"`
	Points      *float64    `json:"points"`
	Choices     []choice    `json:"choices"`
	Answer      any         `json:"answer"`
	Accept      []string    `json:"accept"`
	Pairs       []pair      `json:"pairs"`
	Header      string      `json:"header"`
	Items       []member    `json:"items"`
	Categories  []string    `json:"categories"`
	Distractors []string    `json:"distractors"`
	Evaluation  *evaluation `json:"evaluation"`
}

type choice struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

type pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// member is either a plain string (ordering) or a label/category object
// (categorization).
type member struct {
	Text     string
	Category string
}

func (m *member) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Text = s
		return nil
	}
	var obj struct {
		Label    string `json:"label"`
		Category string `json:"category"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	m.Text, m.Category = obj.Label, obj.Category
	return nil
}

type evaluation struct {
	Mode  string `json:"mode"`
	Value any    `json:"value"`
	Min   any    `json:"min"`
	Max   any    `json:"max"`
}

// Parse converts a JSON quiz document into a quiz.
func Parse(data []byte, opts Options) (*quiz.Quiz, error) {
	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &quizerr.SpecError{Cause: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := sch.Validate(parsed); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			path := "/" + strings.Join(leaf.InstanceLocation, "/")
			return nil, &quizerr.SpecError{Cause: fmt.Sprintf("schema violation at %s: %v", path, leaf.Error())}
		}
		return nil, &quizerr.SpecError{Cause: fmt.Sprintf("schema violation: %v", err)}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &quizerr.SpecError{Cause: fmt.Sprintf("decoding document: %v", err)}
	}

	q := &quiz.Quiz{
		Title:       doc.Title,
		TotalPoints: doc.TotalPoints,
		KeepPoints:  doc.KeepPoints,
	}
	if q.Title == "" {
		q.Title = "Untitled Quiz"
	}
	if opts.TitleOverride != "" {
		q.Title = opts.TitleOverride
	}
	if q.TotalPoints == 0 {
		q.TotalPoints = 100
	}

	openPassage := ""
	openIndex := 0
	for i, it := range doc.Items {
		built, err := buildItem(it, i+1, opts)
		if err != nil {
			return nil, err
		}
		if built == nil {
			continue
		}
		switch built.Kind() {
		case quiz.PassageEnd:
			if openPassage == "" {
				return nil, quizerr.Specf(0, i+1, "passage end without an open passage block")
			}
			openPassage = ""
			continue
		case quiz.PassageBlock:
			if openPassage != "" {
				return nil, quizerr.Specf(0, i+1, "passage block opened inside another passage block")
			}
			built.Core().ForcedIdent = opts.Idents.Stimulus()
			openPassage = built.Core().ForcedIdent
			openIndex = i + 1
		default:
			if openPassage != "" {
				built.Core().PassageRef = openPassage
			}
		}
		q.Items = append(q.Items, built)
	}
	if openPassage != "" {
		return nil, quizerr.Specf(0, openIndex, "unclosed passage block")
	}
	if len(q.Items) == 0 {
		return nil, quizerr.Specf(0, 0, "document contains no items")
	}

	if len(doc.Rationales) > 0 {
		q.Rationales = map[int]string{}
		for k, v := range doc.Rationales {
			var n int
			fmt.Sscanf(k, "%d", &n)
			if n > 0 && v != "" {
				q.Rationales[n] = v
			}
		}
	}
	return q, nil
}

func buildItem(it item, index int, opts Options) (quiz.Item, error) {
	core := quiz.Core{Prompt: it.Prompt}
	if it.Points != nil {
		core.Points, core.PointsSet = *it.Points, true
	} else {
		core.Points = 10
	}

	fail := func(format string, args ...any) error {
		return quizerr.Specf(0, index, format, args...)
	}

	switch it.Type {
	case "MC":
		return &quiz.SingleSelectItem{ItemCore: core, Choices: toChoices(it.Choices)}, nil
	case "MA":
		return &quiz.MultiSelectItem{ItemCore: core, Choices: toChoices(it.Choices)}, nil
	case "TF":
		answer, err := boolAnswer(it.Answer)
		if err != nil {
			return nil, fail("%v", err)
		}
		return &quiz.BooleanItem{ItemCore: core, AnswerTrue: answer}, nil
	case "FITB":
		token := opts.Idents.BlankToken()
		display := "[" + token + "]"
		replaced := strings.ReplaceAll(core.Prompt, "[blank]", display)
		if replaced == core.Prompt {
			replaced = core.Prompt + " [ " + display + " ]"
		}
		core.Prompt = replaced
		return &quiz.FillBlankItem{ItemCore: core, Accept: it.Accept, BlankToken: token}, nil
	case "ESSAY":
		return &quiz.EssayItem{ItemCore: core}, nil
	case "FILEUPLOAD":
		return &quiz.FileResponseItem{ItemCore: core}, nil
	case "MATCHING":
		pairs := make([]quiz.Pair, len(it.Pairs))
		for i, p := range it.Pairs {
			pairs[i] = quiz.Pair{Prompt: p.Left, Answer: p.Right}
		}
		return &quiz.MatchPairsItem{ItemCore: core, Pairs: pairs}, nil
	case "ORDERING":
		if core.Prompt == "" {
			core.Prompt = it.Header
		}
		entries := make([]quiz.SequenceEntry, len(it.Items))
		for i, m := range it.Items {
			entries[i] = quiz.SequenceEntry{Text: m.Text, Ident: opts.Idents.SequenceEntry()}
		}
		return &quiz.OrderedSequenceItem{ItemCore: core, Header: it.Header, Entries: entries}, nil
	case "CATEGORIZATION":
		return buildCategorize(it, core, opts), nil
	case "NUMERICAL":
		answer, err := buildNumeric(it, opts)
		if err != nil {
			return nil, fail("%v", err)
		}
		return &quiz.NumericResponseItem{ItemCore: core, Answer: answer}, nil
	case "STIMULUS":
		core.Points, core.PointsSet = 0, false
		return &quiz.PassageBlockItem{ItemCore: core}, nil
	case "STIMULUS_END":
		return &quiz.PassageEndItem{}, nil
	default:
		return nil, fail("unsupported item type %q", it.Type)
	}
}

func toChoices(in []choice) []quiz.Choice {
	out := make([]quiz.Choice, len(in))
	for i, c := range in {
		out[i] = quiz.Choice{Text: c.Text, Correct: c.Correct}
	}
	return out
}

func boolAnswer(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(t) {
		case "true", "t", "1", "yes":
			return true, nil
		case "false", "f", "0", "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("invalid TF answer %v; use true or false", v)
}

func numericValue(v any) (tolerance.Dec, error) {
	switch t := v.(type) {
	case string:
		return tolerance.ParseNumber(t)
	case float64:
		// json decodes all numbers as float64; the round-trip format keeps
		// every digit the float carries, at any magnitude.
		return tolerance.ParseNumber(strconv.FormatFloat(t, 'g', -1, 64))
	default:
		return tolerance.Dec{}, fmt.Errorf("invalid numeric value %v", v)
	}
}

func buildNumeric(it item, opts Options) (quiz.NumericAnswer, error) {
	spec := tolerance.Spec{Mode: tolerance.Exact}
	if ev := it.Evaluation; ev != nil {
		switch ev.Mode {
		case "exact":
		case "percent_margin", "absolute_margin":
			margin, err := numericValue(ev.Value)
			if err != nil {
				return quiz.NumericAnswer{}, fmt.Errorf("evaluation value: %w", err)
			}
			spec.Margin = margin.Abs()
			if ev.Mode == "percent_margin" {
				spec.Mode = tolerance.PercentMargin
			} else {
				spec.Mode = tolerance.AbsoluteMargin
			}
		case "range":
			lo, err := numericValue(ev.Min)
			if err != nil {
				return quiz.NumericAnswer{}, fmt.Errorf("evaluation min: %w", err)
			}
			hi, err := numericValue(ev.Max)
			if err != nil {
				return quiz.NumericAnswer{}, fmt.Errorf("evaluation max: %w", err)
			}
			if lo.Cmp(hi) >= 0 {
				return quiz.NumericAnswer{}, fmt.Errorf("range minimum %s must be less than maximum %s", lo, hi)
			}
			spec = tolerance.Spec{Mode: tolerance.Range, Min: lo, Max: hi}
		case "significant_digits", "decimal_places":
			digits, ok := ev.Value.(float64)
			if !ok || digits < 0 || digits != float64(int(digits)) {
				return quiz.NumericAnswer{}, fmt.Errorf("evaluation value must be a non-negative integer, got %v", ev.Value)
			}
			spec.Digits = int(digits)
			if ev.Mode == "significant_digits" {
				spec.Mode = tolerance.SigFigs
			} else {
				spec.Mode = tolerance.DecimalPlaces
			}
		default:
			return quiz.NumericAnswer{}, fmt.Errorf("unsupported evaluation mode %q", ev.Mode)
		}
	}

	var target tolerance.Dec
	hasTarget := false
	if it.Answer != nil {
		var err error
		target, err = numericValue(it.Answer)
		if err != nil {
			return quiz.NumericAnswer{}, fmt.Errorf("answer: %w", err)
		}
		hasTarget = true
	}
	if !hasTarget && spec.Mode != tolerance.Range {
		return quiz.NumericAnswer{}, fmt.Errorf("%s mode requires an answer value", spec.Mode)
	}

	bounds, err := tolerance.Resolve(target, spec, opts.ZeroFallback)
	if err != nil {
		return quiz.NumericAnswer{}, err
	}
	return quiz.NumericAnswer{Target: target, HasTarget: hasTarget, Spec: spec, Bounds: bounds}, nil
}

func buildCategorize(it item, core quiz.Core, opts Options) *quiz.CategorizeItem {
	out := &quiz.CategorizeItem{ItemCore: core}
	for _, name := range it.Categories {
		out.Categories = append(out.Categories, quiz.Category{Name: name, Ident: opts.Idents.Assoc()})
	}
	memberIdents := map[string]string{}
	for _, m := range it.Items {
		ident, ok := memberIdents[m.Text]
		if !ok {
			ident = opts.Idents.Assoc()
			memberIdents[m.Text] = ident
		}
		out.Members = append(out.Members, quiz.Member{Text: m.Text, Ident: ident, Category: m.Category})
	}
	for _, d := range it.Distractors {
		out.Distractors = append(out.Distractors, quiz.Distractor{Text: d, Ident: opts.Idents.Assoc()})
	}
	return out
}
