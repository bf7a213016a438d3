// Package outline parses the tagged-block text authoring format: optional
// header lines, then blocks separated by "---" lines, each carrying a
// Type: tag and its per-kind fields, with an optional rationale section
// after a "===RATIONALES===" divider. Parsing is all-or-nothing; every
// failure is a SpecError carrying the offending block's line number.
package outline

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/core/tolerance"
	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
)

const rationaleDivider = "===RATIONALES==="

// Options configures a parse.
type Options struct {
	// Filename supplies the default title when the input has none.
	Filename string
	// TitleOverride replaces the authored title when non-empty.
	TitleOverride string
	// ZeroFallback is the absolute margin substituted for a percent
	// tolerance on a zero target.
	ZeroFallback tolerance.Dec
	// Idents supplies passage, blank, and association identifiers.
	Idents *detrand.Idents
}

var (
	choicePattern   = regexp.MustCompile(`^-\s*\[([xX ]?)\]\s*(.+)$`)
	pairPattern     = regexp.MustCompile(`^-\s*(.+?)\s*=>\s*(.+)$`)
	bulletPattern   = regexp.MustCompile(`^-\s*(.+)$`)
	numberedPattern = regexp.MustCompile(`^\d+\.\s*(.+)$`)
	qnumPattern     = regexp.MustCompile(`^[qQ](\d+)\s*:`)
)

var truthy = map[string]bool{"true": true, "t": true, "1": true, "yes": true}
var falsy = map[string]bool{"false": true, "f": true, "0": true, "no": true}

// passage end aliases accepted for the Type: tag.
var passageEndTags = map[string]bool{
	"STIMULUS_END": true,
	"ENDSTIMULUS":  true,
	"END_STIMULUS": true,
	"UNLINK":       true,
	"DETACH":       true,
}

type rawBlock struct {
	startLine int // 1-based line of the block's first line
	index     int // 1-based block position
	lines     []string
}

// Parse converts outline text into a quiz.
func Parse(data []byte, opts Options) (*quiz.Quiz, error) {
	content := strings.TrimPrefix(string(data), "\ufeff")

	quizText := content
	rationaleText := ""
	if i := strings.Index(content, rationaleDivider); i >= 0 {
		quizText = content[:i]
		rationaleText = content[i+len(rationaleDivider):]
	}

	q := &quiz.Quiz{TotalPoints: 100}
	blocks := splitBlocks(quizText, q)

	if q.Title == "" {
		if opts.Filename != "" {
			base := filepath.Base(opts.Filename)
			q.Title = strings.TrimSuffix(base, filepath.Ext(base))
		} else {
			q.Title = "Untitled Quiz"
		}
	}
	if opts.TitleOverride != "" {
		q.Title = opts.TitleOverride
	}

	openPassage := ""
	openBlock := rawBlock{}
	for _, b := range blocks {
		item, err := parseBlock(b, opts)
		if err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		switch item.Kind() {
		case quiz.PassageEnd:
			if openPassage == "" {
				return nil, quizerr.Specf(b.startLine, b.index, "passage end without an open passage block")
			}
			openPassage = ""
			continue
		case quiz.PassageBlock:
			if openPassage != "" {
				return nil, quizerr.Specf(b.startLine, b.index, "passage block opened inside another passage block")
			}
			item.Core().ForcedIdent = opts.Idents.Stimulus()
			openPassage = item.Core().ForcedIdent
			openBlock = b
		default:
			if openPassage != "" {
				item.Core().PassageRef = openPassage
			}
		}
		q.Items = append(q.Items, item)
	}
	if openPassage != "" {
		return nil, quizerr.Specf(openBlock.startLine, openBlock.index, "unclosed passage block")
	}
	if len(q.Items) == 0 {
		return nil, quizerr.Specf(0, 0, "no items parsed; the input needs at least one '---' block with a Type: tag")
	}

	q.Rationales = parseRationales(rationaleText)
	return q, nil
}

// splitBlocks separates header lines from "---"-delimited blocks, filling
// the quiz header fields as it goes.
func splitBlocks(text string, q *quiz.Quiz) []rawBlock {
	var blocks []rawBlock
	var current []string
	currentStart := 0

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "---" {
			if len(current) > 0 {
				blocks = append(blocks, rawBlock{startLine: currentStart, index: len(blocks) + 1, lines: current})
				current = nil
			}
			continue
		}

		if len(blocks) == 0 && len(current) == 0 {
			lowered := strings.ToLower(line)
			switch {
			case strings.HasPrefix(lowered, "title:"):
				q.Title = strings.TrimSpace(line[len("title:"):])
				continue
			case strings.HasPrefix(lowered, "totalpoints:"):
				if v, err := strconv.ParseFloat(strings.TrimSpace(line[len("totalpoints:"):]), 64); err == nil {
					q.TotalPoints = v
				}
				continue
			case strings.HasPrefix(lowered, "keeppoints:"):
				q.KeepPoints = truthy[strings.ToLower(strings.TrimSpace(line[len("keeppoints:"):]))]
				continue
			}
		}

		if len(current) == 0 {
			currentStart = lineNo
		}
		current = append(current, raw)
	}
	if len(current) > 0 {
		blocks = append(blocks, rawBlock{startLine: currentStart, index: len(blocks) + 1, lines: current})
	}
	return blocks
}

// list contexts inside a block.
type section int

const (
	secNone section = iota
	secPrompt
	secChoices
	secPairs
	secAccept
	secSequence
	secCategories
	secMembers
	secDistractors
)

type blockState struct {
	qtype       string
	points      float64
	pointsSet   bool
	promptLines []string
	choices     []quiz.Choice
	boolAnswer  *bool
	pairs       []quiz.Pair
	accept      []string
	sequence    []string
	header      string
	categories  []string
	members     [][2]string // text, category
	distractors []string

	target    tolerance.Dec
	hasTarget bool
	tolSpec   tolerance.Spec
	tolSet    bool
}

// parseBlock turns one block into an item, or nil for an empty block.
func parseBlock(b rawBlock, opts Options) (quiz.Item, error) {
	st := blockState{points: 10}
	sec := secNone

	fail := func(format string, args ...any) error {
		return quizerr.Specf(b.startLine, b.index, format, args...)
	}

	for _, raw := range b.lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if sec == secPrompt {
				st.promptLines = append(st.promptLines, "")
			}
			continue
		}

		lowered := strings.ToLower(line)
		value := func(tag string) string { return strings.TrimSpace(line[len(tag):]) }

		switch {
		case strings.HasPrefix(lowered, "type:"):
			st.qtype = strings.ToUpper(value("type:"))
			sec = secNone
			continue
		case strings.HasPrefix(lowered, "points:"):
			v, err := strconv.ParseFloat(value("points:"), 64)
			if err != nil {
				return nil, fail("invalid Points value %q", value("points:"))
			}
			st.points, st.pointsSet = v, true
			continue
		case strings.HasPrefix(lowered, "prompt:"):
			sec = secPrompt
			if first := value("prompt:"); first != "" {
				st.promptLines = append(st.promptLines, first)
			}
			continue
		case strings.HasPrefix(lowered, "header:"):
			st.header = value("header:")
			continue
		case strings.HasPrefix(lowered, "items:"):
			switch st.qtype {
			case "ORDERING":
				sec = secSequence
			case "CATEGORIZATION":
				sec = secMembers
			default:
				return nil, fail("Items field is only valid for ORDERING and CATEGORIZATION")
			}
			continue
		case strings.HasPrefix(lowered, "categories:"):
			sec = secCategories
			continue
		case strings.HasPrefix(lowered, "distractors:"):
			sec = secDistractors
			continue
		case strings.HasPrefix(lowered, "choices:"):
			sec = secChoices
			continue
		case strings.HasPrefix(lowered, "pairs:"):
			sec = secPairs
			continue
		case strings.HasPrefix(lowered, "accept:"), strings.HasPrefix(lowered, "answers:"):
			sec = secAccept
			continue
		case strings.HasPrefix(lowered, "answer:"):
			sec = secNone
			if err := parseAnswer(&st, value("answer:"), fail); err != nil {
				return nil, err
			}
			continue
		case strings.HasPrefix(lowered, "tolerance:"):
			sec = secNone
			if err := parseModifier(&st, "NUMERICAL tolerance", fail, func() (tolerance.Spec, error) {
				return tolerance.ParseMargin(value("tolerance:"))
			}); err != nil {
				return nil, err
			}
			continue
		case strings.HasPrefix(lowered, "precision:"):
			sec = secNone
			if err := parseModifier(&st, "NUMERICAL precision", fail, func() (tolerance.Spec, error) {
				return tolerance.ParsePrecision(value("precision:"))
			}); err != nil {
				return nil, err
			}
			continue
		case strings.HasPrefix(lowered, "range:"):
			sec = secNone
			if err := parseModifier(&st, "NUMERICAL range", fail, func() (tolerance.Spec, error) {
				return tolerance.ParseRange(value("range:"))
			}); err != nil {
				return nil, err
			}
			continue
		}

		if err := parseListLine(&st, sec, raw, line, fail); err != nil {
			return nil, err
		}
	}

	return buildItem(&st, b, opts)
}

func parseAnswer(st *blockState, value string, fail func(string, ...any) error) error {
	switch st.qtype {
	case "TF":
		lowered := strings.ToLower(value)
		switch {
		case truthy[lowered]:
			v := true
			st.boolAnswer = &v
		case falsy[lowered]:
			v := false
			st.boolAnswer = &v
		default:
			return fail("invalid TF Answer value %q; use true or false", value)
		}
	case "NUMERICAL":
		target, err := tolerance.ParseNumber(value)
		if err != nil {
			return fail("invalid numeric Answer %q: %v", value, err)
		}
		st.target, st.hasTarget = target, true
	default:
		return fail("Answer field is not valid for type %s", st.qtype)
	}
	return nil
}

func parseModifier(st *blockState, label string, fail func(string, ...any) error, parse func() (tolerance.Spec, error)) error {
	if st.qtype != "NUMERICAL" {
		return fail("%s field is only valid for NUMERICAL items", label)
	}
	if st.tolSet {
		return fail("NUMERICAL items take at most one of Tolerance, Precision, and Range")
	}
	spec, err := parse()
	if err != nil {
		return fail("%v", err)
	}
	st.tolSpec, st.tolSet = spec, true
	return nil
}

func parseListLine(st *blockState, sec section, raw, line string, fail func(string, ...any) error) error {
	switch sec {
	case secPrompt:
		st.promptLines = append(st.promptLines, raw)
	case secChoices:
		m := choicePattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid choice line %q; use '- [x] text' or '- [ ] text'", line)
		}
		st.choices = append(st.choices, quiz.Choice{
			Text:    strings.TrimSpace(m[2]),
			Correct: strings.EqualFold(strings.TrimSpace(m[1]), "x"),
		})
	case secPairs:
		m := pairPattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid pair line %q; use '- Term => Answer'", line)
		}
		st.pairs = append(st.pairs, quiz.Pair{Prompt: strings.TrimSpace(m[1]), Answer: strings.TrimSpace(m[2])})
	case secAccept:
		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid Accept line %q; use '- variant'", line)
		}
		st.accept = append(st.accept, strings.TrimSpace(m[1]))
	case secSequence:
		m := numberedPattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid ordering line %q; use '1. text'", line)
		}
		st.sequence = append(st.sequence, strings.TrimSpace(m[1]))
	case secCategories:
		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid category line %q; use '- name'", line)
		}
		st.categories = append(st.categories, strings.TrimSpace(m[1]))
	case secMembers:
		m := pairPattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid categorization line %q; use '- item => category'", line)
		}
		st.members = append(st.members, [2]string{strings.TrimSpace(m[1]), strings.TrimSpace(m[2])})
	case secDistractors:
		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			return fail("invalid distractor line %q; use '- text'", line)
		}
		st.distractors = append(st.distractors, strings.TrimSpace(m[1]))
	default:
		return fail("unexpected line %q outside any field", line)
	}
	return nil
}

func buildItem(st *blockState, b rawBlock, opts Options) (quiz.Item, error) {
	if st.qtype == "" {
		return nil, nil
	}
	fail := func(format string, args ...any) error {
		return quizerr.Specf(b.startLine, b.index, format, args...)
	}

	prompt := strings.TrimSpace(strings.Join(st.promptLines, "\n"))
	core := quiz.Core{Prompt: prompt, Points: st.points, PointsSet: st.pointsSet, Line: b.startLine}

	if passageEndTags[st.qtype] {
		return &quiz.PassageEndItem{}, nil
	}

	switch st.qtype {
	case "MC":
		return &quiz.SingleSelectItem{ItemCore: core, Choices: st.choices}, nil
	case "MA":
		return &quiz.MultiSelectItem{ItemCore: core, Choices: st.choices}, nil
	case "TF":
		if st.boolAnswer == nil {
			return nil, fail("TF item missing 'Answer: true|false'")
		}
		return &quiz.BooleanItem{ItemCore: core, AnswerTrue: *st.boolAnswer}, nil
	case "FITB":
		token := opts.Idents.BlankToken()
		display := "[" + token + "]"
		replaced := strings.ReplaceAll(prompt, "[blank]", display)
		if replaced == prompt {
			replaced = prompt + " [ " + display + " ]"
		}
		core.Prompt = replaced
		return &quiz.FillBlankItem{ItemCore: core, Accept: st.accept, BlankToken: token}, nil
	case "ESSAY":
		return &quiz.EssayItem{ItemCore: core}, nil
	case "FILEUPLOAD":
		return &quiz.FileResponseItem{ItemCore: core}, nil
	case "MATCHING":
		return &quiz.MatchPairsItem{ItemCore: core, Pairs: st.pairs}, nil
	case "ORDERING":
		if core.Prompt == "" {
			core.Prompt = st.header
		}
		entries := make([]quiz.SequenceEntry, len(st.sequence))
		for i, text := range st.sequence {
			entries[i] = quiz.SequenceEntry{Text: text, Ident: opts.Idents.SequenceEntry()}
		}
		return &quiz.OrderedSequenceItem{ItemCore: core, Header: st.header, Entries: entries}, nil
	case "CATEGORIZATION":
		return buildCategorize(st, core, opts), nil
	case "NUMERICAL":
		answer, err := resolveNumeric(st, opts)
		if err != nil {
			return nil, fail("%v", err)
		}
		return &quiz.NumericResponseItem{ItemCore: core, Answer: answer}, nil
	case "STIMULUS":
		core.Points, core.PointsSet = 0, false
		return &quiz.PassageBlockItem{ItemCore: core}, nil
	default:
		return nil, fail("unsupported Type %q", st.qtype)
	}
}

func buildCategorize(st *blockState, core quiz.Core, opts Options) *quiz.CategorizeItem {
	item := &quiz.CategorizeItem{ItemCore: core}
	for _, name := range st.categories {
		item.Categories = append(item.Categories, quiz.Category{Name: name, Ident: opts.Idents.Assoc()})
	}
	// Members sharing text share an ident, so one card can belong to one
	// category even when listed twice.
	memberIdents := map[string]string{}
	for _, m := range st.members {
		ident, ok := memberIdents[m[0]]
		if !ok {
			ident = opts.Idents.Assoc()
			memberIdents[m[0]] = ident
		}
		item.Members = append(item.Members, quiz.Member{Text: m[0], Ident: ident, Category: m[1]})
	}
	for _, d := range st.distractors {
		item.Distractors = append(item.Distractors, quiz.Distractor{Text: d, Ident: opts.Idents.Assoc()})
	}
	return item
}

func resolveNumeric(st *blockState, opts Options) (quiz.NumericAnswer, error) {
	spec := st.tolSpec
	if !st.tolSet {
		spec = tolerance.Spec{Mode: tolerance.Exact}
	}
	if !st.hasTarget && spec.Mode != tolerance.Range {
		return quiz.NumericAnswer{}, &quizerr.BoundsError{Mode: spec.Mode.String(), Message: "requires an Answer value"}
	}
	bounds, err := tolerance.Resolve(st.target, spec, opts.ZeroFallback)
	if err != nil {
		return quiz.NumericAnswer{}, err
	}
	return quiz.NumericAnswer{Target: st.target, HasTarget: st.hasTarget, Spec: spec, Bounds: bounds}, nil
}

// parseRationales reads the "---"-separated "Q<n>: text" entries following
// the divider. Entries without a leading Q-number align to scorable items
// in order.
func parseRationales(text string) map[int]string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	out := map[int]string{}
	seq := 0
	for _, block := range strings.Split(text, "---") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		seq++
		n := seq
		body := block
		if m := qnumPattern.FindStringSubmatch(block); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				n = v
			}
			body = strings.TrimSpace(block[len(m[0]):])
		} else if i := strings.Index(block, ":"); i >= 0 {
			body = strings.TrimSpace(block[i+1:])
		}
		if body != "" {
			out[n] = body
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
