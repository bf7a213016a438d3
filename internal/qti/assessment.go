// Package qti generates the Canvas-importable QTI 1.2 artifact set: the
// IMS CC manifest, the assessment body, and the Canvas metadata document.
// All three share one identifier set so every cross-reference agrees by
// construction; Crosscheck re-parses the output and proves it.
package qti

import (
	"fmt"
	"math"

	"github.com/longhornadam/QuizForge-sub000/core/markup"
	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
	"github.com/longhornadam/QuizForge-sub000/internal/detrand"
)

const (
	qtiNamespace = "http://www.imsglobal.org/xsd/ims_qtiasiv1p2"
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
)

// Artifacts is the generated document set of one package.
type Artifacts struct {
	Manifest   string // imsmanifest.xml
	Assessment string // <token>/<token>.xml
	Meta       string // <token>/assessment_meta.xml
	Token      string // container folder name shared by every reference
}

// Generate builds the three package documents for a validated quiz.
func Generate(q *quiz.Quiz, ids *detrand.Idents, f markup.Formatter) (*Artifacts, error) {
	assessment, err := BuildAssessment(q, ids, f)
	if err != nil {
		return nil, err
	}
	return &Artifacts{
		Manifest:   BuildManifest(q.Title, ids),
		Assessment: assessment,
		Meta:       BuildMeta(q.Title, q.PointSum(), ids.GUID),
		Token:      ids.GUID,
	}, nil
}

// questionTypes maps scorable kinds to the Canvas question_type metadata
// entry. Passage blocks are text_only_question and handled separately.
var questionTypes = map[quiz.Kind]string{
	quiz.SingleSelect:    "multiple_choice_question",
	quiz.MultiSelect:     "multiple_answers_question",
	quiz.Boolean:         "true_false_question",
	quiz.FillBlank:       "fill_in_multiple_blanks_question",
	quiz.Essay:           "essay_question",
	quiz.FileResponse:    "file_upload_question",
	quiz.MatchPairs:      "matching_question",
	quiz.OrderedSequence: "ordering_question",
	quiz.Categorize:      "categorization_question",
	quiz.NumericResponse: "numerical_question",
}

// BuildAssessment renders the questestinterop document.
func BuildAssessment(q *quiz.Quiz, ids *detrand.Idents, f markup.Formatter) (string, error) {
	root := newElement("questestinterop",
		attr{"xmlns", qtiNamespace},
		attr{"xmlns:xsi", xsiNamespace},
		attr{"xsi:schemaLocation", qtiNamespace + " http://www.imsglobal.org/xsd/ims_qtiasiv1p2p1.xsd"},
	)
	assessment := root.child("assessment", attr{"ident", ids.Assessment}, attr{"title", q.Title})

	meta := assessment.child("qtimetadata")
	field := meta.child("qtimetadatafield")
	field.child("fieldlabel").withText("cc_maxattempts")
	field.child("fieldentry").withText("1")

	section := assessment.child("section", attr{"ident", "root_section"})
	position := 0
	for _, it := range q.Items {
		if it.Kind() == quiz.PassageEnd {
			continue
		}
		position++
		item, err := buildItem(it, position, ids, f)
		if err != nil {
			return "", err
		}
		section.append(item)
	}
	return serialize(root), nil
}

func buildItem(it quiz.Item, position int, ids *detrand.Idents, f markup.Formatter) (*element, error) {
	core := it.Core()
	ident := core.ForcedIdent
	if ident == "" {
		ident = ids.Item(position)
	}
	item := newElement("item", attr{"ident", ident}, attr{"title", fmt.Sprintf("Q%02d", position)})

	qmeta := item.child("itemmetadata").child("qtimetadata")
	metaField := func(label, entry string) {
		field := qmeta.child("qtimetadatafield")
		field.child("fieldlabel").withText(label)
		field.child("fieldentry").withText(entry)
	}

	kind := it.Kind()
	if kind == quiz.PassageBlock {
		metaField("question_type", "text_only_question")
		metaField("points_possible", "0.0")
	} else {
		qt, ok := questionTypes[kind]
		if !ok {
			return nil, quizerr.Generationf("assessment", "no question type mapping for kind %s", kind)
		}
		metaField("question_type", qt)
		metaField("calculator_type", "none")
		metaField("points_possible", fmt.Sprintf("%.1f", core.Points))
	}
	if core.PassageRef != "" {
		metaField("parent_stimulus_item_ident", core.PassageRef)
	}

	presentation := item.child("presentation")
	html, err := promptHTML(it, f)
	if err != nil {
		return nil, err
	}
	presentation.child("material").append(htmlMattext(html))

	switch v := it.(type) {
	case *quiz.PassageBlockItem:
		return item, nil
	case *quiz.SingleSelectItem:
		err = buildSingleSelect(item, presentation, v.Choices)
	case *quiz.MultiSelectItem:
		err = buildMultiSelect(item, presentation, v.Choices)
	case *quiz.BooleanItem:
		buildBoolean(item, presentation, v.AnswerTrue)
	case *quiz.FillBlankItem:
		buildFillBlank(item, presentation, v, ids)
	case *quiz.EssayItem:
		buildWrittenResponse(presentation)
	case *quiz.FileResponseItem:
		buildWrittenResponse(presentation)
	case *quiz.MatchPairsItem:
		buildMatching(item, presentation, v.Pairs, ids)
	case *quiz.OrderedSequenceItem:
		buildOrdering(item, presentation, v)
	case *quiz.CategorizeItem:
		buildCategorize(item, presentation, v)
	case *quiz.NumericResponseItem:
		err = buildNumericResponse(item, presentation, v.Answer)
	default:
		err = quizerr.Generationf("assessment", "unhandled item kind %s at position %d", kind, position)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// promptHTML renders the item's prompt. Passage blocks go through the
// passage formatter; everything else gets paragraph markup.
func promptHTML(it quiz.Item, f markup.Formatter) (string, error) {
	if it.Kind() == quiz.PassageBlock {
		return f.Passage(it.Core().Prompt)
	}
	return markup.Prompt(it.Core().Prompt), nil
}

// htmlMattext wraps an HTML fragment in a mattext element. The fragment is
// stored as text and XML-escaped on serialization; readers unescape it.
func htmlMattext(html string) *element {
	return newElement("mattext", attr{"texttype", "text/html"}).withText(html)
}

// shortHTML renders short authored text (choices, matching terms, sequence
// entries, category names) as a single paragraph with inline code support.
func shortHTML(text string) string {
	return "<p>" + markup.Inline(text) + "</p>"
}

// newResprocessing adds the resprocessing skeleton with the SCORE decvar.
func newResprocessing(item *element) *element {
	resprocessing := item.child("resprocessing")
	outcomes := resprocessing.child("outcomes")
	outcomes.child("decvar",
		attr{"maxvalue", "100"}, attr{"minvalue", "0"},
		attr{"varname", "SCORE"}, attr{"vartype", "Decimal"})
	return resprocessing
}

// choiceIdent returns the label ident for the choice at index i: a, b, c...
func choiceIdent(i int) string {
	return string(rune('a' + i))
}

// partialCredit splits 100 into n two-decimal shares that sum exactly; the
// last share absorbs rounding drift.
func partialCredit(n int) []float64 {
	if n < 1 {
		n = 1
	}
	per := math.Round(10000/float64(n)) / 100
	out := make([]float64, n)
	running := 0.0
	for i := range out {
		if i == n-1 {
			out[i] = math.Round((100-running)*100) / 100
		} else {
			out[i] = per
			running += per
		}
	}
	return out
}

func buildSingleSelect(item, presentation *element, choices []quiz.Choice) error {
	lid := presentation.child("response_lid", attr{"ident", "response1"}, attr{"rcardinality", "Single"})
	rc := lid.child("render_choice")
	correct := ""
	for i, c := range choices {
		ident := choiceIdent(i)
		label := rc.child("response_label", attr{"ident", ident})
		label.child("material").append(htmlMattext(markup.Prompt(c.Text)))
		if c.Correct && correct == "" {
			correct = ident
		}
	}
	if correct == "" {
		return quizerr.Generationf("assessment", "single-select item reached generation with no correct choice")
	}
	rp := newResprocessing(item)
	cond := rp.child("respcondition", attr{"continue", "No"})
	cond.child("conditionvar").child("varequal", attr{"respident", "response1"}).withText(correct)
	cond.child("setvar", attr{"action", "Set"}, attr{"varname", "SCORE"}).withText("100")
	return nil
}

func buildBoolean(item, presentation *element, answerTrue bool) {
	lid := presentation.child("response_lid", attr{"ident", "response1"}, attr{"rcardinality", "Single"})
	rc := lid.child("render_choice")
	for _, entry := range []struct{ ident, label string }{{"true", "True"}, {"false", "False"}} {
		label := rc.child("response_label", attr{"ident", entry.ident})
		label.child("material").append(htmlMattext("<p>" + entry.label + "</p>"))
	}
	correct := "false"
	if answerTrue {
		correct = "true"
	}
	rp := newResprocessing(item)
	cond := rp.child("respcondition", attr{"continue", "No"})
	cond.child("conditionvar").child("varequal", attr{"respident", "response1"}).withText(correct)
	cond.child("setvar", attr{"action", "Set"}, attr{"varname", "SCORE"}).withText("100")
}

func buildMultiSelect(item, presentation *element, choices []quiz.Choice) error {
	lid := presentation.child("response_lid", attr{"ident", "response1"}, attr{"rcardinality", "Multiple"})
	rc := lid.child("render_choice")
	var correct []string
	for i, c := range choices {
		ident := choiceIdent(i)
		label := rc.child("response_label", attr{"ident", ident})
		label.child("material").append(htmlMattext(markup.Prompt(c.Text)))
		if c.Correct {
			correct = append(correct, ident)
		}
	}
	if len(correct) == 0 {
		return quizerr.Generationf("assessment", "multi-select item reached generation with no correct choice")
	}
	shares := partialCredit(len(correct))
	rp := newResprocessing(item)
	for i, ident := range correct {
		cond := rp.child("respcondition", attr{"continue", "Yes"})
		cond.child("conditionvar").child("varequal", attr{"respident", "response1"}).withText(ident)
		cond.child("setvar", attr{"action", "Add"}, attr{"varname", "SCORE"}).withText(fmt.Sprintf("%.2f", shares[i]))
	}
	return nil
}

func buildFillBlank(item, presentation *element, fb *quiz.FillBlankItem, ids *detrand.Idents) {
	token := fb.BlankToken
	if token == "" {
		token = ids.BlankToken()
	}
	lid := presentation.child("response_lid", attr{"ident", "response_" + token})
	lid.child("material").child("mattext").withText("Question")
	rc := lid.child("render_choice")
	for i, variant := range fb.Accept {
		label := rc.child("response_label",
			attr{"scoring_algorithm", "TextContainsAnswer"},
			attr{"answer_type", "openEntry"},
			attr{"ident", fmt.Sprintf("%s-%d", token, i)})
		label.child("material").child("mattext", attr{"texttype", "text/plain"}).withText(variant)
	}
	rp := newResprocessing(item)
	for i := range fb.Accept {
		cond := rp.child("respcondition")
		cond.child("conditionvar").child("varequal", attr{"respident", "response_" + token}).
			withText(fmt.Sprintf("%s-%d", token, i))
		cond.child("setvar", attr{"action", "Add"}, attr{"varname", "SCORE"}).withText("100.00")
	}
}

// buildWrittenResponse emits the text-entry shell shared by essay and file
// submission items. Both are manually graded; no resprocessing follows.
func buildWrittenResponse(presentation *element) {
	rs := presentation.child("response_str", attr{"ident", "response1"}, attr{"rcardinality", "Single"})
	rs.child("render_fib").child("response_label", attr{"ident", "answer1"})
}

func buildMatching(item, presentation *element, pairs []quiz.Pair, ids *detrand.Idents) {
	// One ident per unique answer text, in first-appearance order. Canvas
	// repeats the full option list under every pair's response lid.
	answerIdent := make(map[string]string)
	var answerOrder []string
	for _, p := range pairs {
		if _, ok := answerIdent[p.Answer]; !ok {
			answerIdent[p.Answer] = ids.Assoc()
			answerOrder = append(answerOrder, p.Answer)
		}
	}

	lids := make([]string, len(pairs))
	for i, p := range pairs {
		lids[i] = ids.Assoc()
		lid := presentation.child("response_lid", attr{"ident", lids[i]})
		lid.child("material").append(htmlMattext(shortHTML(p.Prompt)))
		rc := lid.child("render_choice")
		for _, answer := range answerOrder {
			label := rc.child("response_label", attr{"ident", answerIdent[answer]})
			label.child("material").append(htmlMattext(shortHTML(answer)))
		}
	}

	shares := partialCredit(len(pairs))
	rp := newResprocessing(item)
	for i, p := range pairs {
		cond := rp.child("respcondition")
		cond.child("conditionvar").child("varequal", attr{"respident", lids[i]}).withText(answerIdent[p.Answer])
		cond.child("setvar", attr{"action", "Add"}, attr{"varname", "SCORE"}).withText(fmt.Sprintf("%.2f", shares[i]))
	}
}

func buildOrdering(item, presentation *element, seq *quiz.OrderedSequenceItem) {
	lid := presentation.child("response_lid", attr{"ident", "response1"}, attr{"rcardinality", "Ordered"})
	ext := lid.child("render_extension")
	if seq.Header != "" {
		top := ext.child("material", attr{"position", "top"})
		top.append(htmlMattext(shortHTML(seq.Header)))
	}
	flow := ext.child("ims_render_object", attr{"shuffle", "No"}).child("flow_label")
	for _, entry := range seq.Entries {
		label := flow.child("response_label", attr{"ident", entry.Ident})
		label.child("material").append(htmlMattext(shortHTML(entry.Text)))
	}
	ext.child("material", attr{"position", "bottom"}).child("mattext")

	rp := newResprocessing(item)
	cond := rp.child("respcondition", attr{"continue", "No"})
	cv := cond.child("conditionvar")
	for _, entry := range seq.Entries {
		cv.child("varequal", attr{"respident", "response1"}).withText(entry.Ident)
	}
	cond.child("setvar", attr{"action", "Set"}, attr{"varname", "SCORE"}).withText("100")
}

func buildCategorize(item, presentation *element, cat *quiz.CategorizeItem) {
	// The draggable pool is every member plus every distractor, deduplicated
	// by text; members sharing text share an ident.
	type poolEntry struct{ text, ident string }
	var pool []poolEntry
	seen := make(map[string]bool)
	for _, m := range cat.Members {
		if !seen[m.Text] {
			seen[m.Text] = true
			pool = append(pool, poolEntry{m.Text, m.Ident})
		}
	}
	for _, d := range cat.Distractors {
		if !seen[d.Text] {
			seen[d.Text] = true
			pool = append(pool, poolEntry{d.Text, d.Ident})
		}
	}

	for _, c := range cat.Categories {
		lid := presentation.child("response_lid", attr{"ident", c.Ident}, attr{"rcardinality", "Multiple"})
		lid.child("material").append(htmlMattext(shortHTML(c.Name)))
		rc := lid.child("render_choice")
		for _, p := range pool {
			label := rc.child("response_label", attr{"ident", p.ident})
			label.child("material").append(htmlMattext(shortHTML(p.text)))
		}
	}

	shares := partialCredit(len(cat.Categories))
	rp := newResprocessing(item)
	for i, c := range cat.Categories {
		cond := rp.child("respcondition")
		cv := cond.child("conditionvar")
		for _, m := range cat.Members {
			if m.Category == c.Name {
				cv.child("varequal", attr{"respident", c.Ident}).withText(m.Ident)
			}
		}
		cond.child("setvar", attr{"action", "Add"}, attr{"varname", "SCORE"}).withText(fmt.Sprintf("%.2f", shares[i]))
	}
}
