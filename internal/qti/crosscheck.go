package qti

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/longhornadam/QuizForge-sub000/core/markup"
	"github.com/longhornadam/QuizForge-sub000/core/quiz"
	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
)

// Crosscheck re-parses the generated artifacts and verifies every
// cross-reference and every student-visible string against the model. The
// quiz already passed validation before generation, so any finding here is
// a defect in the generators and surfaces as a GenerationError; no package
// containing a mismatch may ship.
func Crosscheck(q *quiz.Quiz, arts *Artifacts, f markup.Formatter) error {
	manifest, err := xmlquery.Parse(strings.NewReader(arts.Manifest))
	if err != nil {
		return quizerr.Generationf("crosscheck", "manifest does not parse: %v", err)
	}
	assessment, err := xmlquery.Parse(strings.NewReader(arts.Assessment))
	if err != nil {
		return quizerr.Generationf("crosscheck", "assessment does not parse: %v", err)
	}
	meta, err := xmlquery.Parse(strings.NewReader(arts.Meta))
	if err != nil {
		return quizerr.Generationf("crosscheck", "metadata does not parse: %v", err)
	}

	if err := checkManifest(manifest, arts.Token); err != nil {
		return err
	}
	if err := checkMeta(meta, q, arts.Token); err != nil {
		return err
	}
	return checkAssessment(assessment, q, f)
}

func checkManifest(doc *xmlquery.Node, token string) error {
	res := xmlquery.FindOne(doc, "//resource[@type='imsqti_xmlv1p2']")
	if res == nil {
		return quizerr.Generationf("crosscheck", "manifest has no assessment resource")
	}
	if got := res.SelectAttr("identifier"); got != token {
		return quizerr.Generationf("crosscheck", "assessment resource identifier %q does not match package token %q", got, token)
	}
	wantHref := token + "/" + token + ".xml"
	file := xmlquery.FindOne(res, "file")
	if file == nil || file.SelectAttr("href") != wantHref {
		return quizerr.Generationf("crosscheck", "assessment resource does not reference %s", wantHref)
	}

	dep := xmlquery.FindOne(res, "dependency")
	if dep == nil {
		return quizerr.Generationf("crosscheck", "assessment resource has no metadata dependency")
	}
	depRef := dep.SelectAttr("identifierref")
	metaRes := xmlquery.FindOne(doc, fmt.Sprintf("//resource[@identifier='%s']", depRef))
	if metaRes == nil {
		return quizerr.Generationf("crosscheck", "metadata dependency %q resolves to no resource", depRef)
	}
	wantMetaHref := token + "/assessment_meta.xml"
	if got := metaRes.SelectAttr("href"); got != wantMetaHref {
		return quizerr.Generationf("crosscheck", "metadata resource href %q does not match %q", got, wantMetaHref)
	}
	return nil
}

func checkMeta(doc *xmlquery.Node, q *quiz.Quiz, token string) error {
	root := xmlquery.FindOne(doc, "//quiz")
	if root == nil {
		return quizerr.Generationf("crosscheck", "metadata document has no quiz element")
	}
	if got := root.SelectAttr("identifier"); got != token {
		return quizerr.Generationf("crosscheck", "metadata identifier %q does not match package token %q", got, token)
	}
	if title := xmlquery.FindOne(root, "title"); title == nil || title.InnerText() != q.Title {
		return quizerr.Generationf("crosscheck", "metadata title drifted from quiz title %q", q.Title)
	}
	wantPoints := fmt.Sprintf("%.1f", q.PointSum())
	if pts := xmlquery.FindOne(root, "points_possible"); pts == nil || pts.InnerText() != wantPoints {
		return quizerr.Generationf("crosscheck", "metadata points_possible does not match item sum %s", wantPoints)
	}
	return nil
}

func checkAssessment(doc *xmlquery.Node, q *quiz.Quiz, f markup.Formatter) error {
	var model []quiz.Item
	for _, it := range q.Items {
		if it.Kind() != quiz.PassageEnd {
			model = append(model, it)
		}
	}
	items := xmlquery.Find(doc, "//item")
	if len(items) != len(model) {
		return quizerr.Generationf("crosscheck", "assessment has %d items, model has %d", len(items), len(model))
	}

	stimulusIdents := make(map[string]bool)
	for i, node := range items {
		it := model[i]
		pos := i + 1

		wantType := questionTypes[it.Kind()]
		if it.Kind() == quiz.PassageBlock {
			wantType = "text_only_question"
		}
		if got := metadataEntry(node, "question_type"); got != wantType {
			return quizerr.Generationf("crosscheck", "item %d question_type %q, want %q", pos, got, wantType)
		}
		if it.Kind() == quiz.PassageBlock {
			stimulusIdents[node.SelectAttr("ident")] = true
		}

		parent := metadataEntry(node, "parent_stimulus_item_ident")
		if parent != it.Core().PassageRef {
			return quizerr.Generationf("crosscheck", "item %d passage reference %q drifted from model %q", pos, parent, it.Core().PassageRef)
		}
		if parent != "" && !stimulusIdents[parent] {
			return quizerr.Generationf("crosscheck", "item %d references unknown passage block %q", pos, parent)
		}

		want, err := expectedText(it, f)
		if err != nil {
			return err
		}
		got := extractText(node, it.Kind())
		if len(want) != len(got) {
			return quizerr.Generationf("crosscheck", "item %d exposes %d visible fields, model has %d", pos, len(got), len(want))
		}
		for j := range want {
			if want[j] != got[j] {
				return quizerr.Generationf("crosscheck", "item %d field %d mutated: %q became %q", pos, j+1, want[j], got[j])
			}
		}
	}
	return nil
}

// Per-item queries run once per question; precompiled expressions keep the
// check linear in package size.
var (
	promptQuery   = xpath.MustCompile("presentation/material/mattext")
	choiceQuery   = xpath.MustCompile("presentation/response_lid/render_choice/response_label/material/mattext")
	lidQuery      = xpath.MustCompile("presentation/response_lid")
	lidLabelQuery = xpath.MustCompile("material/mattext")
	lidPoolQuery  = xpath.MustCompile("render_choice/response_label/material/mattext")
	headerQuery   = xpath.MustCompile("presentation/response_lid/render_extension/material[@position='top']/mattext")
	entryQuery    = xpath.MustCompile("presentation/response_lid/render_extension/ims_render_object/flow_label/response_label/material/mattext")
)

// metadataEntry reads one qtimetadata field entry from an item; empty when
// the field is absent.
func metadataEntry(item *xmlquery.Node, label string) string {
	entry := xmlquery.FindOne(item,
		fmt.Sprintf("itemmetadata/qtimetadata/qtimetadatafield[fieldlabel='%s']/fieldentry", label))
	if entry == nil {
		return ""
	}
	return entry.InnerText()
}

// mattextVisible returns the student-visible text of a mattext node.
func mattextVisible(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	text := n.InnerText()
	if n.SelectAttr("texttype") == "text/html" {
		return markup.VisibleText(text)
	}
	return text
}

// expectedText lists every student-visible string of an item in render
// order, computed from the model through the same markup calls the
// generator uses.
func expectedText(it quiz.Item, f markup.Formatter) ([]string, error) {
	html, err := promptHTML(it, f)
	if err != nil {
		return nil, err
	}
	out := []string{markup.VisibleText(html)}

	switch v := it.(type) {
	case *quiz.SingleSelectItem:
		for _, c := range v.Choices {
			out = append(out, markup.VisibleText(markup.Prompt(c.Text)))
		}
	case *quiz.MultiSelectItem:
		for _, c := range v.Choices {
			out = append(out, markup.VisibleText(markup.Prompt(c.Text)))
		}
	case *quiz.BooleanItem:
		out = append(out, "True", "False")
	case *quiz.MatchPairsItem:
		var answers []string
		seen := make(map[string]bool)
		for _, p := range v.Pairs {
			if !seen[p.Answer] {
				seen[p.Answer] = true
				answers = append(answers, markup.VisibleText(shortHTML(p.Answer)))
			}
		}
		for _, p := range v.Pairs {
			out = append(out, markup.VisibleText(shortHTML(p.Prompt)))
			out = append(out, answers...)
		}
	case *quiz.OrderedSequenceItem:
		if v.Header != "" {
			out = append(out, markup.VisibleText(shortHTML(v.Header)))
		}
		for _, entry := range v.Entries {
			out = append(out, markup.VisibleText(shortHTML(entry.Text)))
		}
	case *quiz.CategorizeItem:
		var pool []string
		seen := make(map[string]bool)
		for _, m := range v.Members {
			if !seen[m.Text] {
				seen[m.Text] = true
				pool = append(pool, markup.VisibleText(shortHTML(m.Text)))
			}
		}
		for _, d := range v.Distractors {
			if !seen[d.Text] {
				seen[d.Text] = true
				pool = append(pool, markup.VisibleText(shortHTML(d.Text)))
			}
		}
		for _, c := range v.Categories {
			out = append(out, markup.VisibleText(shortHTML(c.Name)))
			out = append(out, pool...)
		}
	}
	return out, nil
}

// extractText pulls the same visible strings back out of a generated item
// element, mirroring expectedText field for field.
func extractText(item *xmlquery.Node, kind quiz.Kind) []string {
	out := []string{mattextVisible(xmlquery.QuerySelector(item, promptQuery))}

	switch kind {
	case quiz.SingleSelect, quiz.MultiSelect, quiz.Boolean:
		for _, mt := range xmlquery.QuerySelectorAll(item, choiceQuery) {
			out = append(out, mattextVisible(mt))
		}
	case quiz.MatchPairs, quiz.Categorize:
		for _, lid := range xmlquery.QuerySelectorAll(item, lidQuery) {
			out = append(out, mattextVisible(xmlquery.QuerySelector(lid, lidLabelQuery)))
			for _, mt := range xmlquery.QuerySelectorAll(lid, lidPoolQuery) {
				out = append(out, mattextVisible(mt))
			}
		}
	case quiz.OrderedSequence:
		if top := xmlquery.QuerySelector(item, headerQuery); top != nil {
			out = append(out, mattextVisible(top))
		}
		for _, mt := range xmlquery.QuerySelectorAll(item, entryQuery) {
			out = append(out, mattextVisible(mt))
		}
	}
	return out
}
