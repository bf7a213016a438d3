// Package markup renders authored free text into the HTML fragments the
// artifact generators embed. The contract is visible-text preservation:
// stripping the produced markup yields the input back. Literal mode
// enforces that byte for byte; enriched mode adds numbering and structure
// on top of classified content.
package markup

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/longhornadam/QuizForge-sub000/core/quizerr"
)

// Mode selects between the two formatting contracts.
type Mode int

const (
	// Literal is an identity transform on visible text. Any mutation is an
	// internal defect, never a silent change.
	Literal Mode = iota
	// Enriched classifies the passage and adds structural numbering.
	Enriched
)

// Formatter renders passage content. The zero value is a literal formatter.
type Formatter struct {
	Mode Mode
	// Kind pins the passage kind for enriched mode; KindAuto classifies.
	Kind PassageKind
	// VerseThreshold is the classifier's verse-share cutoff.
	VerseThreshold float64
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var unescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#160;", " ",
	"&nbsp;", " ",
	"&amp;", "&",
)

func escape(s string) string { return escaper.Replace(s) }

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	brPattern     = regexp.MustCompile(`<br\s*/?>`)
	fencePattern  = regexp.MustCompile("(?s)```(\\w*)[ \t]*\n?(.*?)```")
	inlinePattern = regexp.MustCompile("`([^`\n]+)`")
)

// VisibleText strips markup produced by this package and returns the
// visible content. Line breaks encoded as <br/> come back as newlines;
// all other tags vanish; entities are unescaped last so authored angle
// brackets survive.
func VisibleText(html string) string {
	s := brPattern.ReplaceAllString(html, "\n")
	s = tagPattern.ReplaceAllString(s, "")
	return unescaper.Replace(s)
}

// Passage renders passage content under the formatter's mode.
func (f Formatter) Passage(text string) (string, error) {
	if f.Mode == Literal {
		out := `<div style="white-space: pre-wrap;">` + escape(text) + `</div>`
		if got := VisibleText(out); got != text {
			return "", quizerr.Generationf("formatter", "literal round-trip mismatch: %q became %q", text, got)
		}
		return out, nil
	}

	kind := f.Kind
	if kind == KindAuto {
		kind = Classify(text, f.VerseThreshold)
	}
	switch kind {
	case KindCode:
		return "<pre><code>" + escape(text) + "</code></pre>", nil
	case KindVerse:
		return renderVerse(text), nil
	default:
		return renderProse(text), nil
	}
}

// renderVerse emits one <div> per line with a gutter number on the first
// and every fifth non-empty line, right-aligned to width 2.
func renderVerse(text string) string {
	var b strings.Builder
	b.WriteString(`<div class="verse">`)
	nonEmpty := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("<div>&#160;</div>")
			continue
		}
		nonEmpty++
		b.WriteString("<div>")
		if nonEmpty == 1 || nonEmpty%5 == 0 {
			fmt.Fprintf(&b, `<span class="line-num">%2d</span> `, nonEmpty)
		}
		b.WriteString(escape(line))
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}

// renderProse numbers blank-line-separated paragraphs sequentially.
func renderProse(text string) string {
	var b strings.Builder
	b.WriteString(`<div class="prose">`)
	n := 0
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		n++
		body := strings.ReplaceAll(escape(para), "\n", "<br/>")
		fmt.Fprintf(&b, `<p><span class="para-num">[%d]</span> %s</p>`, n, body)
	}
	b.WriteString("</div>")
	return b.String()
}

// Prompt renders question-prompt text. Fenced code blocks and inline
// backticks become code markup; the remainder splits into paragraphs.
func Prompt(text string) string {
	if strings.TrimSpace(text) == "" {
		return "<p></p>"
	}
	segments := splitFences(text)
	var b strings.Builder
	for _, seg := range segments {
		if seg.code {
			b.WriteString("<pre><code>" + escape(strings.Trim(seg.text, "\n")) + "</code></pre>")
			continue
		}
		for _, para := range strings.Split(seg.text, "\n\n") {
			if strings.TrimSpace(para) == "" {
				continue
			}
			body := strings.ReplaceAll(inlineCode(para), "\n", "<br/>")
			b.WriteString("<p>" + body + "</p>")
		}
	}
	if b.Len() == 0 {
		return "<p></p>"
	}
	return b.String()
}

// Inline renders short text (choices, matching terms, sequence entries):
// inline backticks become <code>, everything else is escaped, no block
// wrapper.
func Inline(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil && strings.TrimSpace(fencePattern.ReplaceAllString(text, "")) == "" {
		// The whole value is one fenced block.
		return "<pre><code>" + escape(strings.Trim(m[2], "\n")) + "</code></pre>"
	}
	return inlineCode(text)
}

type segment struct {
	text string
	code bool
}

func splitFences(text string) []segment {
	var segs []segment
	rest := text
	for {
		loc := fencePattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if pre := rest[:loc[0]]; strings.TrimSpace(pre) != "" {
			segs = append(segs, segment{text: pre})
		}
		segs = append(segs, segment{text: rest[loc[4]:loc[5]], code: true})
		rest = rest[loc[1]:]
	}
	if strings.TrimSpace(rest) != "" || len(segs) == 0 {
		segs = append(segs, segment{text: rest})
	}
	return segs
}

// inlineCode escapes text while converting backtick spans to <code>.
func inlineCode(text string) string {
	var b strings.Builder
	rest := text
	for {
		loc := inlinePattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(escape(rest))
			break
		}
		b.WriteString(escape(rest[:loc[0]]))
		b.WriteString("<code>" + escape(rest[loc[2]:loc[3]]) + "</code>")
		rest = rest[loc[1]:]
	}
	return b.String()
}
