package markup

import (
	"math"
	"strings"
)

// PassageKind selects how enriched rendering treats a passage.
type PassageKind int

const (
	// KindAuto lets the classifier decide between verse and prose.
	KindAuto PassageKind = iota
	// KindProse renders numbered paragraphs.
	KindProse
	// KindVerse renders line-per-line with a line-number gutter.
	KindVerse
	// KindCode renders whitespace-verbatim preformatted text.
	KindCode
)

// ParseKind maps an authored pin ("prose", "verse", "code") to a kind.
// Unknown values fall back to auto.
func ParseKind(s string) PassageKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prose":
		return KindProse
	case "verse", "poetry":
		return KindVerse
	case "code":
		return KindCode
	default:
		return KindAuto
	}
}

// Classify scores a passage as verse or prose. Five weighted signals feed
// two accumulators; the passage is verse only when the verse share of the
// combined score exceeds threshold. Misreading prose as verse looks far
// worse than the reverse, so every ambiguous case lands on prose: short
// passages, ties, and scores at the threshold all classify as prose.
func Classify(text string, threshold float64) PassageKind {
	lines := strings.Split(text, "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	total := len(nonEmpty)
	if total < 3 {
		return KindProse
	}

	var verse, prose float64

	// Signal 1: mean line length. Verse lines run short.
	var lenSum float64
	for _, l := range nonEmpty {
		lenSum += float64(len(l))
	}
	meanLen := lenSum / float64(total)
	if meanLen < 60 {
		verse += 0.3
	} else {
		prose += 0.2
	}
	if total > 10 {
		prose += 0.2
	}

	// Signal 2: paragraph-break density.
	breaks := strings.Count(text, "\n\n")
	switch {
	case breaks >= 3:
		prose += 0.4
	case breaks == 0:
		verse += 0.2
	}

	// Signal 3: sentences per line. Verse spreads one sentence over
	// several lines.
	endings := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if float64(endings)/float64(total) < 0.5 {
		verse += 0.3
	} else {
		prose += 0.2
	}

	// Signal 4: line-length consistency. Metered verse keeps its lines
	// close to the mean.
	var variance float64
	for _, l := range nonEmpty {
		d := float64(len(l)) - meanLen
		variance += d * d
	}
	variance /= float64(total)
	consistency := math.Sqrt(variance) / math.Max(meanLen, 1)
	switch {
	case consistency < 0.3:
		verse += 0.4
	case consistency > 0.7:
		prose += 0.2
	}

	// Stanza gaps: runs of two or more blank lines.
	doubleBreaks := 0
	for i := 0; i+1 < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" && strings.TrimSpace(lines[i+1]) == "" {
			doubleBreaks++
		}
	}
	if doubleBreaks > 0 {
		verse += math.Min(float64(doubleBreaks)*0.2, 0.4)
	}

	// Signal 5: leading capitalization. Traditional verse capitalizes
	// every line.
	capped := 0
	for _, l := range nonEmpty {
		t := strings.TrimSpace(l)
		if t != "" && t[0] >= 'A' && t[0] <= 'Z' {
			capped++
		}
	}
	capRatio := float64(capped) / float64(total)
	switch {
	case capRatio > 0.8:
		verse += 0.2
	case capRatio < 0.3:
		prose += 0.1
	}

	if sum := verse + prose; sum > 0 && verse/sum > threshold {
		return KindVerse
	}
	return KindProse
}
