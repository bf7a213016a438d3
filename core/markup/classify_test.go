package markup

import "testing"

const classifyThreshold = 0.6

func TestClassifyVerse(t *testing.T) {
	// Short, consistent, capitalized lines with no sentence endings.
	text := "The rose is red\nThe violet blue\nSugar is sweet\nAnd so are you"
	if got := Classify(text, classifyThreshold); got != KindVerse {
		t.Errorf("Classify(verse sample) = %v, want KindVerse", got)
	}
}

func TestClassifyProse(t *testing.T) {
	text := "It was a bright cold day in April, and the clocks were striking thirteen everywhere.\n\n" +
		"Winston Smith, his chin nuzzled into his breast in an effort to escape the vile wind, slipped quickly through the glass doors.\n\n" +
		"The hallway smelt of boiled cabbage and old rag mats, which did not help matters much at all.\n\n" +
		"It was no use trying the lift even at the best of times, for the current was cut off during daylight hours."
	if got := Classify(text, classifyThreshold); got != KindProse {
		t.Errorf("Classify(prose sample) = %v, want KindProse", got)
	}
}

func TestClassifyShortInputIsProse(t *testing.T) {
	// Fewer than three non-empty lines never classifies as verse.
	for _, text := range []string{"", "one line", "one\ntwo"} {
		if got := Classify(text, classifyThreshold); got != KindProse {
			t.Errorf("Classify(%q) = %v, want KindProse", text, got)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want PassageKind
	}{
		{"prose", KindProse},
		{"verse", KindVerse},
		{"poetry", KindVerse},
		{"code", KindCode},
		{"CODE", KindCode},
		{"  verse  ", KindVerse},
		{"auto", KindAuto},
		{"nonsense", KindAuto},
		{"", KindAuto},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
