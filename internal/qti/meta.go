package qti

import "fmt"

const canvasNamespace = "http://canvas.instructure.com/xsd/cccv1p0"

// BuildMeta renders assessment_meta.xml, the Canvas quiz settings
// document. Settings are fixed policy: no shuffling of questions (item
// order is authored meaning), shuffled answers, one attempt, no
// calculator.
func BuildMeta(title string, points float64, guid string) string {
	root := newElement("quiz",
		attr{"xmlns", canvasNamespace},
		attr{"xmlns:xsi", xsiNamespace},
		attr{"xsi:schemaLocation", canvasNamespace + " https://canvas.instructure.com/xsd/cccv1p0.xsd"},
		attr{"identifier", guid},
	)
	root.child("title").withText(title)
	root.child("description")
	root.child("shuffle_questions").withText("false")
	root.child("shuffle_answers").withText("true")
	root.child("calculator_type").withText("none")
	root.child("scoring_policy").withText("keep_highest")
	root.child("allowed_attempts").withText("1")
	root.child("points_possible").withText(fmt.Sprintf("%.1f", points))
	return serialize(root)
}
