package detrand

import "fmt"

// Idents owns every identifier a package emits. All artifact generators go
// through one Idents value, so the container folder, the manifest resource
// ids, the metadata identifier and every item ident agree by construction
// rather than by convention.
type Idents struct {
	// GUID names the container folder, the assessment resource, and the
	// metadata document.
	GUID string
	// ManifestID identifies the manifest element itself.
	ManifestID string
	// MetaResourceID identifies the metadata resource entry.
	MetaResourceID string
	// Assessment is the questestinterop assessment ident.
	Assessment string

	src *Source
}

// NewIdents derives the package-level identifiers from the source.
func NewIdents(src *Source) *Idents {
	return &Idents{
		GUID:           src.UUID().String(),
		ManifestID:     src.UUID().String(),
		MetaResourceID: src.UUID().String(),
		Assessment:     "assessment_" + src.Hex(8),
		src:            src,
	}
}

// Item returns the ident for the item at the given 1-based position.
func (d *Idents) Item(position int) string {
	return fmt.Sprintf("item_q%02d_%s", position, d.src.Hex(8))
}

// Stimulus returns a passage-block ident.
func (d *Idents) Stimulus() string {
	return "stim_" + d.src.Hex(8)
}

// BlankToken returns the placeholder token for a fill-in-blank item.
func (d *Idents) BlankToken() string {
	return d.src.Hex(32)
}

// Assoc returns an association ident for matching response lids and labels.
func (d *Idents) Assoc() string {
	return d.src.UUID().String()
}

// SequenceEntry returns an ident for one ordered-sequence entry.
func (d *Idents) SequenceEntry() string {
	return d.src.Hex(8)
}
