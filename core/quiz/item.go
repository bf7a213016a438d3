package quiz

import "github.com/longhornadam/QuizForge-sub000/core/tolerance"

// Kind identifies an item kind. The set is closed: every validation and
// generation branch switches over it exhaustively.
type Kind int

const (
	// SingleSelect is a choose-one item with 2-7 choices.
	SingleSelect Kind = iota
	// MultiSelect is a choose-all-that-apply item.
	MultiSelect
	// Boolean is a true/false item.
	Boolean
	// FillBlank is a typed-response item with a list of accepted answers.
	FillBlank
	// Essay is a free-form written response, manually graded.
	Essay
	// FileResponse is a file-submission item, manually graded.
	FileResponse
	// MatchPairs pairs left-side prompts with right-side answers.
	MatchPairs
	// OrderedSequence asks for entries arranged in a fixed order.
	OrderedSequence
	// Categorize sorts members into named categories.
	Categorize
	// NumericResponse is a typed numeric answer graded against bounds.
	NumericResponse
	// PassageBlock is a zero-point content container grouping the items
	// that follow it.
	PassageBlock
	// PassageEnd closes the current passage block. Never rendered.
	PassageEnd
)

var kindNames = map[Kind]string{
	SingleSelect:    "MC",
	MultiSelect:     "MA",
	Boolean:         "TF",
	FillBlank:       "FITB",
	Essay:           "ESSAY",
	FileResponse:    "FILEUPLOAD",
	MatchPairs:      "MATCHING",
	OrderedSequence: "ORDERING",
	Categorize:      "CATEGORIZATION",
	NumericResponse: "NUMERICAL",
	PassageBlock:    "STIMULUS",
	PassageEnd:      "STIMULUS_END",
}

// String returns the authoring-format tag for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Scorable reports whether the kind contributes points to the quiz total.
func (k Kind) Scorable() bool {
	return k != PassageBlock && k != PassageEnd
}

// Extended reports whether the kind is an extended-response kind that
// receives the heavy point multiplier during allocation.
func (k Kind) Extended() bool {
	return k == Essay || k == FileResponse
}

// Core holds the fields common to every item.
type Core struct {
	Prompt      string
	Points      float64
	PointsSet   bool   // true when the author set points explicitly
	PassageRef  string // ident of the enclosing passage block, if any
	ForcedIdent string // overrides generated idents (used for passage blocks)
	Line        int    // 1-based source line of the item's block, 0 if unknown
}

// Item is one quiz question or passage marker. Implementations are the
// twelve concrete kind structs in this package; the interface is sealed.
type Item interface {
	Kind() Kind
	Core() *Core
	// Clone returns a deep copy. Pipeline stages transform copies so each
	// stage's output is independently diffable.
	Clone() Item
}

// Choice is one option of a select-type item.
type Choice struct {
	Text    string
	Correct bool
}

// Pair is one prompt/answer pair of a match-pairs item.
type Pair struct {
	Prompt string
	Answer string
}

// SequenceEntry is one member of an ordered-sequence item. Ident is the
// association token binding the entry across artifacts.
type SequenceEntry struct {
	Text  string
	Ident string
}

// Category is one target of a categorize item.
type Category struct {
	Name  string
	Ident string
}

// Member binds a categorize item's member to its correct category by name.
type Member struct {
	Text     string
	Ident    string
	Category string
}

// Distractor is a categorize member that belongs to no category.
type Distractor struct {
	Text  string
	Ident string
}

// NumericAnswer is the grading specification of a numeric-response item.
// Bounds are always computed by the resolver, never authored.
type NumericAnswer struct {
	Target    tolerance.Dec
	HasTarget bool // false only for range mode, which needs no target
	Spec      tolerance.Spec
	Bounds    tolerance.Bounds
}

// SingleSelectItem is a choose-one item.
type SingleSelectItem struct {
	ItemCore Core
	Choices  []Choice
}

func (i *SingleSelectItem) Kind() Kind  { return SingleSelect }
func (i *SingleSelectItem) Core() *Core { return &i.ItemCore }
func (i *SingleSelectItem) Clone() Item {
	c := *i
	c.Choices = append([]Choice(nil), i.Choices...)
	return &c
}

// MultiSelectItem is a choose-all-that-apply item.
type MultiSelectItem struct {
	ItemCore Core
	Choices  []Choice
}

func (i *MultiSelectItem) Kind() Kind  { return MultiSelect }
func (i *MultiSelectItem) Core() *Core { return &i.ItemCore }
func (i *MultiSelectItem) Clone() Item {
	c := *i
	c.Choices = append([]Choice(nil), i.Choices...)
	return &c
}

// BooleanItem is a true/false item.
type BooleanItem struct {
	ItemCore   Core
	AnswerTrue bool
}

func (i *BooleanItem) Kind() Kind  { return Boolean }
func (i *BooleanItem) Core() *Core { return &i.ItemCore }
func (i *BooleanItem) Clone() Item {
	c := *i
	return &c
}

// FillBlankItem is a typed-response item. BlankToken is the placeholder
// ident substituted into the prompt where the blank sits.
type FillBlankItem struct {
	ItemCore   Core
	Accept     []string
	BlankToken string
}

func (i *FillBlankItem) Kind() Kind  { return FillBlank }
func (i *FillBlankItem) Core() *Core { return &i.ItemCore }
func (i *FillBlankItem) Clone() Item {
	c := *i
	c.Accept = append([]string(nil), i.Accept...)
	return &c
}

// EssayItem is a free-form written response.
type EssayItem struct {
	ItemCore Core
}

func (i *EssayItem) Kind() Kind  { return Essay }
func (i *EssayItem) Core() *Core { return &i.ItemCore }
func (i *EssayItem) Clone() Item {
	c := *i
	return &c
}

// FileResponseItem is a file-submission response.
type FileResponseItem struct {
	ItemCore Core
}

func (i *FileResponseItem) Kind() Kind  { return FileResponse }
func (i *FileResponseItem) Core() *Core { return &i.ItemCore }
func (i *FileResponseItem) Clone() Item {
	c := *i
	return &c
}

// MatchPairsItem pairs prompts with answers.
type MatchPairsItem struct {
	ItemCore Core
	Pairs    []Pair
}

func (i *MatchPairsItem) Kind() Kind  { return MatchPairs }
func (i *MatchPairsItem) Core() *Core { return &i.ItemCore }
func (i *MatchPairsItem) Clone() Item {
	c := *i
	c.Pairs = append([]Pair(nil), i.Pairs...)
	return &c
}

// OrderedSequenceItem asks for entries in a fixed order.
type OrderedSequenceItem struct {
	ItemCore Core
	Header   string
	Entries  []SequenceEntry
}

func (i *OrderedSequenceItem) Kind() Kind  { return OrderedSequence }
func (i *OrderedSequenceItem) Core() *Core { return &i.ItemCore }
func (i *OrderedSequenceItem) Clone() Item {
	c := *i
	c.Entries = append([]SequenceEntry(nil), i.Entries...)
	return &c
}

// CategorizeItem sorts members into categories, with optional distractors
// that belong nowhere.
type CategorizeItem struct {
	ItemCore    Core
	Categories  []Category
	Members     []Member
	Distractors []Distractor
}

func (i *CategorizeItem) Kind() Kind  { return Categorize }
func (i *CategorizeItem) Core() *Core { return &i.ItemCore }
func (i *CategorizeItem) Clone() Item {
	c := *i
	c.Categories = append([]Category(nil), i.Categories...)
	c.Members = append([]Member(nil), i.Members...)
	c.Distractors = append([]Distractor(nil), i.Distractors...)
	return &c
}

// NumericResponseItem is a typed numeric answer.
type NumericResponseItem struct {
	ItemCore Core
	Answer   NumericAnswer
}

func (i *NumericResponseItem) Kind() Kind  { return NumericResponse }
func (i *NumericResponseItem) Core() *Core { return &i.ItemCore }
func (i *NumericResponseItem) Clone() Item {
	c := *i
	return &c
}

// PassageBlockItem is a zero-point content container.
type PassageBlockItem struct {
	ItemCore Core
}

func (i *PassageBlockItem) Kind() Kind  { return PassageBlock }
func (i *PassageBlockItem) Core() *Core { return &i.ItemCore }
func (i *PassageBlockItem) Clone() Item {
	c := *i
	return &c
}

// PassageEndItem closes a passage block.
type PassageEndItem struct {
	ItemCore Core
}

func (i *PassageEndItem) Kind() Kind  { return PassageEnd }
func (i *PassageEndItem) Core() *Core { return &i.ItemCore }
func (i *PassageEndItem) Clone() Item {
	c := *i
	return &c
}
