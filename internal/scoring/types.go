// Package scoring validates screening questionnaire submissions and resolves
// their total score to a severity band.
//
// Definitions are compiled once into immutable values; Validate and Score are
// pure functions over a compiled Definition and are safe for concurrent use.
package scoring

import "sort"

// InstrumentType identifies a screening instrument.
type InstrumentType string

const (
	PHQ9 InstrumentType = "PHQ9"
	GAD7 InstrumentType = "GAD7"
	PCL5 InstrumentType = "PCL5"
)

// Valid reports whether t is a known instrument.
func (t InstrumentType) Valid() bool {
	switch t {
	case PHQ9, GAD7, PCL5:
		return true
	}
	return false
}

// Label is the human readable instrument name.
func (t InstrumentType) Label() string {
	switch t {
	case PHQ9:
		return "Depression Screening (PHQ-9)"
	case GAD7:
		return "Anxiety Screening (GAD-7)"
	case PCL5:
		return "PTSD Screening (PCL-5)"
	}
	return string(t)
}

// Severity is the categorical classification of a total score.
type Severity string

const (
	SeverityMinimal  Severity = "MINIMAL"
	SeverityMild     Severity = "MILD"
	SeverityModerate Severity = "MODERATE"
	SeveritySevere   Severity = "SEVERE"

	// SeverityUnknown is returned when a score lands in no authored range.
	// It can never be authored on a ScoringRange.
	SeverityUnknown Severity = "UNKNOWN"
)

// Valid reports whether s may be authored on a range.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinimal, SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

// Severities lists the authorable severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityMinimal, SeverityMild, SeverityModerate, SeveritySevere}
}

type Option struct {
	Text     string `json:"text" yaml:"text"`
	Value    int    `json:"value" yaml:"value"`
	Position int    `json:"position" yaml:"position"`
}

type Question struct {
	ID       uint     `json:"id" yaml:"id"`
	Text     string   `json:"text" yaml:"text"`
	Position int      `json:"position" yaml:"position"`
	Options  []Option `json:"options" yaml:"options"`
}

// permits reports whether v is the value of one of q's options.
func (q Question) permits(v int) bool {
	for _, o := range q.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

func (q Question) valueBounds() (lo, hi int) {
	for i, o := range q.Options {
		if i == 0 || o.Value < lo {
			lo = o.Value
		}
		if i == 0 || o.Value > hi {
			hi = o.Value
		}
	}
	return lo, hi
}

// ScoringRange is an inclusive interval [Min, Max] mapped to a severity.
type ScoringRange struct {
	Min         int      `json:"min" yaml:"min"`
	Max         int      `json:"max" yaml:"max"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Description string   `json:"description" yaml:"description"`
}

// Contains reports whether score falls inside r, bounds included.
func (r ScoringRange) Contains(score int) bool {
	return r.Min <= score && score <= r.Max
}

// Draft is the mutable authoring shape of a definition. It is turned into a
// Definition by Compile.
type Draft struct {
	ID        uint           `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Type      InstrumentType `json:"type" yaml:"type"`
	Questions []Question     `json:"questions" yaml:"questions"`
	Ranges    []ScoringRange `json:"ranges" yaml:"ranges"`
}

// Definition is a compiled, immutable test definition. Questions and options
// are ordered by position, ranges by Min.
type Definition struct {
	id        uint
	name      string
	typ       InstrumentType
	questions []Question
	index     map[uint]int
	ranges    []ScoringRange
	minScore  int
	maxScore  int
}

func (d *Definition) ID() uint             { return d.id }
func (d *Definition) Name() string         { return d.name }
func (d *Definition) Type() InstrumentType { return d.typ }

// MinScore and MaxScore are the lowest and highest totals a valid submission
// can reach.
func (d *Definition) MinScore() int { return d.minScore }
func (d *Definition) MaxScore() int { return d.maxScore }

// Questions returns a copy of the ordered questions.
func (d *Definition) Questions() []Question {
	out := make([]Question, len(d.questions))
	for i, q := range d.questions {
		q.Options = append([]Option(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Ranges returns a copy of the ranges ordered by Min.
func (d *Definition) Ranges() []ScoringRange {
	return append([]ScoringRange(nil), d.ranges...)
}

// QuestionIDs returns the question ids in presentation order.
func (d *Definition) QuestionIDs() []uint {
	ids := make([]uint, len(d.questions))
	for i, q := range d.questions {
		ids[i] = q.ID
	}
	return ids
}

// Draft converts d back into its authoring shape, e.g. for caching.
func (d *Definition) Draft() Draft {
	return Draft{
		ID:        d.id,
		Name:      d.name,
		Type:      d.typ,
		Questions: d.Questions(),
		Ranges:    d.Ranges(),
	}
}

func (d *Definition) question(id uint) (Question, bool) {
	i, ok := d.index[id]
	if !ok {
		return Question{}, false
	}
	return d.questions[i], true
}

// Classify finds the range containing total.
func (d *Definition) Classify(total int) (ScoringRange, bool) {
	i := sort.Search(len(d.ranges), func(i int) bool { return d.ranges[i].Max >= total })
	if i < len(d.ranges) && d.ranges[i].Contains(total) {
		return d.ranges[i], true
	}
	return ScoringRange{}, false
}

// Answers maps question id to the chosen option value.
type Answers map[uint]int

// Result is the outcome of scoring one submission.
type Result struct {
	TotalScore  int      `json:"totalScore"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}

// Known is false when the score matched no range.
func (r Result) Known() bool { return r.Severity != SeverityUnknown }

// Err returns ErrUnknownSeverity for unclassified results.
func (r Result) Err() error {
	if !r.Known() {
		return ErrUnknownSeverity
	}
	return nil
}
