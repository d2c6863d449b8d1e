package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrIncompleteSubmission = errors.New("incomplete submission")
	ErrInvalidOptionValue   = errors.New("invalid option value")
	ErrUnknownSeverity      = errors.New("score matches no scoring range")

	ErrInvalidDefinition = errors.New("invalid test definition")
	ErrRangeOverlap      = errors.New("scoring ranges overlap")
	ErrRangeGap          = errors.New("gap between scoring ranges")
	ErrRangeCoverage     = errors.New("scoring ranges do not cover the score domain")
)

type ViolationKind string

const (
	ViolationMissing      ViolationKind = "missing"
	ViolationExtra        ViolationKind = "extra"
	ViolationInvalidValue ViolationKind = "invalid_value"
)

// Violation is a single problem found in a submission.
type Violation struct {
	QuestionID uint          `json:"questionId"`
	Kind       ViolationKind `json:"kind"`
	Value      *int          `json:"value,omitempty"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationMissing:
		return fmt.Sprintf("question %d: not answered", v.QuestionID)
	case ViolationExtra:
		return fmt.Sprintf("question %d: not part of this test", v.QuestionID)
	case ViolationInvalidValue:
		if v.Value != nil {
			return fmt.Sprintf("question %d: value %d is not a permitted option", v.QuestionID, *v.Value)
		}
		return fmt.Sprintf("question %d: value is not a permitted option", v.QuestionID)
	}
	return fmt.Sprintf("question %d: %s", v.QuestionID, v.Kind)
}

// ValidationError lists every violation found in a submission.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

// Is matches ErrIncompleteSubmission and ErrInvalidOptionValue depending on
// the kinds of violations present.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrIncompleteSubmission:
		return e.has(ViolationMissing) || e.has(ViolationExtra)
	case ErrInvalidOptionValue:
		return e.has(ViolationInvalidValue)
	}
	return false
}

func (e *ValidationError) has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// Missing returns the ids of unanswered questions.
func (e *ValidationError) Missing() []uint { return e.ids(ViolationMissing) }

// Extra returns the ids of answered questions that are not part of the test.
func (e *ValidationError) Extra() []uint { return e.ids(ViolationExtra) }

// Invalid returns the ids of questions answered with a value outside their options.
func (e *ValidationError) Invalid() []uint { return e.ids(ViolationInvalidValue) }

func (e *ValidationError) ids(kind ViolationKind) []uint {
	var ids []uint
	for _, v := range e.Violations {
		if v.Kind == kind {
			ids = append(ids, v.QuestionID)
		}
	}
	return ids
}

// DefinitionError is returned by Compile and wraps every defect found.
type DefinitionError struct {
	Name string
	Err  error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("definition %q: %v", e.Name, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// Is lets every DefinitionError match ErrInvalidDefinition.
func (e *DefinitionError) Is(target error) bool { return target == ErrInvalidDefinition }

// Problems flattens the joined defects into one message per line.
func (e *DefinitionError) Problems() []string {
	var out []string
	var walk func(err error)
	walk = func(err error) {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		out = append(out, err.Error())
	}
	walk(e.Err)
	return out
}

func sortViolations(vs []Violation, position map[uint]int) {
	rank := func(k ViolationKind) int {
		switch k {
		case ViolationMissing:
			return 0
		case ViolationExtra:
			return 1
		}
		return 2
	}
	sort.SliceStable(vs, func(i, j int) bool {
		ri, rj := rank(vs[i].Kind), rank(vs[j].Kind)
		if ri != rj {
			return ri < rj
		}
		if vs[i].Kind == ViolationInvalidValue {
			return position[vs[i].QuestionID] < position[vs[j].QuestionID]
		}
		return vs[i].QuestionID < vs[j].QuestionID
	})
}
