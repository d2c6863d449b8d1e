package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Compile checks a draft and freezes it into a Definition.
//
// Ranges are sorted by Min and must partition [MinScore, MaxScore] with no
// gaps or overlaps, so a compiled definition never classifies a validated
// submission as SeverityUnknown. All defects are reported together.
func Compile(d Draft) (*Definition, error) {
	var errs []error

	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !d.Type.Valid() {
		errs = append(errs, fmt.Errorf("unknown instrument type %q", d.Type))
	}

	questions, qerrs := compileQuestions(d.Questions)
	errs = append(errs, qerrs...)

	def := &Definition{
		id:        d.ID,
		name:      d.Name,
		typ:       d.Type,
		questions: questions,
		index:     make(map[uint]int, len(questions)),
	}
	for i, q := range questions {
		def.index[q.ID] = i
		lo, hi := q.valueBounds()
		def.minScore += lo
		def.maxScore += hi
	}

	ranges := append([]ScoringRange(nil), d.Ranges...)
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].Min < ranges[j].Min })
	def.ranges = ranges
	errs = append(errs, checkRanges(ranges, def.minScore, def.maxScore, len(qerrs) == 0 && len(questions) > 0)...)

	if len(errs) > 0 {
		return nil, &DefinitionError{Name: d.Name, Err: errors.Join(errs...)}
	}
	return def, nil
}

// MustCompile is like Compile but panics on error. Intended for built-in
// catalogs and tests.
func MustCompile(d Draft) *Definition {
	def, err := Compile(d)
	if err != nil {
		panic(err)
	}
	return def
}

func compileQuestions(in []Question) ([]Question, []error) {
	var errs []error
	if len(in) == 0 {
		return nil, []error{errors.New("at least one question is required")}
	}

	out := make([]Question, len(in))
	seen := make(map[uint]bool, len(in))
	for i, q := range in {
		if seen[q.ID] {
			errs = append(errs, fmt.Errorf("duplicate question id %d", q.ID))
		}
		seen[q.ID] = true

		if len(q.Options) == 0 {
			errs = append(errs, fmt.Errorf("question %d has no options", q.ID))
		}
		opts := append([]Option(nil), q.Options...)
		sort.SliceStable(opts, func(a, b int) bool { return opts[a].Position < opts[b].Position })
		for j := 1; j < len(opts); j++ {
			if opts[j].Position == opts[j-1].Position {
				errs = append(errs, fmt.Errorf("question %d: duplicate option position %d", q.ID, opts[j].Position))
			}
		}
		q.Options = opts
		out[i] = q
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Position < out[b].Position })
	for i := 1; i < len(out); i++ {
		if out[i].Position == out[i-1].Position {
			errs = append(errs, fmt.Errorf("questions %d and %d share position %d", out[i-1].ID, out[i].ID, out[i].Position))
		}
	}
	return out, errs
}

func checkRanges(ranges []ScoringRange, lo, hi int, checkCoverage bool) []error {
	if len(ranges) == 0 {
		return []error{errors.New("at least one scoring range is required")}
	}

	var errs []error
	shapeOK := true
	for _, r := range ranges {
		if r.Min > r.Max {
			errs = append(errs, fmt.Errorf("range %d-%d: min is greater than max", r.Min, r.Max))
			shapeOK = false
		}
		if !r.Severity.Valid() {
			errs = append(errs, fmt.Errorf("range %d-%d: invalid severity %q", r.Min, r.Max, r.Severity))
		}
	}
	if !shapeOK {
		return errs
	}

	for i := 1; i < len(ranges); i++ {
		prev, cur := ranges[i-1], ranges[i]
		switch {
		case cur.Min <= prev.Max:
			errs = append(errs, fmt.Errorf("%w: %d-%d and %d-%d", ErrRangeOverlap, prev.Min, prev.Max, cur.Min, cur.Max))
		case cur.Min > prev.Max+1:
			errs = append(errs, fmt.Errorf("%w: no range covers %d-%d", ErrRangeGap, prev.Max+1, cur.Min-1))
		}
	}

	if checkCoverage {
		first, last := ranges[0], ranges[len(ranges)-1]
		if first.Min > lo {
			errs = append(errs, fmt.Errorf("%w: lowest possible score %d is below %d", ErrRangeCoverage, lo, first.Min))
		}
		if last.Max < hi {
			errs = append(errs, fmt.Errorf("%w: highest possible score %d is above %d", ErrRangeCoverage, hi, last.Max))
		}
	}
	return errs
}
