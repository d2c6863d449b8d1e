package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoQuestionDraft(ranges ...ScoringRange) Draft {
	opts := []Option{{Text: "no", Value: 0, Position: 1}, {Text: "yes", Value: 2, Position: 2}}
	return Draft{
		ID:   7,
		Name: "short",
		Type: GAD7,
		Questions: []Question{
			{ID: 2, Text: "second", Position: 2, Options: opts},
			{ID: 1, Text: "first", Position: 1, Options: opts},
		},
		Ranges: ranges,
	}
}

func TestCompileOrdersQuestionsAndRanges(t *testing.T) {
	def, err := Compile(twoQuestionDraft(
		ScoringRange{Min: 3, Max: 4, Severity: SeveritySevere},
		ScoringRange{Min: 0, Max: 2, Severity: SeverityMinimal},
	))
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 2}, def.QuestionIDs())
	ranges := def.Ranges()
	require.Len(t, ranges, 2)
	assert.Equal(t, 0, ranges[0].Min)
	assert.Equal(t, 0, def.MinScore())
	assert.Equal(t, 4, def.MaxScore())
	assert.Equal(t, uint(7), def.ID())
	assert.Equal(t, GAD7, def.Type())
}

func TestCompileCopiesInput(t *testing.T) {
	d := twoQuestionDraft(ScoringRange{Min: 0, Max: 4, Severity: SeverityMild})
	def, err := Compile(d)
	require.NoError(t, err)

	d.Questions[0].Options[0].Value = 99
	d.Ranges[0].Max = 1
	assert.Equal(t, 4, def.Ranges()[0].Max)

	qs := def.Questions()
	qs[0].Options[0].Value = 42
	assert.NotEqual(t, 42, def.Questions()[0].Options[0].Value)
}

func TestCompileRangeDefects(t *testing.T) {
	tests := []struct {
		name    string
		ranges  []ScoringRange
		wantErr error
	}{
		{
			name: "overlap",
			ranges: []ScoringRange{
				{Min: 0, Max: 2, Severity: SeverityMinimal},
				{Min: 2, Max: 4, Severity: SeverityMild},
			},
			wantErr: ErrRangeOverlap,
		},
		{
			name: "gap",
			ranges: []ScoringRange{
				{Min: 0, Max: 1, Severity: SeverityMinimal},
				{Min: 3, Max: 4, Severity: SeverityMild},
			},
			wantErr: ErrRangeGap,
		},
		{
			name:    "does not reach maximum",
			ranges:  []ScoringRange{{Min: 0, Max: 3, Severity: SeverityMinimal}},
			wantErr: ErrRangeCoverage,
		},
		{
			name:    "does not reach minimum",
			ranges:  []ScoringRange{{Min: 1, Max: 4, Severity: SeverityMinimal}},
			wantErr: ErrRangeCoverage,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(twoQuestionDraft(tt.ranges...))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestCompileReportsAllProblems(t *testing.T) {
	d := Draft{
		Name: "",
		Type: "BDI",
		Questions: []Question{
			{ID: 1, Position: 1},
			{ID: 1, Position: 2, Options: []Option{{Value: 0, Position: 1}, {Value: 1, Position: 1}}},
		},
		Ranges: []ScoringRange{{Min: 5, Max: 0, Severity: SeverityUnknown}},
	}
	_, err := Compile(d)

	var derr *DefinitionError
	require.True(t, errors.As(err, &derr))
	problems := derr.Problems()
	assert.Contains(t, problems, "name is required")
	assert.Contains(t, problems, `unknown instrument type "BDI"`)
	assert.Contains(t, problems, "duplicate question id 1")
	assert.Contains(t, problems, "question 1 has no options")
	assert.Contains(t, problems, "question 1: duplicate option position 1")
	assert.Contains(t, problems, "range 5-0: min is greater than max")
	assert.Contains(t, problems, `range 5-0: invalid severity "UNKNOWN"`)
}

func TestCompileRequiresQuestionsAndRanges(t *testing.T) {
	_, err := Compile(Draft{Name: "empty", Type: PHQ9})
	var derr *DefinitionError
	require.True(t, errors.As(err, &derr))
	assert.ElementsMatch(t, []string{
		"at least one question is required",
		"at least one scoring range is required",
	}, derr.Problems())
}

func TestClassifyBoundaries(t *testing.T) {
	def := MustCompile(twoQuestionDraft(
		ScoringRange{Min: 0, Max: 1, Severity: SeverityMinimal},
		ScoringRange{Min: 2, Max: 2, Severity: SeverityMild},
		ScoringRange{Min: 3, Max: 4, Severity: SeveritySevere},
	))

	cases := map[int]Severity{0: SeverityMinimal, 1: SeverityMinimal, 2: SeverityMild, 3: SeveritySevere, 4: SeveritySevere}
	for total, want := range cases {
		r, ok := def.Classify(total)
		require.True(t, ok, "total %d", total)
		assert.Equal(t, want, r.Severity, "total %d", total)
	}
	_, ok := def.Classify(-1)
	assert.False(t, ok)
	_, ok = def.Classify(5)
	assert.False(t, ok)
}

func TestMustCompilePanics(t *testing.T) {
	assert.Panics(t, func() { MustCompile(Draft{}) })
}

func TestDraftRoundTrip(t *testing.T) {
	def := MustCompile(twoQuestionDraft(ScoringRange{Min: 0, Max: 4, Severity: SeverityMild}))
	again, err := Compile(def.Draft())
	require.NoError(t, err)
	assert.Equal(t, def.QuestionIDs(), again.QuestionIDs())
	assert.Equal(t, def.Ranges(), again.Ranges())
}

func TestCompileRejectsDuplicateQuestionPositions(t *testing.T) {
	d := twoQuestionDraft(ScoringRange{Min: 0, Max: 4, Severity: SeverityMild})
	d.Questions[0].Position = 1

	_, err := Compile(d)
	var derr *DefinitionError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Problems(), "questions 2 and 1 share position 1")
}
