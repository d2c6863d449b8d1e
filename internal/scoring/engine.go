package scoring

// Validate checks that answers cover exactly the questions of def and that
// every value is one of the question's option values. It returns nil or a
// *ValidationError listing every violation.
func Validate(answers Answers, def *Definition) error {
	var vs []Violation
	position := make(map[uint]int, len(def.questions))

	for i, q := range def.questions {
		position[q.ID] = i
		v, ok := answers[q.ID]
		if !ok {
			vs = append(vs, Violation{QuestionID: q.ID, Kind: ViolationMissing})
			continue
		}
		if !q.permits(v) {
			value := v
			vs = append(vs, Violation{QuestionID: q.ID, Kind: ViolationInvalidValue, Value: &value})
		}
	}
	for id := range answers {
		if _, ok := def.index[id]; !ok {
			vs = append(vs, Violation{QuestionID: id, Kind: ViolationExtra})
		}
	}

	if len(vs) == 0 {
		return nil
	}
	sortViolations(vs, position)
	return &ValidationError{Violations: vs}
}

// Score sums the answer values and resolves the total to a severity.
//
// Score trusts its caller to have run Validate: answers for unknown questions
// are ignored and unanswered questions contribute nothing. A total outside
// every range yields SeverityUnknown.
func Score(answers Answers, def *Definition) Result {
	total := 0
	for _, q := range def.questions {
		total += answers[q.ID]
	}

	r, ok := def.Classify(total)
	if !ok {
		return Result{TotalScore: total, Severity: SeverityUnknown}
	}
	return Result{TotalScore: total, Severity: r.Severity, Description: r.Description}
}

// Evaluate validates and then scores a submission.
func Evaluate(answers Answers, def *Definition) (Result, error) {
	if err := Validate(answers, def); err != nil {
		return Result{}, err
	}
	return Score(answers, def), nil
}
