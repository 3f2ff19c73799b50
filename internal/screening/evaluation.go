package screening

// Evaluation is the structured verdict produced by the scorer for one resume.
// A nil Score marks the evaluation as unparseable: the model never returned a
// usable numeric score. That state is distinct from a score of zero and must
// be routed to human review, never compared numerically.
type Evaluation struct {
	Score           *float64 `json:"score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	ExperienceYears *float64 `json:"experience_years,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Concerns        []string `json:"concerns,omitempty"`
	// Raw keeps the unmodified model output for the audit trail, even when
	// parsing partially failed.
	Raw string `json:"raw_model_output,omitempty"`
	// Clamped is set when the model returned a score outside [0,100].
	Clamped bool `json:"clamped,omitempty"`
}

// Unparseable reports whether the scorer failed to obtain a numeric score.
func (e *Evaluation) Unparseable() bool {
	return e.Score == nil
}

// ScoreValue returns the score for a parseable evaluation. Callers must check
// Unparseable first.
func (e *Evaluation) ScoreValue() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}
