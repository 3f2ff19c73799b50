package screening

import (
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func testRequirements(threshold float64) *JobRequirements {
	return &JobRequirements{
		Title:              "React Developer",
		RequiredSkills:     []string{"React", "JavaScript"},
		MinExperienceYears: 3,
		Threshold:          threshold,
	}
}

func TestDecideThresholdBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		score  float64
		expect DecisionKind
	}{
		{name: "above threshold", score: 85, expect: Accepted},
		{name: "exactly at threshold", score: 70, expect: Accepted},
		{name: "just below threshold", score: 69, expect: Rejected},
		{name: "zero score", score: 0, expect: Rejected},
		{name: "full score", score: 100, expect: Accepted},
	}

	req := testRequirements(70)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eval := &Evaluation{Score: floatPtr(tt.score)}
			decision := Decide(eval, req)

			if decision.Kind != tt.expect {
				t.Fatalf("score %.1f: expected %s, got %s", tt.score, tt.expect, decision.Kind)
			}

			if decision.Evaluation != eval {
				t.Fatalf("expected decision to reference the evaluation")
			}

			if decision.Reason == "" {
				t.Fatalf("expected a reason")
			}
		})
	}
}

func TestDecideUnparseableRoutesToHumanReview(t *testing.T) {
	t.Parallel()

	eval := &Evaluation{Raw: "not json at all"}
	decision := Decide(eval, testRequirements(70))

	if decision.Kind != NeedsHumanReview {
		t.Fatalf("expected needs_human_review, got %s", decision.Kind)
	}

	if decision.Reason != "unparseable evaluation" {
		t.Fatalf("unexpected reason: %s", decision.Reason)
	}
}

func TestDecidePanicsOnNilInput(t *testing.T) {
	t.Parallel()

	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("nil evaluation", func() { Decide(nil, testRequirements(70)) })
}

func TestDecidePanicsOnNilRequirements(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on nil requirements")
		}
	}()

	Decide(&Evaluation{Score: floatPtr(50)}, nil)
}

func TestRequestInfo(t *testing.T) {
	t.Parallel()

	candidate := NewCandidate("jane_doe.pdf", testTime())
	decision := RequestInfo(candidate, []string{"portfolio link", "Node.js experience"})

	if decision.Kind != InfoRequested {
		t.Fatalf("expected info_requested, got %s", decision.Kind)
	}

	if decision.Kind.Terminal() {
		t.Fatalf("info_requested must not be terminal")
	}

	if !strings.Contains(decision.Reason, "portfolio link") {
		t.Fatalf("expected missing fields in reason, got %q", decision.Reason)
	}
}

func TestDecisionKindTerminal(t *testing.T) {
	t.Parallel()

	terminal := map[DecisionKind]bool{
		Accepted:         true,
		Rejected:         true,
		NeedsHumanReview: true,
		InfoRequested:    false,
	}

	for kind, expect := range terminal {
		if kind.Terminal() != expect {
			t.Fatalf("%s: expected Terminal() == %v", kind, expect)
		}
	}
}
