package screening

import (
	"fmt"
	"strings"
	"time"
)

// DecisionKind is the outcome assigned to a candidate.
type DecisionKind string

const (
	Accepted         DecisionKind = "accepted"
	Rejected         DecisionKind = "rejected"
	InfoRequested    DecisionKind = "info_requested"
	NeedsHumanReview DecisionKind = "needs_human_review"
)

// Terminal reports whether the kind ends the automated workflow for a
// candidate. InfoRequested stays open until a manual re-submission.
func (k DecisionKind) Terminal() bool {
	return k == Accepted || k == Rejected || k == NeedsHumanReview
}

// Decision is the routing outcome for one candidate. Evaluation may be nil
// when the decision was made without scoring (extraction failure, manual
// info request).
type Decision struct {
	Kind       DecisionKind `json:"kind"`
	Reason     string       `json:"reason"`
	Evaluation *Evaluation  `json:"-"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Decide maps an evaluation onto a decision. Pure and deterministic: no I/O,
// no clock reads besides the timestamp. The threshold is an inclusive lower
// bound, so a score exactly at the threshold is accepted.
//
// A nil evaluation or nil requirements is a programming error and panics;
// an unparseable evaluation is a domain outcome and routes to human review.
func Decide(eval *Evaluation, req *JobRequirements) Decision {
	if eval == nil {
		panic("screening: Decide called with nil evaluation")
	}
	if req == nil {
		panic("screening: Decide called with nil requirements")
	}

	now := time.Now().UTC()

	if eval.Unparseable() {
		return Decision{
			Kind:       NeedsHumanReview,
			Reason:     "unparseable evaluation",
			Evaluation: eval,
			Timestamp:  now,
		}
	}

	score := eval.ScoreValue()
	if score >= req.Threshold {
		return Decision{
			Kind:       Accepted,
			Reason:     fmt.Sprintf("score %.1f meets threshold %.1f", score, req.Threshold),
			Evaluation: eval,
			Timestamp:  now,
		}
	}

	return Decision{
		Kind:       Rejected,
		Reason:     fmt.Sprintf("score %.1f below threshold %.1f", score, req.Threshold),
		Evaluation: eval,
		Timestamp:  now,
	}
}

// RequestInfo is the manual entry point for asking a candidate for missing
// details. It never consults the model and is not emitted by Decide.
func RequestInfo(candidate *CandidateRecord, missingFields []string) Decision {
	if candidate == nil {
		panic("screening: RequestInfo called with nil candidate")
	}

	reason := "additional information requested"
	if len(missingFields) > 0 {
		reason = fmt.Sprintf("additional information requested: %s", strings.Join(missingFields, ", "))
	}

	return Decision{
		Kind:       InfoRequested,
		Reason:     reason,
		Evaluation: candidate.Evaluation,
		Timestamp:  time.Now().UTC(),
	}
}
