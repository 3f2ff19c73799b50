package workflow

import (
	"fmt"
	"math"
	"time"

	"github.com/spigell/resume-screener/internal/screening"
)

// manualMinutesPerCandidate is the baseline for the time-saved estimate:
// a human screener spends roughly this long per resume.
const manualMinutesPerCandidate = 15

// SessionInfo identifies one screening run.
type SessionInfo struct {
	SessionID             string    `json:"session_id"`
	JobTitle              string    `json:"job_title"`
	JobRoleFolder         string    `json:"job_role_folder"`
	Timestamp             time.Time `json:"timestamp"`
	ProcessingTimeSeconds float64   `json:"processing_time_seconds"`
	TotalCandidates       int       `json:"total_candidates"`
}

// Results is the outcome breakdown of a session.
type Results struct {
	Accepted          int            `json:"accepted"`
	Rejected          int            `json:"rejected"`
	NeedsHumanReview  int            `json:"needs_human_review"`
	Skipped           int            `json:"skipped"`
	AcceptanceRate    float64        `json:"acceptance_rate"`
	AverageScore      float64        `json:"average_score"`
	ScoreDistribution map[string]int `json:"score_distribution"`
}

// EfficiencyMetrics compares the session against a manual first pass.
type EfficiencyMetrics struct {
	EstimatedManualTimeMinutes  float64 `json:"estimated_manual_time_minutes"`
	ActualProcessingTimeMinutes float64 `json:"actual_processing_time_minutes"`
	TimeSavedMinutes            float64 `json:"time_saved_minutes"`
	AutomationRate              float64 `json:"automation_rate"`
}

// CandidateResult is one detailed row of the report.
type CandidateResult struct {
	CandidateID          string   `json:"candidate_id"`
	Name                 string   `json:"name,omitempty"`
	Email                string   `json:"email,omitempty"`
	SourceFile           string   `json:"source_file"`
	State                State    `json:"state"`
	ExtractionConfidence float64  `json:"extraction_confidence"`
	Score                *float64 `json:"score,omitempty"`
	Decision             string   `json:"decision,omitempty"`
	Reason               string   `json:"reason,omitempty"`
	MatchedSkills        []string `json:"matched_skills,omitempty"`
	MissingSkills        []string `json:"missing_skills,omitempty"`
}

// SessionReport is the final, JSON-serializable artifact of a session.
type SessionReport struct {
	SessionInfo       SessionInfo       `json:"session_info"`
	Results           Results           `json:"results"`
	EfficiencyMetrics EfficiencyMetrics `json:"efficiency_metrics"`
	Warnings          []string          `json:"warnings,omitempty"`
	AuditTrail        []AuditEntry      `json:"audit_trail"`
	DetailedResults   []CandidateResult `json:"detailed_results"`
}

// Validate checks the accounting invariant: every discovered document must
// end in exactly one decision state or a skip record.
func (r *SessionReport) Validate() error {
	sum := r.Results.Accepted + r.Results.Rejected + r.Results.NeedsHumanReview + r.Results.Skipped
	if sum != r.SessionInfo.TotalCandidates {
		return fmt.Errorf("report accounting mismatch: %d outcomes for %d candidates",
			sum, r.SessionInfo.TotalCandidates)
	}
	return nil
}

var scoreBuckets = []string{"90-100%", "80-89%", "70-79%", "60-69%", "50-59%", "Below 50%"}

func scoreBucket(score float64) string {
	switch {
	case score >= 90:
		return scoreBuckets[0]
	case score >= 80:
		return scoreBuckets[1]
	case score >= 70:
		return scoreBuckets[2]
	case score >= 60:
		return scoreBuckets[3]
	case score >= 50:
		return scoreBuckets[4]
	}
	return scoreBuckets[5]
}

// buildReport aggregates the audit log and candidate records into the final
// report. Counters come from the audit log and the decisions attached to the
// records, never from ad-hoc counting during the run.
func buildReport(info SessionInfo, audit *AuditLog, candidates []*screening.CandidateRecord, warnings []string) *SessionReport {
	results := Results{
		Skipped:           audit.CountByState(StateSkipped),
		ScoreDistribution: map[string]int{},
	}
	for _, bucket := range scoreBuckets {
		results.ScoreDistribution[bucket] = 0
	}

	var (
		scoreSum    float64
		scoredCount int
		detailed    []CandidateResult
	)

	for _, cand := range candidates {
		row := CandidateResult{
			CandidateID:          cand.ID,
			Name:                 cand.Name,
			Email:                cand.Email,
			SourceFile:           cand.SourceFile,
			State:                audit.Current(cand.ID),
			ExtractionConfidence: cand.ExtractionConfidence,
		}

		if eval := cand.Evaluation; eval != nil && !eval.Unparseable() {
			score := eval.ScoreValue()
			row.Score = &score
			row.MatchedSkills = eval.MatchedSkills
			row.MissingSkills = eval.MissingSkills

			scoreSum += score
			scoredCount++
			results.ScoreDistribution[scoreBucket(score)]++
		}

		if dec := cand.Decision; dec != nil {
			row.Decision = string(dec.Kind)
			row.Reason = dec.Reason

			switch dec.Kind {
			case screening.Accepted:
				results.Accepted++
			case screening.Rejected:
				results.Rejected++
			case screening.NeedsHumanReview:
				results.NeedsHumanReview++
			}
		}

		detailed = append(detailed, row)
	}

	if info.TotalCandidates > 0 {
		results.AcceptanceRate = float64(results.Accepted) / float64(info.TotalCandidates)
	}
	if scoredCount > 0 {
		results.AverageScore = math.Round(scoreSum/float64(scoredCount)*10) / 10
	}

	actualMinutes := info.ProcessingTimeSeconds / 60
	estimatedMinutes := float64(info.TotalCandidates * manualMinutesPerCandidate)

	automationRate := 1.0
	if results.NeedsHumanReview > 0 || len(warnings) > 0 {
		automationRate = 0.8
	}

	return &SessionReport{
		SessionInfo: info,
		Results:     results,
		EfficiencyMetrics: EfficiencyMetrics{
			EstimatedManualTimeMinutes:  estimatedMinutes,
			ActualProcessingTimeMinutes: actualMinutes,
			TimeSavedMinutes:            estimatedMinutes - actualMinutes,
			AutomationRate:              automationRate,
		},
		Warnings:        warnings,
		AuditTrail:      audit.Entries(),
		DetailedResults: detailed,
	}
}
