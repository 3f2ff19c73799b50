package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spigell/resume-screener/internal/screening"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 { return &v }

func decidedCandidate(kind screening.DecisionKind) *screening.CandidateRecord {
	return &screening.CandidateRecord{
		ID:    "jane_doe",
		Name:  "Jane Doe",
		Email: "jane.doe@example.com",
		Decision: &screening.Decision{
			Kind:      kind,
			Timestamp: time.Now(),
			Evaluation: &screening.Evaluation{
				Score:         floatPtr(55),
				MatchedSkills: []string{"React"},
				MissingSkills: []string{"TypeScript", "Node.js"},
			},
		},
	}
}

func TestNotifyRendersAcceptance(t *testing.T) {
	t.Parallel()

	sim := NewSimulated(zap.NewNop())
	n, err := NewNotifier(sim, "TechCorp Inc", zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), decidedCandidate(screening.Accepted), "React Developer")
	require.NoError(t, err)

	sent := sim.Sent()
	require.Len(t, sent, 1)

	assert.Equal(t, "jane.doe@example.com", sent[0].To)
	assert.Equal(t, "Next Steps - React Developer Position", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Dear Jane Doe,")
	assert.Contains(t, sent[0].Body, "React Developer position")
	assert.Contains(t, sent[0].Body, "TechCorp Inc HR Team")
	assert.NotContains(t, sent[0].Body, "{")
}

func TestNotifyRendersInfoRequestBullets(t *testing.T) {
	t.Parallel()

	sim := NewSimulated(zap.NewNop())
	n, err := NewNotifier(sim, "TechCorp Inc", zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), decidedCandidate(screening.InfoRequested), "React Developer")
	require.NoError(t, err)

	sent := sim.Sent()
	require.Len(t, sent, 1)

	assert.Equal(t, "Additional Information Needed - React Developer Position", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "• Your experience with: TypeScript, Node.js")
	assert.Contains(t, sent[0].Body, "portfolio, GitHub profile")
	assert.NotContains(t, sent[0].Body, "{info_requests}")
}

func TestNotifySkipsHumanReview(t *testing.T) {
	t.Parallel()

	sim := NewSimulated(zap.NewNop())
	n, err := NewNotifier(sim, "TechCorp Inc", zap.NewNop())
	require.NoError(t, err)

	err = n.Notify(context.Background(), decidedCandidate(screening.NeedsHumanReview), "React Developer")
	require.NoError(t, err)

	assert.Empty(t, sim.Sent())
}

func TestNotifyMissingEmailFails(t *testing.T) {
	t.Parallel()

	cand := decidedCandidate(screening.Rejected)
	cand.Email = ""

	n, err := NewNotifier(NewSimulated(zap.NewNop()), "TechCorp Inc", zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, n.Notify(context.Background(), cand, "React Developer"))
}

func TestNotifyUndecidedCandidateFails(t *testing.T) {
	t.Parallel()

	n, err := NewNotifier(NewSimulated(zap.NewNop()), "TechCorp Inc", zap.NewNop())
	require.NoError(t, err)

	assert.Error(t, n.Notify(context.Background(), &screening.CandidateRecord{ID: "x"}, "React Developer"))
	assert.Error(t, n.Notify(context.Background(), nil, "React Developer"))
}

func TestRenderRejectsUnresolvedPlaceholder(t *testing.T) {
	t.Parallel()

	_, err := Render(screening.InfoRequested, map[string]string{
		"candidate_name": "Jane Doe",
		"job_title":      "React Developer",
		"company_name":   "TechCorp Inc",
		// info_requests intentionally missing
	})
	assert.True(t, errors.Is(err, ErrUnresolvedPlaceholder))
}

func TestRenderUnknownKindFails(t *testing.T) {
	t.Parallel()

	_, err := Render(screening.NeedsHumanReview, map[string]string{})
	assert.Error(t, err)
}

func TestSubjects(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Next Steps - React Developer Position", Subject(screening.Accepted, "React Developer"))
	assert.Equal(t, "Application Update - React Developer Position", Subject(screening.Rejected, "React Developer"))
	assert.Equal(t, "Additional Information Needed - React Developer Position", Subject(screening.InfoRequested, "React Developer"))
	assert.Equal(t, "Regarding Your Application - React Developer", Subject(screening.NeedsHumanReview, "React Developer"))
}

func TestInfoRequestBullets(t *testing.T) {
	t.Parallel()

	t.Run("nil evaluation", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, defaultInfoBullet, InfoRequestBullets(nil))
	})

	t.Run("caps missing skills at three", func(t *testing.T) {
		t.Parallel()

		got := InfoRequestBullets(&screening.Evaluation{
			MissingSkills: []string{"A", "B", "C", "D"},
		})
		assert.Contains(t, got, "Your experience with: A, B, C")
		assert.NotContains(t, got, "D")
	})

	t.Run("thin experience", func(t *testing.T) {
		t.Parallel()

		got := InfoRequestBullets(&screening.Evaluation{
			ExperienceYears: floatPtr(1),
		})
		assert.Contains(t, got, "professional experience and projects")
	})

	t.Run("portfolio for frontend skills", func(t *testing.T) {
		t.Parallel()

		got := InfoRequestBullets(&screening.Evaluation{
			MatchedSkills: []string{"JAVASCRIPT"},
		})
		assert.Contains(t, got, "portfolio")
	})

	t.Run("empty evaluation falls back", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, defaultInfoBullet, InfoRequestBullets(&screening.Evaluation{}))
	})
}

func TestFormatMessageUsesCRLF(t *testing.T) {
	t.Parallel()

	raw := string(formatMessage("hr@techcorp.example", Message{
		To:      "jane.doe@example.com",
		Subject: "Next Steps",
		Body:    "line one\nline two",
	}))

	assert.True(t, strings.HasPrefix(raw, "From: hr@techcorp.example\r\n"))
	assert.Contains(t, raw, "Subject: Next Steps\r\n")
	assert.Contains(t, raw, "\r\n\r\nline one\r\nline two")
	assert.NotContains(t, strings.ReplaceAll(raw, "\r\n", ""), "\n")
}
