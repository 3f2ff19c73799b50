package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	legal := [][2]State{
		{"", StateDiscovered},
		{StateDiscovered, StateExtracted},
		{StateDiscovered, StateDecided},
		{StateDiscovered, StateSkipped},
		{StateExtracted, StateScored},
		{StateExtracted, StateDecided},
		{StateScored, StateDecided},
		{StateDecided, StateNotified},
	}
	for _, pair := range legal {
		assert.True(t, CanTransition(pair[0], pair[1]), "%q -> %q must be legal", pair[0], pair[1])
	}

	illegal := [][2]State{
		{"", StateScored},
		{StateDiscovered, StateNotified},
		{StateExtracted, StateSkipped},
		{StateScored, StateNotified},
		{StateNotified, StateDecided},
		{StateSkipped, StateExtracted},
	}
	for _, pair := range illegal {
		assert.False(t, CanTransition(pair[0], pair[1]), "%q -> %q must be illegal", pair[0], pair[1])
	}
}

func TestAuditLogRecordsTransitions(t *testing.T) {
	t.Parallel()

	log := NewAuditLog()

	require.NoError(t, log.Record("jane-doe", StateDiscovered, "document jane_doe.pdf"))
	require.NoError(t, log.Record("jane-doe", StateExtracted, "confidence 0.95"))
	require.NoError(t, log.Record("jane-doe", StateScored, "parsed true"))
	require.NoError(t, log.Record("jane-doe", StateDecided, "score below threshold"))

	assert.Equal(t, StateDecided, log.Current("jane-doe"))
	assert.Equal(t, State(""), log.Current("unknown"))

	entries := log.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, State(""), entries[0].From)
	assert.Equal(t, StateDiscovered, entries[0].To)
	assert.Equal(t, StateScored, entries[3].From)
	assert.Equal(t, StateDecided, entries[3].To)
}

func TestAuditLogRejectsIllegalTransition(t *testing.T) {
	t.Parallel()

	log := NewAuditLog()
	require.NoError(t, log.Record("jane-doe", StateDiscovered, ""))

	assert.Error(t, log.Record("jane-doe", StateNotified, "skipping stages"))
	assert.Error(t, log.Record("unknown", StateScored, "no discovery"))
}

func TestAuditLogCountByState(t *testing.T) {
	t.Parallel()

	log := NewAuditLog()
	require.NoError(t, log.Record("a", StateDiscovered, ""))
	require.NoError(t, log.Record("a", StateSkipped, "unsupported"))
	require.NoError(t, log.Record("b", StateDiscovered, ""))
	require.NoError(t, log.Record("b", StateExtracted, ""))
	require.NoError(t, log.Record("c", StateDiscovered, ""))
	require.NoError(t, log.Record("c", StateSkipped, "unsupported"))

	assert.Equal(t, 2, log.CountByState(StateSkipped))
	assert.Equal(t, 1, log.CountByState(StateExtracted))
	assert.Equal(t, 0, log.CountByState(StateDecided))
}

func TestReportValidate(t *testing.T) {
	t.Parallel()

	report := &SessionReport{
		SessionInfo: SessionInfo{TotalCandidates: 4},
		Results:     Results{Accepted: 2, Rejected: 1, NeedsHumanReview: 1},
	}
	assert.NoError(t, report.Validate())

	report.Results.Skipped = 1
	assert.Error(t, report.Validate())
}

func TestScoreBucket(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{
		100:  "90-100%",
		90:   "90-100%",
		89.9: "80-89%",
		80:   "80-89%",
		79:   "70-79%",
		70:   "70-79%",
		69:   "60-69%",
		55:   "50-59%",
		49.9: "Below 50%",
		0:    "Below 50%",
	}
	for score, bucket := range tests {
		assert.Equal(t, bucket, scoreBucket(score), "score %v", score)
	}
}
