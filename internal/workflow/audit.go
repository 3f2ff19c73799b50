package workflow

import (
	"fmt"
	"sync"
	"time"
)

// AuditEntry records one state transition of one candidate.
type AuditEntry struct {
	CandidateID string    `json:"candidate_id"`
	From        State     `json:"from,omitempty"`
	To          State     `json:"to"`
	Timestamp   time.Time `json:"timestamp"`
	Detail      string    `json:"detail,omitempty"`
}

// AuditLog is the append-only transition history of a session. It is the
// source of truth for the session report and rejects illegal transitions,
// so a candidate can never silently skip a pipeline stage.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends a transition. The from state must be the candidate's current
// state as recorded by the log itself.
func (l *AuditLog) Record(candidateID string, to State, detail string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := l.currentLocked(candidateID)
	if !CanTransition(from, to) {
		return fmt.Errorf("illegal transition for %s: %q -> %q", candidateID, from, to)
	}

	l.entries = append(l.entries, AuditEntry{
		CandidateID: candidateID,
		From:        from,
		To:          to,
		Timestamp:   time.Now().UTC(),
		Detail:      detail,
	})

	return nil
}

// Current returns the last recorded state of a candidate, or the empty state
// when the candidate is unknown.
func (l *AuditLog) Current(candidateID string) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.currentLocked(candidateID)
}

func (l *AuditLog) currentLocked(candidateID string) State {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].CandidateID == candidateID {
			return l.entries[i].To
		}
	}
	return ""
}

// Entries returns a copy of the full transition history in append order.
func (l *AuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// CountByState counts candidates whose final state matches the given state.
func (l *AuditLog) CountByState(state State) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	last := make(map[string]State)
	for _, entry := range l.entries {
		last[entry.CandidateID] = entry.To
	}

	count := 0
	for _, s := range last {
		if s == state {
			count++
		}
	}
	return count
}
