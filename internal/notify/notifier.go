package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/screening"

	"go.uber.org/zap"
)

// Message is one outbound candidate email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier renders and sends decision emails to candidates.
type Notifier struct {
	sender  Sender
	company string
	logger  *zap.Logger
}

func NewNotifier(sender Sender, company string, log *zap.Logger) (*Notifier, error) {
	if sender == nil {
		return nil, fmt.Errorf("notifier requires a sender")
	}
	if company == "" {
		company = "Our Company"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Notifier{
		sender:  sender,
		company: company,
		logger:  log,
	}, nil
}

// Notify emails the candidate about their decision. Candidates routed to
// human review receive nothing, and a candidate without an email address is
// an error for the caller to record.
func (n *Notifier) Notify(ctx context.Context, cand *screening.CandidateRecord, jobTitle string) error {
	if cand == nil || cand.Decision == nil {
		return fmt.Errorf("notify requires a decided candidate")
	}

	kind := cand.Decision.Kind
	if kind == screening.NeedsHumanReview {
		logger.WithCandidate(n.logger, cand.ID).Debug("skipping notification for human review case")
		return nil
	}

	if cand.Email == "" {
		return fmt.Errorf("candidate %s has no email address", cand.ID)
	}

	vars := map[string]string{
		"candidate_name": cand.Name,
		"job_title":      jobTitle,
		"company_name":   n.company,
	}
	if kind == screening.InfoRequested {
		vars["info_requests"] = InfoRequestBullets(cand.Decision.Evaluation)
	}

	body, err := Render(kind, vars)
	if err != nil {
		return fmt.Errorf("render %s email for %s: %w", kind, cand.ID, err)
	}

	msg := Message{
		To:      cand.Email,
		Subject: Subject(kind, jobTitle),
		Body:    body,
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send %s email to %s: %w", kind, cand.Email, err)
	}

	logger.WithCandidate(n.logger, cand.ID).Info("notification sent",
		zap.String("decision", string(kind)),
		zap.String("to", cand.Email),
	)

	return nil
}

// Simulated records messages instead of delivering them. It backs test mode
// and the unit tests.
type Simulated struct {
	mu     sync.Mutex
	sent   []Message
	logger *zap.Logger
}

func NewSimulated(log *zap.Logger) *Simulated {
	if log == nil {
		log = zap.NewNop()
	}
	return &Simulated{logger: log}
}

func (s *Simulated) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, msg)
	s.logger.Info("simulated notification",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)

	return nil
}

// Sent returns a copy of everything recorded so far.
func (s *Simulated) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
