package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spigell/resume-screener/internal/extract"
	"github.com/spigell/resume-screener/internal/logger"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/source"
	"github.com/spigell/resume-screener/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkers             = 3
	defaultStageTimeout        = 2 * time.Minute
	defaultNotificationBackoff = 2 * time.Second
)

// DefaultNotificationRetries is the redelivery budget used when the caller
// has no configured value.
const DefaultNotificationRetries = 2

// Evaluator scores resume text against job requirements.
type Evaluator interface {
	Evaluate(ctx context.Context, resumeText string, req *screening.JobRequirements) (*screening.Evaluation, error)
}

// Notifier delivers the decision email for a decided candidate.
type Notifier interface {
	Notify(ctx context.Context, cand *screening.CandidateRecord, jobTitle string) error
}

// Config carries the per-session settings of the orchestrator.
type Config struct {
	Requirements *screening.JobRequirements
	JobRole      string
	// Workers bounds candidate-level parallelism.
	Workers int
	// ExtractionConfidenceFloor routes candidates with unreadable documents
	// to human review without spending a model call.
	ExtractionConfidenceFloor float64
	// StageTimeout applies separately to each extract, score and notify call.
	StageTimeout time.Duration
	// NotificationRetries bounds redelivery attempts after a failed send.
	NotificationRetries int
	// NotificationBackoff is the pause between redelivery attempts.
	NotificationBackoff time.Duration
}

func (c *Config) validate() error {
	if c.Requirements == nil {
		return fmt.Errorf("job requirements are required")
	}
	if err := c.Requirements.Validate(); err != nil {
		return fmt.Errorf("invalid job requirements: %w", err)
	}
	if c.JobRole == "" {
		return fmt.Errorf("job role folder is required")
	}
	if c.ExtractionConfidenceFloor < 0 || c.ExtractionConfidenceFloor > 1 {
		return fmt.Errorf("extraction confidence floor must be in [0, 1], got %v", c.ExtractionConfidenceFloor)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
	if c.NotificationRetries < 0 {
		return fmt.Errorf("notification retries must not be negative, got %d", c.NotificationRetries)
	}
	if c.StageTimeout <= 0 {
		c.StageTimeout = defaultStageTimeout
	}
	if c.NotificationBackoff <= 0 {
		c.NotificationBackoff = defaultNotificationBackoff
	}
	return nil
}

// Orchestrator drives every discovered document through the pipeline:
// discovery, text extraction, scoring, the routing decision and the candidate
// notification. Each candidate receives at most one decision per session.
type Orchestrator struct {
	cfg       Config
	source    source.Source
	extractor extract.Extractor
	scorer    Evaluator
	notifier  Notifier
	logger    *zap.Logger

	audit   *AuditLog
	stopped atomic.Bool

	mu         sync.Mutex
	candidates map[string]*screening.CandidateRecord
	warnings   []string
}

func New(cfg Config, src source.Source, extractor extract.Extractor, scorer Evaluator, notifier Notifier, log *zap.Logger) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if src == nil || extractor == nil || scorer == nil {
		return nil, fmt.Errorf("source, extractor and scorer are required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Orchestrator{
		cfg:        cfg,
		source:     src,
		extractor:  extractor,
		scorer:     scorer,
		notifier:   notifier,
		logger:     log,
		audit:      NewAuditLog(),
		candidates: make(map[string]*screening.CandidateRecord),
	}, nil
}

// Stop halts dispatching of further candidates. In-flight candidates finish
// and are recorded; Run still returns a complete report for everything that
// was dispatched.
func (o *Orchestrator) Stop() {
	o.stopped.Store(true)
	o.logger.Info("stop requested, finishing in-flight candidates")
}

// Run screens every document in the job role folder and returns the session
// report. An unreachable source aborts before any candidate is processed;
// per-candidate failures are absorbed into decisions, skips and warnings.
func (o *Orchestrator) Run(ctx context.Context) (*SessionReport, error) {
	start := time.Now()
	sessionID := uuid.NewString()
	log := o.logger.With(zap.String(logger.FieldSession, sessionID))

	refs, err := o.source.List(ctx, o.cfg.JobRole)
	if err != nil {
		return nil, fmt.Errorf("list documents for role %q: %w", o.cfg.JobRole, err)
	}

	log.Info("screening session started",
		zap.String("job_title", o.cfg.Requirements.Title),
		zap.String("job_role", o.cfg.JobRole),
		zap.Int("documents", len(refs)),
		zap.Int("workers", o.cfg.Workers),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.cfg.Workers)

	dispatched := 0
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if o.stopped.Load() || groupCtx.Err() != nil {
			break
		}

		id := screening.CandidateID(ref.Name)
		if seen[id] {
			// A second document resolving to the same candidate id (same
			// filename with another extension) becomes a skip record under a
			// disambiguated id instead of silently vanishing from the report.
			dupID := fmt.Sprintf("%s-%d", id, 2)
			for n := 3; seen[dupID]; n++ {
				dupID = fmt.Sprintf("%s-%d", id, n)
			}
			seen[dupID] = true
			dispatched++
			o.skipDuplicate(ref, id, dupID)
			continue
		}
		seen[id] = true
		dispatched++

		group.Go(func() error {
			if _, err := o.Process(groupCtx, ref); err != nil {
				o.warn(fmt.Sprintf("candidate %s: %v", id, err))
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	info := SessionInfo{
		SessionID:             sessionID,
		JobTitle:              o.cfg.Requirements.Title,
		JobRoleFolder:         o.cfg.JobRole,
		Timestamp:             time.Now().UTC(),
		ProcessingTimeSeconds: time.Since(start).Seconds(),
		TotalCandidates:       dispatched,
	}

	report := buildReport(info, o.audit, o.candidateList(), o.copyWarnings())
	if err := report.Validate(); err != nil {
		return nil, err
	}

	log.Info("screening session finished",
		zap.Int("total", report.SessionInfo.TotalCandidates),
		zap.Int("accepted", report.Results.Accepted),
		zap.Int("rejected", report.Results.Rejected),
		zap.Int("needs_human_review", report.Results.NeedsHumanReview),
		zap.Int("skipped", report.Results.Skipped),
		zap.Float64("seconds", report.SessionInfo.ProcessingTimeSeconds),
	)

	return report, nil
}

// Process runs one document through the pipeline. Re-entry for an already
// decided candidate returns the cached record without touching the audit log
// or issuing new model calls.
func (o *Orchestrator) Process(ctx context.Context, ref source.DocumentRef) (*screening.CandidateRecord, error) {
	id := screening.CandidateID(ref.Name)

	o.mu.Lock()
	if existing, ok := o.candidates[id]; ok {
		o.mu.Unlock()
		return existing, nil
	}
	cand := screening.NewCandidate(ref.Name, time.Now().UTC())
	o.candidates[id] = cand
	o.mu.Unlock()

	log := logger.WithCandidate(o.logger, cand.ID)

	if err := o.audit.Record(cand.ID, StateDiscovered, "document "+ref.Name); err != nil {
		return cand, err
	}

	data, err := o.source.Fetch(ctx, ref)
	if err != nil {
		o.decideWithoutScore(cand, "extraction failure", fmt.Sprintf("fetch failed: %v", err))
		return cand, nil
	}

	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	text, confidence, err := o.extractor.Extract(stageCtx, data, ref.Name)
	cancel()

	if errors.Is(err, extract.ErrUnsupportedFormat) {
		log.Warn("skipping unsupported document", zap.String("file", ref.Name))
		return cand, o.audit.Record(cand.ID, StateSkipped, err.Error())
	}
	if err != nil {
		o.decideWithoutScore(cand, "extraction failure", err.Error())
		return cand, nil
	}

	cand.AttachText(text, confidence)
	if err := o.audit.Record(cand.ID, StateExtracted,
		fmt.Sprintf("confidence %.2f", confidence)); err != nil {
		return cand, err
	}

	if confidence < o.cfg.ExtractionConfidenceFloor {
		log.Warn("extraction confidence below floor",
			zap.Float64("confidence", confidence),
			zap.Float64("floor", o.cfg.ExtractionConfidenceFloor),
		)
		o.decideWithoutScore(cand, "extraction failure",
			fmt.Sprintf("confidence %.2f below floor %.2f", confidence, o.cfg.ExtractionConfidenceFloor))
		return cand, nil
	}

	stageCtx, cancel = context.WithTimeout(ctx, o.cfg.StageTimeout)
	eval, err := o.scorer.Evaluate(stageCtx, cand.RawText, o.cfg.Requirements)
	cancel()
	if err != nil {
		o.decideWithoutScore(cand, "scoring failure", err.Error())
		return cand, nil
	}

	cand.Evaluation = eval
	if err := o.audit.Record(cand.ID, StateScored,
		fmt.Sprintf("parsed %t", !eval.Unparseable())); err != nil {
		return cand, err
	}

	decision := screening.Decide(eval, o.cfg.Requirements)
	o.attachDecision(cand, &decision)
	if err := o.audit.Record(cand.ID, StateDecided, decision.Reason); err != nil {
		return cand, err
	}

	log.Info("candidate decided",
		zap.String("decision", string(decision.Kind)),
		zap.String("reason", decision.Reason),
	)

	o.notify(ctx, cand)

	return cand, nil
}

// skipDuplicate records a document whose filename resolves to an already
// dispatched candidate id. The extra document counts against the session
// total as a skip and never reaches extraction or the model.
func (o *Orchestrator) skipDuplicate(ref source.DocumentRef, originalID, dupID string) {
	cand := screening.NewCandidate(ref.Name, time.Now().UTC())
	cand.ID = dupID

	o.mu.Lock()
	o.candidates[dupID] = cand
	o.mu.Unlock()

	if err := o.audit.Record(dupID, StateDiscovered, "document "+ref.Name); err != nil {
		o.warn(fmt.Sprintf("candidate %s: %v", dupID, err))
		return
	}
	if err := o.audit.Record(dupID, StateSkipped, "duplicate of candidate "+originalID); err != nil {
		o.warn(fmt.Sprintf("candidate %s: %v", dupID, err))
		return
	}

	logger.WithCandidate(o.logger, dupID).Warn("skipping duplicate document",
		zap.String("file", ref.Name),
		zap.String("duplicate_of", originalID),
	)
}

// decideWithoutScore routes a candidate to human review before the model is
// ever consulted.
func (o *Orchestrator) decideWithoutScore(cand *screening.CandidateRecord, reason, detail string) {
	decision := &screening.Decision{
		Kind:      screening.NeedsHumanReview,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
	o.attachDecision(cand, decision)

	if err := o.audit.Record(cand.ID, StateDecided, reason+": "+detail); err != nil {
		o.warn(fmt.Sprintf("candidate %s: %v", cand.ID, err))
	}
}

func (o *Orchestrator) attachDecision(cand *screening.CandidateRecord, decision *screening.Decision) {
	o.mu.Lock()
	defer o.mu.Unlock()

	// at most one decision per candidate per session
	if cand.Decision == nil {
		cand.Decision = decision
	}
}

// notify delivers the decision email with bounded retries. Delivery failure
// never changes the decision; it becomes a session warning.
func (o *Orchestrator) notify(ctx context.Context, cand *screening.CandidateRecord) {
	if o.notifier == nil || cand.Decision.Kind == screening.NeedsHumanReview {
		return
	}

	var lastErr error
	for attempt := 0; attempt <= o.cfg.NotificationRetries; attempt++ {
		if attempt > 0 {
			if err := util.WaitFor(ctx, o.cfg.NotificationBackoff); err != nil {
				lastErr = err
				break
			}
		}

		stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
		lastErr = o.notifier.Notify(stageCtx, cand, o.cfg.Requirements.Title)
		cancel()

		if lastErr == nil {
			if err := o.audit.Record(cand.ID, StateNotified, "notification delivered"); err != nil {
				o.warn(fmt.Sprintf("candidate %s: %v", cand.ID, err))
			}
			return
		}
	}

	o.warn(fmt.Sprintf("notification failed for %s: %v", cand.ID, lastErr))
}

func (o *Orchestrator) warn(msg string) {
	o.logger.Warn(msg)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, msg)
}

func (o *Orchestrator) copyWarnings() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]string, len(o.warnings))
	copy(out, o.warnings)
	return out
}

func (o *Orchestrator) candidateList() []*screening.CandidateRecord {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*screening.CandidateRecord, 0, len(o.candidates))
	for _, cand := range o.candidates {
		out = append(out, cand)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}
