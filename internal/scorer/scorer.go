package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/resume-screener/internal/ai"
	"github.com/spigell/resume-screener/internal/screening"
	"github.com/spigell/resume-screener/internal/util"

	"go.uber.org/zap"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultRetryLimit   = 2
	defaultMaxLogLength = 200

	// Appended to the prompt on retries after a malformed response.
	strictReformatInstruction = "IMPORTANT: your previous response could not be parsed. " +
		"Respond with ONLY the JSON object described above. No markdown, no code fences, no commentary."
)

// Scorer evaluates resume text against job requirements through a model
// generator. It holds no mutable state and is safe to use from concurrent
// workers.
type Scorer struct {
	generator  ai.Generator
	retryLimit int
	logger     *zap.Logger
	maxLogLen  int
}

// New creates a scorer. retryLimit is the number of retries after the first
// call; negative values fall back to the default.
func New(generator ai.Generator, retryLimit int, maxLogLength int, logger *zap.Logger) *Scorer {
	if retryLimit < 0 {
		retryLimit = defaultRetryLimit
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator:  generator,
		retryLimit: retryLimit,
		logger:     logger,
		maxLogLen:  maxLogLength,
	}
}

// Evaluate scores one resume. It issues at most retryLimit+1 model calls:
// malformed output and transient model failures both consume attempts, with a
// stricter reformatting instruction appended after the first failure. When
// every attempt fails the returned evaluation is unparseable (nil score) and
// keeps the last raw output for the audit trail; the error return is reserved
// for programming mistakes, not model behavior.
func (s *Scorer) Evaluate(ctx context.Context, resumeText string, req *screening.JobRequirements) (*screening.Evaluation, error) {
	if req == nil {
		return nil, fmt.Errorf("job requirements are required")
	}
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume text must not be empty")
	}

	basePrompt, err := buildPrompt(resumeText, req)
	if err != nil {
		return nil, err
	}

	var lastRaw string

	for attempt := 0; attempt <= s.retryLimit; attempt++ {
		prompt := basePrompt
		if attempt > 0 {
			prompt = basePrompt + "\n\n" + strictReformatInstruction
		}

		s.logger.Debug("model evaluation request",
			zap.Int("attempt", attempt+1),
			zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
			zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
		)

		raw, err := s.generator.Infer(ctx, prompt)
		if err != nil {
			s.logger.Warn("model call failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		lastRaw = raw

		s.logger.Debug("model evaluation response",
			zap.Int("attempt", attempt+1),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", util.TruncateForLog(raw, s.maxLogLen)),
		)

		eval, err := parseEvaluation(raw)
		if err != nil {
			s.logger.Warn("model response is malformed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			continue
		}

		if eval.Clamped {
			s.logger.Warn("model score was out of range and has been clamped",
				zap.Float64("score", eval.ScoreValue()),
			)
		}

		return eval, nil
	}

	s.logger.Warn("all scoring attempts exhausted",
		zap.Int("attempts", s.retryLimit+1),
	)

	return &screening.Evaluation{Raw: lastRaw}, nil
}

func buildPrompt(resumeText string, req *screening.JobRequirements) (string, error) {
	jobJSON, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job requirements: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_JSON}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{RESUME_TEXT}}", resumeText)

	return prompt, nil
}
