package scorer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spigell/resume-screener/internal/screening"
)

// parseEvaluation turns raw model output into an evaluation. It tolerates
// code fences, prose around the JSON object and varying key casing, but
// rejects any response without a numeric score. Out-of-range scores are
// clamped and flagged rather than rejected.
func parseEvaluation(raw string) (*screening.Evaluation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	normalized := make(map[string]any, len(data))
	for key, value := range data {
		normalized[strings.ToLower(strings.TrimSpace(key))] = value
	}

	score := coerceFloat(normalized["score"])
	if math.IsNaN(score) {
		return nil, fmt.Errorf("model response has no numeric score")
	}

	eval := &screening.Evaluation{
		MatchedSkills: coerceStrings(normalized["matched_skills"]),
		MissingSkills: coerceStrings(normalized["missing_skills"]),
		Strengths:     coerceStrings(normalized["strengths"]),
		Concerns:      coerceStrings(normalized["concerns"]),
		Raw:           raw,
	}

	if score < 0 || score > 100 {
		eval.Clamped = true
		score = math.Min(math.Max(score, 0), 100)
	}
	eval.Score = &score

	if years := coerceFloat(normalized["experience_years"]); !math.IsNaN(years) {
		eval.ExperienceYears = &years
	}

	return eval, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// Models often wrap the object in prose. Keep everything between the
	// first and last brace.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end != -1 && end > start {
		raw = raw[start : end+1]
	}

	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				result = append(result, s)
			}
		}
		return result
	case []string:
		return val
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
