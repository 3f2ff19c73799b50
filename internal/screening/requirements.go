package screening

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// JobRequirements describes the role one screening session evaluates against.
// It is immutable for the lifetime of a session.
type JobRequirements struct {
	Title              string   `mapstructure:"title" json:"title" validate:"required"`
	RequiredSkills     []string `mapstructure:"required-skills" json:"required_skills" validate:"required,min=1"`
	PreferredSkills    []string `mapstructure:"preferred-skills" json:"preferred_skills,omitempty"`
	MinExperienceYears float64  `mapstructure:"min-experience-years" json:"min_experience_years" validate:"gte=0"`
	Threshold          float64  `mapstructure:"threshold" json:"threshold" validate:"gte=0,lte=100"`
}

var validate = validator.New()

// Validate checks the requirements before any candidate is processed. An
// invalid threshold or an empty skill list is a configuration error, not a
// screening outcome.
func (r *JobRequirements) Validate() error {
	if r == nil {
		return fmt.Errorf("job requirements are required")
	}

	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("job title is required")
	}

	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid job requirements: %w", err)
	}

	return nil
}

// RequirementsFromMap decodes requirements from a generic configuration map,
// as produced by viper for the `job` section.
func RequirementsFromMap(raw map[string]any) (*JobRequirements, error) {
	var req JobRequirements
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return nil, err
	}

	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode job requirements: %w", err)
	}

	return &req, nil
}
