package notify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spigell/resume-screener/internal/screening"
)

// ErrUnresolvedPlaceholder is returned when a rendered message still carries
// a template placeholder. A half-rendered email must never reach a candidate.
var ErrUnresolvedPlaceholder = errors.New("unresolved template placeholder")

const acceptanceTemplate = `Dear {candidate_name},

Thank you for your application for the {job_title} position. We're impressed with your background and would like to move forward with the next step in our hiring process.

We will be in touch soon to schedule a phone screening to discuss your experience and the role in more detail.

We're excited about the possibility of you joining our team!

Best regards,
{company_name} HR Team`

const rejectionTemplate = `Dear {candidate_name},

Thank you for your interest in the {job_title} position and for taking the time to submit your application.

After careful review of your qualifications, we have decided to move forward with other candidates whose experience more closely aligns with our current requirements.

We appreciate your interest in {company_name} and encourage you to apply for future opportunities that may be a better match for your background and career goals.

We wish you the best of luck in your job search.

Best regards,
{company_name} HR Team`

const infoRequestTemplate = `Dear {candidate_name},

Thank you for your application for the {job_title} position. We're interested in learning more about your background and experience.

Could you please provide additional information about:
{info_requests}

Please reply to this email with the requested details, and we'll continue reviewing your application.

Thank you for your time and interest in {company_name}.

Best regards,
{company_name} HR Team`

var templatesByKind = map[screening.DecisionKind]string{
	screening.Accepted:      acceptanceTemplate,
	screening.Rejected:      rejectionTemplate,
	screening.InfoRequested: infoRequestTemplate,
}

// Subject builds the subject line for a decision kind.
func Subject(kind screening.DecisionKind, jobTitle string) string {
	switch kind {
	case screening.Accepted:
		return fmt.Sprintf("Next Steps - %s Position", jobTitle)
	case screening.Rejected:
		return fmt.Sprintf("Application Update - %s Position", jobTitle)
	case screening.InfoRequested:
		return fmt.Sprintf("Additional Information Needed - %s Position", jobTitle)
	}
	return fmt.Sprintf("Regarding Your Application - %s", jobTitle)
}

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Render fills the template for the decision kind with the given variables.
// Every placeholder must resolve; any survivor fails the render.
func Render(kind screening.DecisionKind, vars map[string]string) (string, error) {
	template, ok := templatesByKind[kind]
	if !ok {
		return "", fmt.Errorf("no message template for decision %q", kind)
	}

	message := template
	for key, value := range vars {
		message = strings.ReplaceAll(message, "{"+key+"}", value)
	}

	if leftover := placeholderPattern.FindString(message); leftover != "" {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedPlaceholder, leftover)
	}

	return message, nil
}

// portfolio-worthy skills from the matched list trigger a work-samples request
var portfolioSkills = map[string]bool{
	"react":      true,
	"javascript": true,
	"frontend":   true,
}

const defaultInfoBullet = "• Additional details about your relevant experience and qualifications"

// InfoRequestBullets derives the bullet list for an information request email
// from the candidate's evaluation. A nil evaluation yields the generic bullet.
func InfoRequestBullets(eval *screening.Evaluation) string {
	if eval == nil {
		return defaultInfoBullet
	}

	var bullets []string

	if len(eval.MissingSkills) > 0 {
		missing := eval.MissingSkills
		if len(missing) > 3 {
			missing = missing[:3]
		}
		bullets = append(bullets, "• Your experience with: "+strings.Join(missing, ", "))
	}

	if eval.ExperienceYears != nil && *eval.ExperienceYears < 2 {
		bullets = append(bullets, "• More details about your professional experience and projects")
	}

	for _, skill := range eval.MatchedSkills {
		if portfolioSkills[strings.ToLower(skill)] {
			bullets = append(bullets, "• Links to your portfolio, GitHub profile, or relevant project examples")
			break
		}
	}

	if len(bullets) == 0 {
		return defaultInfoBullet
	}

	return strings.Join(bullets, "\n")
}
