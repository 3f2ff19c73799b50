package screening

import (
	"regexp"
	"strings"
	"time"
)

// CandidateRecord is the canonical representation of one applicant moving
// through the pipeline. It is created when a document is discovered and never
// mutated after extraction, except to attach the evaluation and decision.
type CandidateRecord struct {
	ID                   string      `json:"id"`
	SourceFile           string      `json:"source_file"`
	RawText              string      `json:"-"`
	ExtractionConfidence float64     `json:"extraction_confidence"`
	Name                 string      `json:"name,omitempty"`
	Email                string      `json:"email,omitempty"`
	Phone                string      `json:"phone,omitempty"`
	AppliedAt            time.Time   `json:"applied_at"`
	Evaluation           *Evaluation `json:"evaluation,omitempty"`
	Decision             *Decision   `json:"decision,omitempty"`
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`[+(]?\d[\d\s().-]{7,}\d`)
	idSeparators = regexp.MustCompile(`[^a-z0-9]+`)
	nameCleanup  = regexp.MustCompile(`(?i)resume|curriculum|vitae|\bcv\b`)
)

// Mailbox local parts that belong to companies rather than candidates.
var genericMailboxes = []string{
	"noreply", "admin", "info", "contact", "support", "sales",
	"hr", "jobs", "recruiting", "example",
}

// NewCandidate builds a record from a discovered document. The ID is derived
// from the source filename so that re-running a session over the same folder
// yields stable identifiers.
func NewCandidate(sourceFile string, now time.Time) *CandidateRecord {
	return &CandidateRecord{
		ID:         CandidateID(sourceFile),
		SourceFile: sourceFile,
		Name:       nameFromFilename(sourceFile),
		AppliedAt:  now,
	}
}

// AttachText stores the extracted text and fills the best-effort contact
// fields. Parsed name, email and phone stay empty when nothing plausible is
// found; they are informational and never gate a decision.
func (c *CandidateRecord) AttachText(text string, confidence float64) {
	c.RawText = text
	c.ExtractionConfidence = confidence

	if email := extractEmail(text); email != "" {
		c.Email = email
	}
	if phone := extractPhone(text); phone != "" {
		c.Phone = phone
	}
	if c.Name == "" {
		c.Name = nameFromText(text)
	}
}

// CandidateID converts a filename into a stable identifier.
func CandidateID(filename string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx != -1 {
		base = base[:idx]
	}

	id := idSeparators.ReplaceAllString(strings.ToLower(base), "-")
	return strings.Trim(id, "-")
}

func nameFromFilename(filename string) string {
	base := filename
	if idx := strings.LastIndexByte(base, '/'); idx != -1 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx != -1 {
		base = base[:idx]
	}

	base = nameCleanup.ReplaceAllString(base, "")
	base = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(base)

	words := strings.Fields(base)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	name := strings.Join(words, " ")
	if !looksLikeName(name) {
		return ""
	}

	return name
}

func nameFromText(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		if strings.ContainsAny(line, "@/:") ||
			strings.Contains(lower, "resume") ||
			strings.Contains(lower, "curriculum") {
			continue
		}

		if looksLikeName(line) {
			return line
		}
	}

	return ""
}

func looksLikeName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}

	for _, word := range words {
		if len(word) < 2 || len(word) > 20 {
			return false
		}
		for _, r := range word {
			if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
				return false
			}
		}
	}

	return true
}

func extractEmail(text string) string {
	emails := emailPattern.FindAllString(text, -1)
	if len(emails) == 0 {
		return ""
	}

	for _, email := range emails {
		if !isGenericMailbox(email) {
			return email
		}
	}

	return emails[0]
}

// isGenericMailbox matches against the local part only, so personal addresses
// that merely contain a generic word (chris, christine) are not misclassified.
func isGenericMailbox(email string) bool {
	local := strings.ToLower(email)
	if at := strings.IndexByte(local, '@'); at != -1 {
		local = local[:at]
	}

	for _, mailbox := range genericMailboxes {
		if local == mailbox {
			return true
		}
		for _, sep := range []string{".", "-", "_", "+"} {
			if strings.HasPrefix(local, mailbox+sep) {
				return true
			}
		}
	}

	return false
}

func extractPhone(text string) string {
	match := phonePattern.FindString(text)
	return strings.TrimSpace(match)
}
