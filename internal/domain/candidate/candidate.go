package candidate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxTextSize is the maximum resume body size in bytes.
const MaxTextSize = 163840 // 160KB

// MaxIDLength is the maximum identifier length in bytes.
const MaxIDLength = 256

// Candidate is an ingested resume (immutable value object).
type Candidate struct {
	id   string
	text string
}

// New validates and creates a Candidate.
// ID: 1-256 bytes, no whitespace, ':' or '*' (it is embedded in storage keys and tag queries).
// Text: non-blank, max 160KB.
func New(id, text string) (Candidate, error) {
	if err := ValidateID(id); err != nil {
		return Candidate{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Candidate{}, fmt.Errorf("resume text is required")
	}
	if len(text) > MaxTextSize {
		return Candidate{}, fmt.Errorf("resume text too large (max %d bytes)", MaxTextSize)
	}
	return Candidate{id: id, text: text}, nil
}

// Reconstruct creates a Candidate without validation (storage hydration).
func Reconstruct(id, text string) Candidate {
	return Candidate{id: id, text: text}
}

// ID returns the candidate identifier.
func (c *Candidate) ID() string { return c.id }

// Text returns the resume body.
func (c *Candidate) Text() string { return c.text }

// ValidateID checks that id can be used as a storage key segment.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("candidate ID is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("candidate ID too long (max %d)", MaxIDLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || r == ':' || r == '*' {
			return fmt.Errorf("candidate ID %q contains a forbidden character %q", id, r)
		}
	}
	return nil
}

// NormalizeID converts a JSON string or integer identifier into its canonical string form.
// Source tables use both ("ID" columns are often numeric).
func NormalizeID(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", fmt.Errorf("candidate ID is required")
	}

	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return "", fmt.Errorf("invalid candidate ID: %w", err)
		}
		return str, nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", fmt.Errorf("candidate ID must be a string or an integer, got %s", s)
	}
	return strconv.FormatInt(n, 10), nil
}
