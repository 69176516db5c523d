package mode

import (
	"fmt"
	"strings"
)

// Mode is the query strategy requested for a retrieval.
type Mode string

// Retrieval mode constants.
const (
	// Generic searches with the job description verbatim.
	Generic Mode = "generic"
	// Fusion expands the description into several sub-queries and fuses their rankings.
	Fusion Mode = "fusion"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Generic || m == Fusion
}

// Parse accepts the canonical names plus the labels used by the screening UI
// ("Generic RAG", "RAG Fusion", "rag_fusion"). Empty input means Generic.
func Parse(s string) (Mode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)

	switch norm {
	case "", "generic", "generic rag":
		return Generic, nil
	case "fusion", "rag fusion":
		return Fusion, nil
	default:
		return "", fmt.Errorf("unknown retrieval mode %q", s)
	}
}
