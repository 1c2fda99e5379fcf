// Package questionbank serves curated interview questions per role. It is
// the deterministic fallback when no generation provider is reachable.
package questionbank

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

//go:embed bank.yaml
var defaultBank []byte

// fallbackRole is used when a role has no curated questions.
const fallbackRole = "software_engineer"

// Service holds the per-role question banks.
type Service struct {
	banks map[string][]domain.Question
}

// Load reads a YAML bank from path, or the embedded defaults when path is
// empty.
func Load(path string) (*Service, error) {
	data := defaultBank
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("op=questionbank.Load: %w", err)
		}
		data = b
	}

	var banks map[string][]domain.Question
	if err := yaml.Unmarshal(data, &banks); err != nil {
		return nil, fmt.Errorf("op=questionbank.Load: %w", err)
	}
	if len(banks) == 0 {
		return nil, fmt.Errorf("op=questionbank.Load: empty bank")
	}
	return &Service{banks: banks}, nil
}

// Roles lists the roles with curated questions.
func (s *Service) Roles() []string {
	roles := make([]string, 0, len(s.banks))
	for r := range s.banks {
		roles = append(roles, r)
	}
	return roles
}

// Role returns the curated questions for a role, falling back to the
// software engineer bank for unknown roles.
func (s *Service) Role(role string) []domain.Question {
	if qs, ok := s.banks[normalizeRole(role)]; ok && len(qs) > 0 {
		return qs
	}
	return s.banks[fallbackRole]
}

// Cycle returns n questions for the role, repeating the bank only after
// every distinct question text has been used.
func (s *Service) Cycle(role string, n int) []domain.Question {
	source := s.Role(role)
	if len(source) == 0 || n <= 0 {
		return nil
	}

	out := make([]domain.Question, 0, n)
	seen := make(map[string]struct{})
	for i := 0; len(out) < n; i++ {
		q := source[i%len(source)]
		if _, dup := seen[q.Question]; dup {
			if len(seen) == len(source) {
				// bank exhausted, allow repeats
				out = append(out, q)
			}
			continue
		}
		seen[q.Question] = struct{}{}
		out = append(out, q)
	}
	return out
}

// FirstUnasked returns the first bank question whose text is not in asked.
func (s *Service) FirstUnasked(role string, asked []string) (domain.Question, bool) {
	askedSet := make(map[string]struct{}, len(asked))
	for _, a := range asked {
		askedSet[a] = struct{}{}
	}
	for _, q := range s.Role(role) {
		if _, dup := askedSet[q.Question]; !dup {
			return q, true
		}
	}
	return domain.Question{}, false
}

func normalizeRole(role string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(role)), " ", "_")
}
