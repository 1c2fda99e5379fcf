package fingerprint

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/hireloop/ai-hiring-evaluator/internal/adapter/observability"
	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
	"github.com/hireloop/ai-hiring-evaluator/pkg/textx"
)

// Dimension weights of the similarity score.
const (
	skillsWeight     = 0.40
	educationWeight  = 0.15
	experienceWeight = 0.15
	projectsWeight   = 0.20
	rolesWeight      = 0.10

	// project pair counts as a match above this fuzzy ratio (percent)
	projectMatchRatio = 70
)

// Similarity scores two feature sets in [0,1]. Set dimensions where both
// sides are empty are skipped rather than counted as agreement.
func Similarity(a, b domain.ResumeFeatures) float64 {
	var total float64

	skillsA := textx.TermSet(flattenSkills(a.Skills))
	skillsB := textx.TermSet(flattenSkills(b.Skills))
	if len(skillsA) > 0 || len(skillsB) > 0 {
		total += textx.Jaccard(skillsA, skillsB) * skillsWeight
	}

	eduA := textx.TermSet(a.Education)
	eduB := textx.TermSet(b.Education)
	if len(eduA) > 0 || len(eduB) > 0 {
		total += textx.Jaccard(eduA, eduB) * educationWeight
	}

	expRatio := float64(fuzzy.Ratio(strings.ToLower(a.Experience), strings.ToLower(b.Experience))) / 100
	total += expRatio * experienceWeight

	matches := 0
	for _, pa := range a.Projects {
		for _, pb := range b.Projects {
			if fuzzy.Ratio(pa, pb) > projectMatchRatio {
				matches++
			}
		}
	}
	denom := len(a.Projects)
	if len(b.Projects) > denom {
		denom = len(b.Projects)
	}
	if denom < 1 {
		denom = 1
	}
	projectFrac := float64(matches) / float64(denom)
	if projectFrac > 1 {
		projectFrac = 1
	}
	total += projectFrac * projectsWeight

	rolesA := textx.TermSet(a.Roles)
	rolesB := textx.TermSet(b.Roles)
	if len(rolesA) > 0 || len(rolesB) > 0 {
		total += textx.Jaccard(rolesA, rolesB) * rolesWeight
	}

	return total
}

// ScreenResult is the outcome of a uniqueness check.
type ScreenResult struct {
	Unique        bool    `json:"unique"`
	MaxSimilarity float64 `json:"max_similarity"`
	Hash          string  `json:"fingerprint"`
	Message       string  `json:"message,omitempty"`
}

// Engine serializes uniqueness decisions over a fingerprint corpus.
type Engine struct {
	store     domain.FingerprintStore
	threshold float64

	// read-compare-append must not interleave between concurrent uploads
	mu sync.Mutex
}

// NewEngine builds an Engine over the given corpus store.
func NewEngine(store domain.FingerprintStore, threshold float64) *Engine {
	return &Engine{store: store, threshold: threshold}
}

// CheckUnique extracts features from text, compares against the stored
// corpus, and appends the fingerprint when accepted. Store read errors fail
// open: the resume is accepted rather than blocking an upload on
// infrastructure trouble.
func (e *Engine) CheckUnique(ctx domain.Context, text string) (ScreenResult, error) {
	features := ExtractFeatures(text)
	hash := Hash(features)

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, err := e.store.List(ctx)
	if err != nil {
		slog.Warn("fingerprint corpus read failed, accepting resume", slog.Any("error", err))
		observability.FingerprintDecisionsTotal.WithLabelValues("fail_open").Inc()
		e.append(ctx, hash, features)
		return ScreenResult{Unique: true, Hash: hash}, nil
	}

	var maxSim float64
	for _, fp := range existing {
		if sim := Similarity(features, fp.Features); sim > maxSim {
			maxSim = sim
		}
	}

	if maxSim >= e.threshold {
		observability.FingerprintDecisionsTotal.WithLabelValues("rejected").Inc()
		return ScreenResult{
			Unique:        false,
			MaxSimilarity: maxSim,
			Hash:          hash,
			Message:       rejectionMessage(maxSim),
		}, nil
	}

	observability.FingerprintDecisionsTotal.WithLabelValues("accepted").Inc()
	e.append(ctx, hash, features)
	return ScreenResult{Unique: true, MaxSimilarity: maxSim, Hash: hash}, nil
}

func (e *Engine) append(ctx domain.Context, hash string, features domain.ResumeFeatures) {
	fp := domain.Fingerprint{Hash: hash, Features: features, CreatedAt: time.Now().UTC()}
	if err := e.store.Append(ctx, fp); err != nil {
		slog.Warn("fingerprint store append failed", slog.Any("error", err))
	}
}

func rejectionMessage(similarity float64) string {
	return fmt.Sprintf("Resume upload failed: this resume is too similar to an existing resume (similarity %.1f%%). "+
		"Your resume must be unique with distinct career insights and professional roles, "+
		"technical skills and expertise areas, and projects and accomplishments. "+
		"Please upload a resume that represents a different professional profile.", similarity*100)
}
