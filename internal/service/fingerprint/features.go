// Package fingerprint extracts comparable features from resume text and
// decides whether a new resume is distinct enough from the stored corpus.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

// SkillCategories maps a category to the skill terms scanned for in resume
// text. Matching is substring, case-insensitive.
var SkillCategories = map[string][]string{
	"programming":  {"python", "java", "javascript", "c++", "c#", "ruby", "php", "swift", "kotlin", "go"},
	"web_tech":     {"html", "css", "react", "angular", "vue", "django", "flask", "node.js", "express"},
	"databases":    {"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle"},
	"cloud":        {"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins"},
	"data_science": {"pandas", "numpy", "tensorflow", "pytorch", "scikit-learn", "matplotlib"},
	"soft_skills":  {"communication", "leadership", "teamwork", "problem-solving", "creativity", "adaptability"},
}

var (
	yearsRe  = regexp.MustCompile(`(?i)(\d+)\s*\+?\s*years?(?:\s+of)?\s*experience`)
	degreeRe = regexp.MustCompile(`(?i)\b(bachelor|master|phd|mba|b\.?tech|m\.?tech|b\.?e|m\.?e)\b`)
)

var projectKeywords = []string{"project", "developed", "built", "created", "designed", "implemented", "led"}

var roleKeywords = []string{"developer", "engineer", "manager", "analyst", "architect", "lead", "senior", "junior"}

const (
	maxProjects   = 5
	projectIntro  = 10
	projectLength = 100
)

// ExtractFeatures derives the comparable feature set from raw resume text.
func ExtractFeatures(text string) domain.ResumeFeatures {
	lower := strings.ToLower(text)

	skills := make(map[string][]string)
	for category, terms := range SkillCategories {
		var found []string
		for _, term := range terms {
			if strings.Contains(lower, term) {
				found = append(found, term)
			}
		}
		if len(found) > 0 {
			skills[category] = found
		}
	}

	var degrees []string
	seenDegrees := make(map[string]struct{})
	for _, m := range degreeRe.FindAllString(text, -1) {
		d := strings.ToLower(m)
		if _, dup := seenDegrees[d]; dup {
			continue
		}
		seenDegrees[d] = struct{}{}
		degrees = append(degrees, d)
	}

	experience := "Not specified"
	if m := yearsRe.FindStringSubmatch(text); m != nil {
		experience = m[1]
	}

	var projects []string
	for _, sentence := range splitSentences(text) {
		sl := strings.ToLower(sentence)
		for _, kw := range projectKeywords {
			if strings.Contains(sl, kw) {
				summary := strings.TrimSpace(sentence)
				if len(summary) > projectLength {
					summary = summary[:projectLength]
				}
				if len(summary) > projectIntro {
					projects = append(projects, strings.ToLower(summary))
				}
				break
			}
		}
		if len(projects) >= maxProjects {
			break
		}
	}

	var roles []string
	for _, kw := range roleKeywords {
		if strings.Contains(lower, kw) {
			roles = append(roles, kw)
		}
	}

	return domain.ResumeFeatures{
		Skills:     skills,
		Education:  degrees,
		Experience: experience,
		Projects:   projects,
		Roles:      roles,
	}
}

// Hash computes the canonical-JSON sha256 fingerprint of a feature set.
// Feature lists are sorted first so equal content always hashes equal.
func Hash(f domain.ResumeFeatures) string {
	canonical := struct {
		Skills     []string `json:"skills"`
		Education  []string `json:"education"`
		Experience string   `json:"experience"`
		Projects   []string `json:"projects"`
		Roles      []string `json:"roles"`
	}{
		Skills:     sortedCopy(flattenSkills(f.Skills)),
		Education:  sortedCopy(f.Education),
		Experience: f.Experience,
		Projects:   sortedCopy(f.Projects),
		Roles:      sortedCopy(f.Roles),
	}
	b, _ := json.Marshal(canonical)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

func flattenSkills(skills map[string][]string) []string {
	var out []string
	for _, list := range skills {
		out = append(out, list...)
	}
	return out
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func splitSentences(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
}
