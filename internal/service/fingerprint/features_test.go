package fingerprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `Senior Software Engineer with 5+ years of experience.
Developed a payments platform in Go and Python backed by PostgreSQL and Redis.
Built CI pipelines with Docker and Kubernetes on AWS.
Led a team of four engineers on a fraud detection project.
Education: Bachelor of Computer Science, Master of Data Science.
Strong communication and leadership skills.`

func TestExtractFeaturesSkills(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures(sampleText)
	assert.Contains(t, f.Skills["programming"], "go")
	assert.Contains(t, f.Skills["programming"], "python")
	assert.Contains(t, f.Skills["databases"], "postgresql")
	assert.Contains(t, f.Skills["databases"], "redis")
	assert.Contains(t, f.Skills["cloud"], "aws")
	assert.Contains(t, f.Skills["cloud"], "docker")
	assert.Contains(t, f.Skills["soft_skills"], "communication")
	assert.NotContains(t, f.Skills, "data_science")
}

func TestExtractFeaturesEducationDeduped(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures("Bachelor of Arts. Bachelor of Science. Master of Engineering.")
	assert.Equal(t, []string{"bachelor", "master"}, f.Education)
}

func TestExtractFeaturesExperienceYears(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures(sampleText)
	assert.Equal(t, "5", f.Experience)

	f = ExtractFeatures("12 years of experience shipping software")
	assert.Equal(t, "12", f.Experience)

	f = ExtractFeatures("no years mentioned")
	assert.Equal(t, "Not specified", f.Experience)
}

func TestExtractFeaturesProjects(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures(sampleText)
	require.NotEmpty(t, f.Projects)
	for _, p := range f.Projects {
		assert.Equal(t, strings.ToLower(p), p, "projects are normalized to lowercase")
		assert.LessOrEqual(t, len(p), 100)
	}
}

func TestExtractFeaturesProjectsCapped(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("Developed another internal service for the platform team. ")
	}
	f := ExtractFeatures(b.String())
	assert.Len(t, f.Projects, 5)
}

func TestExtractFeaturesRoles(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures(sampleText)
	assert.Contains(t, f.Roles, "engineer")
	assert.Contains(t, f.Roles, "senior")
	assert.Contains(t, f.Roles, "lead")
	assert.NotContains(t, f.Roles, "junior")
}

func TestExtractFeaturesEmptyText(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures("")
	assert.Empty(t, f.Skills)
	assert.Empty(t, f.Education)
	assert.Equal(t, "Not specified", f.Experience)
	assert.Empty(t, f.Projects)
	assert.Empty(t, f.Roles)
}

func TestHashDeterministic(t *testing.T) {
	t.Parallel()

	a := ExtractFeatures(sampleText)
	b := ExtractFeatures(sampleText)
	assert.Equal(t, Hash(a), Hash(b))
	assert.Len(t, Hash(a), 64)
}

func TestHashOrderIndependent(t *testing.T) {
	t.Parallel()

	a := ExtractFeatures(sampleText)
	b := ExtractFeatures(sampleText)
	for category, list := range b.Skills {
		reversed := make([]string, 0, len(list))
		for i := len(list) - 1; i >= 0; i-- {
			reversed = append(reversed, list[i])
		}
		b.Skills[category] = reversed
	}
	assert.Equal(t, Hash(a), Hash(b))
}

func TestHashDistinguishesContent(t *testing.T) {
	t.Parallel()

	a := ExtractFeatures(sampleText)
	b := ExtractFeatures("Junior analyst with 1 year experience in Excel.")
	assert.NotEqual(t, Hash(a), Hash(b))
}
