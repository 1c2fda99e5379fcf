package fingerprint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/ai-hiring-evaluator/internal/domain"
)

type stubStore struct {
	items     []domain.Fingerprint
	listErr   error
	appendErr error
}

func (s *stubStore) List(_ context.Context) ([]domain.Fingerprint, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.items, nil
}

func (s *stubStore) Append(_ context.Context, fp domain.Fingerprint) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.items = append(s.items, fp)
	return nil
}

func TestSimilarityIdenticalFeatures(t *testing.T) {
	t.Parallel()

	f := ExtractFeatures(sampleText)
	assert.InDelta(t, 1.0, Similarity(f, f), 0.0001)
}

func TestSimilarityDisjointFeatures(t *testing.T) {
	t.Parallel()

	a := ExtractFeatures(sampleText)
	b := ExtractFeatures("Marketing manager focused on brand campaigns and events for 3 years experience.")
	sim := Similarity(a, b)
	assert.Less(t, sim, 0.5)
	assert.GreaterOrEqual(t, sim, 0.0)
}

func TestSimilaritySkipsDimensionsEmptyOnBothSides(t *testing.T) {
	t.Parallel()

	// only the experience dimension has content on either side
	a := domain.ResumeFeatures{Experience: "Not specified"}
	b := domain.ResumeFeatures{Experience: "Not specified"}
	assert.InDelta(t, 0.15, Similarity(a, b), 0.0001)
}

func TestSimilarityExperienceAlwaysCounted(t *testing.T) {
	t.Parallel()

	a := domain.ResumeFeatures{Experience: "5", Roles: []string{"engineer"}}
	b := domain.ResumeFeatures{Experience: "5", Roles: []string{"manager"}}
	// experience matches exactly, roles are disjoint
	assert.InDelta(t, 0.15, Similarity(a, b), 0.0001)
}

func TestCheckUniqueAcceptsFirst(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	engine := NewEngine(store, 0.75)

	res, err := engine.CheckUnique(context.Background(), sampleText)
	require.NoError(t, err)
	assert.True(t, res.Unique)
	assert.Zero(t, res.MaxSimilarity)
	assert.NotEmpty(t, res.Hash)
	assert.Len(t, store.items, 1)
}

func TestCheckUniqueRejectsDuplicate(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	engine := NewEngine(store, 0.75)

	first, err := engine.CheckUnique(context.Background(), sampleText)
	require.NoError(t, err)
	require.True(t, first.Unique)

	second, err := engine.CheckUnique(context.Background(), sampleText)
	require.NoError(t, err)
	assert.False(t, second.Unique)
	assert.GreaterOrEqual(t, second.MaxSimilarity, 0.75)
	assert.Contains(t, second.Message, "too similar to an existing resume")
	assert.Len(t, store.items, 1, "rejected resumes must not enter the corpus")
}

func TestCheckUniqueAcceptsDistinct(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	engine := NewEngine(store, 0.75)

	_, err := engine.CheckUnique(context.Background(), sampleText)
	require.NoError(t, err)

	other := `Marketing manager with 3 years experience running brand campaigns.
Created content strategies for social channels and events.
Education: MBA.`
	res, err := engine.CheckUnique(context.Background(), other)
	require.NoError(t, err)
	assert.True(t, res.Unique)
	assert.Less(t, res.MaxSimilarity, 0.75)
	assert.Len(t, store.items, 2)
}

func TestCheckUniqueFailsOpenOnStoreError(t *testing.T) {
	t.Parallel()

	store := &stubStore{listErr: errors.New("connection refused")}
	engine := NewEngine(store, 0.75)

	res, err := engine.CheckUnique(context.Background(), sampleText)
	require.NoError(t, err)
	assert.True(t, res.Unique)
	assert.Len(t, store.items, 1, "fail-open still records the fingerprint")
}

func TestCheckUniqueAppendErrorDoesNotBlock(t *testing.T) {
	t.Parallel()

	store := &stubStore{appendErr: errors.New("insert failed")}
	engine := NewEngine(store, 0.75)

	res, err := engine.CheckUnique(context.Background(), sampleText)
	require.NoError(t, err)
	assert.True(t, res.Unique)
}

func TestRejectionMessageNamesDimensions(t *testing.T) {
	t.Parallel()

	msg := rejectionMessage(0.84)
	assert.Contains(t, msg, "84.0%")
	assert.Contains(t, msg, "career insights and professional roles")
	assert.Contains(t, msg, "technical skills and expertise areas")
	assert.Contains(t, msg, "projects and accomplishments")
}
