package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vidhub/internal/model"
	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

func TestGetRelatedEmptyVideoID(t *testing.T) {
	svc := NewRelatedService(&fakeSimilarity{}, &fakeTranscripts{}, 16, time.Minute)
	_, err := svc.GetRelated(context.Background(), "", 5)
	require.ErrorIs(t, err, appErr.ErrInvalid)
}

func TestGetRelatedCachesResult(t *testing.T) {
	similarity := &fakeSimilarity{matches: []model.SimilarityMatch{
		{VideoID: "v2", Score: 0.8, Content: "related chunk"},
	}}
	transcripts := &fakeTranscripts{content: map[string]string{"v1": "a transcript"}}
	svc := NewRelatedService(similarity, transcripts, 16, time.Minute)

	first, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, similarity.calls)
	require.Equal(t, 1, transcripts.calls)
}

func TestGetRelatedDifferentLimitMissesCache(t *testing.T) {
	similarity := &fakeSimilarity{matches: []model.SimilarityMatch{
		{VideoID: "v2", Score: 0.8},
	}}
	transcripts := &fakeTranscripts{content: map[string]string{"v1": "a transcript"}}
	svc := NewRelatedService(similarity, transcripts, 16, time.Minute)

	_, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	_, err = svc.GetRelated(context.Background(), "v1", 7)
	require.NoError(t, err)
	require.Equal(t, 2, similarity.calls)
}

func TestGetRelatedNoTranscript(t *testing.T) {
	similarity := &fakeSimilarity{}
	svc := NewRelatedService(similarity, &fakeTranscripts{content: map[string]string{}}, 16, time.Minute)

	matches, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Empty(t, matches)
	require.Equal(t, 0, similarity.calls)
}

func TestGetRelatedQueryErrorDowngrades(t *testing.T) {
	similarity := &fakeSimilarity{err: fmt.Errorf("ann offline")}
	transcripts := &fakeTranscripts{content: map[string]string{"v1": "a transcript"}}
	svc := NewRelatedService(similarity, transcripts, 16, time.Minute)

	matches, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Empty(t, matches)

	// Failures are not cached; the next call retries the index.
	_, err = svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Equal(t, 2, similarity.calls)
}

func TestInvalidateDropsAllLimits(t *testing.T) {
	similarity := &fakeSimilarity{matches: []model.SimilarityMatch{{VideoID: "v2", Score: 0.8}}}
	transcripts := &fakeTranscripts{content: map[string]string{"v1": "a transcript"}}
	svc := NewRelatedService(similarity, transcripts, 16, time.Minute)

	_, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	_, err = svc.GetRelated(context.Background(), "v1", 7)
	require.NoError(t, err)

	svc.Invalidate("v1")

	_, err = svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Equal(t, 3, similarity.calls)
}

func TestGetRelatedCachedCopyIsIsolated(t *testing.T) {
	similarity := &fakeSimilarity{matches: []model.SimilarityMatch{{VideoID: "v2", Score: 0.8}}}
	transcripts := &fakeTranscripts{content: map[string]string{"v1": "a transcript"}}
	svc := NewRelatedService(similarity, transcripts, 16, time.Minute)

	first, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	first[0].VideoID = "mutated"

	second, err := svc.GetRelated(context.Background(), "v1", 5)
	require.NoError(t, err)
	require.Equal(t, "v2", second[0].VideoID)
}
