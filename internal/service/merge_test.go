package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/vidhub/internal/model"
)

var testWeights = MergeWeights{
	LexicalBoost: 1.5,
	SemanticFold: 0.5,
	TagFold:      0.3,
	VectorFold:   0.7,
}

func TestMergeMatchesLexicalSeedBoost(t *testing.T) {
	lexical := []model.SearchMatch{{VideoID: "v1", Score: 2.0, Strategy: model.StrategyLexical}}
	out := mergeMatches(lexical, nil, nil, nil, testWeights, 10)
	require.Len(t, out, 1)
	require.InDelta(t, 3.0, out[0].Score, 1e-9)
	require.Equal(t, model.StrategyLexical, out[0].Strategy)
}

func TestMergeMatchesCrossStrategyBoost(t *testing.T) {
	lexical := []model.SearchMatch{{VideoID: "v1", Score: 2.0, Strategy: model.StrategyLexical}}
	vector := []model.SearchMatch{
		{VideoID: "v1", Score: 0.9, Strategy: model.StrategyVector},
		{VideoID: "v2", Score: 0.9, Strategy: model.StrategyVector},
	}
	out := mergeMatches(lexical, nil, nil, vector, testWeights, 10)
	require.Len(t, out, 2)
	// v1 appears in two strategies so it collects the boost and the label.
	require.Equal(t, "v1", out[0].VideoID)
	require.InDelta(t, 3.0+0.7*0.9, out[0].Score, 1e-9)
	require.Equal(t, model.StrategyCombined, out[0].Strategy)
	// v2 came from a single strategy and keeps its own score and label.
	require.Equal(t, "v2", out[1].VideoID)
	require.InDelta(t, 0.9, out[1].Score, 1e-9)
	require.Equal(t, model.StrategyVector, out[1].Strategy)
}

func TestMergeMatchesAgreementOutranksSingleSignal(t *testing.T) {
	semantic := []model.SearchMatch{
		{VideoID: "alone", Score: 10, Strategy: model.StrategySemantic},
		{VideoID: "agreed", Score: 10, Strategy: model.StrategySemantic},
	}
	tag := []model.SearchMatch{{VideoID: "agreed", Score: 3, Strategy: model.StrategyTag}}
	out := mergeMatches(nil, semantic, tag, nil, testWeights, 10)
	require.Len(t, out, 2)
	require.Equal(t, "agreed", out[0].VideoID)
	require.InDelta(t, 10+0.3*3, out[0].Score, 1e-9)
}

func TestMergeMatchesSortAndTieBreak(t *testing.T) {
	semantic := []model.SearchMatch{
		{VideoID: "b", Score: 5, Strategy: model.StrategySemantic},
		{VideoID: "a", Score: 5, Strategy: model.StrategySemantic},
		{VideoID: "c", Score: 7, Strategy: model.StrategySemantic},
	}
	out := mergeMatches(nil, semantic, nil, nil, testWeights, 10)
	require.Equal(t, []string{"c", "a", "b"}, []string{out[0].VideoID, out[1].VideoID, out[2].VideoID})
}

func TestMergeMatchesLimit(t *testing.T) {
	semantic := []model.SearchMatch{
		{VideoID: "a", Score: 3},
		{VideoID: "b", Score: 2},
		{VideoID: "c", Score: 1},
	}
	out := mergeMatches(nil, semantic, nil, nil, testWeights, 2)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].VideoID)
}

func TestMergeMatchesKeepsFirstExcerpt(t *testing.T) {
	lexical := []model.SearchMatch{{VideoID: "v1", Score: 1}}
	vector := []model.SearchMatch{{VideoID: "v1", Score: 0.8, Excerpt: "chunk text"}}
	out := mergeMatches(lexical, nil, nil, vector, testWeights, 10)
	require.Len(t, out, 1)
	require.Equal(t, "chunk text", out[0].Excerpt)
}
