package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	name string
	vec  []float32
	err  error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return s.vec, s.err
}

func (s *stubEmbedder) ModelName() string {
	return s.name
}

func TestGroupEmbedderFailover(t *testing.T) {
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "primary", Embedder: &stubEmbedder{name: "primary", err: fmt.Errorf("quota exceeded")}},
		{Name: "secondary", Embedder: &stubEmbedder{name: "secondary", vec: []float32{0.1, 0.2}}},
	})
	vec, err := group.Embed(context.Background(), "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.2}, vec)
	require.Equal(t, "primary|secondary", group.ModelName())
}

func TestGroupEmbedderAllFail(t *testing.T) {
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "only", Embedder: &stubEmbedder{name: "only", err: fmt.Errorf("boom")}},
	})
	_, err := group.Embed(context.Background(), "hello", "RETRIEVAL_QUERY")
	require.Error(t, err)
}

func TestGroupEmbedderEmpty(t *testing.T) {
	require.Nil(t, NewGroupEmbedder(nil))
}
