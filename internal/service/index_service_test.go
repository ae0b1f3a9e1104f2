package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

type fakeDocEmbedder struct {
	storedVideo string
	storedText  string
	storedTags  []string
	deleted     []string
	chunks      int
}

func (f *fakeDocEmbedder) EmbedAndStore(ctx context.Context, videoID, transcript, title, description string, tags []string) (int, error) {
	f.storedVideo = videoID
	f.storedText = transcript
	f.storedTags = tags
	return f.chunks, nil
}

func (f *fakeDocEmbedder) DeleteAll(ctx context.Context, videoID string) error {
	f.deleted = append(f.deleted, videoID)
	return nil
}

type fakeFTS struct {
	upsertedVideo string
	upsertedTitle string
	upsertedBody  string
	deleted       []string
}

func (f *fakeFTS) Upsert(ctx context.Context, videoID, title, body string) error {
	f.upsertedVideo = videoID
	f.upsertedTitle = title
	f.upsertedBody = body
	return nil
}

func (f *fakeFTS) Delete(ctx context.Context, videoID string) error {
	f.deleted = append(f.deleted, videoID)
	return nil
}

type fakeTagNames struct {
	names []string
}

func (f *fakeTagNames) ListNamesByVideo(ctx context.Context, videoID string) ([]string, error) {
	return f.names, nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) Invalidate(videoID string) {
	f.invalidated = append(f.invalidated, videoID)
}

func TestReindexRebuildsBothIndexes(t *testing.T) {
	embedder := &fakeDocEmbedder{chunks: 3}
	fts := &fakeFTS{}
	invalidator := &fakeInvalidator{}
	svc := NewIndexService(
		&fakeVideos{},
		&fakeTranscripts{content: map[string]string{"v1": "spoken words"}},
		&fakeTagNames{names: []string{"go", "docker"}},
		embedder,
		fts,
		invalidator,
	)

	chunks, err := svc.Reindex(context.Background(), "v1")
	require.NoError(t, err)
	require.Equal(t, 3, chunks)
	require.Equal(t, "v1", embedder.storedVideo)
	require.Equal(t, "spoken words", embedder.storedText)
	require.Equal(t, []string{"go", "docker"}, embedder.storedTags)
	require.Equal(t, "v1", fts.upsertedVideo)
	require.Contains(t, fts.upsertedBody, "spoken words")
	require.Contains(t, fts.upsertedBody, "go docker")
	require.Equal(t, []string{"v1"}, invalidator.invalidated)
}

func TestReindexWithoutTranscriptSkipsEmbedding(t *testing.T) {
	embedder := &fakeDocEmbedder{}
	fts := &fakeFTS{}
	svc := NewIndexService(
		&fakeVideos{},
		&fakeTranscripts{content: map[string]string{}},
		&fakeTagNames{},
		embedder,
		fts,
		&fakeInvalidator{},
	)

	chunks, err := svc.Reindex(context.Background(), "v1")
	require.NoError(t, err)
	require.Equal(t, 0, chunks)
	require.Empty(t, embedder.storedVideo)
	require.Equal(t, "v1", fts.upsertedVideo)
}

func TestReindexUnknownVideo(t *testing.T) {
	svc := NewIndexService(
		&fakeVideos{missing: map[string]bool{"gone": true}},
		&fakeTranscripts{content: map[string]string{}},
		&fakeTagNames{},
		&fakeDocEmbedder{},
		&fakeFTS{},
		&fakeInvalidator{},
	)
	_, err := svc.Reindex(context.Background(), "gone")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestDeleteIndexSweepsEverything(t *testing.T) {
	embedder := &fakeDocEmbedder{}
	fts := &fakeFTS{}
	invalidator := &fakeInvalidator{}
	svc := NewIndexService(
		&fakeVideos{},
		&fakeTranscripts{content: map[string]string{}},
		&fakeTagNames{},
		embedder,
		fts,
		invalidator,
	)

	require.NoError(t, svc.DeleteIndex(context.Background(), "v1"))
	require.Equal(t, []string{"v1"}, embedder.deleted)
	require.Equal(t, []string{"v1"}, fts.deleted)
	require.Equal(t, []string{"v1"}, invalidator.invalidated)
}

func TestMarkdownToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text", in: "just plain words", want: "just plain words"},
		{name: "heading and emphasis", in: "# Title\n\nSome **bold** and *italic* text", want: "Title Some bold and italic text"},
		{name: "link keeps label", in: "see [the docs](https://example.com) here", want: "see the docs here"},
		{name: "list items", in: "- one\n- two\n- three", want: "one two three"},
		{name: "inline code", in: "run `go test` locally", want: "run go test locally"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, markdownToText(tt.in))
		})
	}
}
