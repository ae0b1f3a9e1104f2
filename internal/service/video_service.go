package service

import (
	"context"

	"github.com/xxxsen/vidhub/internal/model"
	appErr "github.com/xxxsen/vidhub/internal/pkg/errors"
)

// VideoLister pages through ready videos.
type VideoLister interface {
	ListReady(ctx context.Context, limit, offset uint) ([]model.Video, error)
}

// VideoService serves the plain catalog reads that do not involve search.
type VideoService struct {
	videos   VideoReader
	lister   VideoLister
	tags     TagReader
	chapters ChapterReader
}

func NewVideoService(videos VideoReader, lister VideoLister, tags TagReader, chapters ChapterReader) *VideoService {
	return &VideoService{videos: videos, lister: lister, tags: tags, chapters: chapters}
}

func (s *VideoService) Get(ctx context.Context, videoID string) (*model.VideoDetail, error) {
	if videoID == "" {
		return nil, appErr.ErrInvalid
	}
	video, err := s.videos.GetReady(ctx, videoID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	chapters, err := s.chapters.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return &model.VideoDetail{Video: video, Tags: tags, Chapters: chapters}, nil
}

func (s *VideoService) List(ctx context.Context, limit, offset int) ([]model.Video, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.lister.ListReady(ctx, uint(limit), uint(offset))
}
