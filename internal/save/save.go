// Package save assembles Notion blocks from captured content and appends
// them to a target page.
package save

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/thuthancs/inline/internal/ingest"
	"github.com/thuthancs/inline/internal/log"
	"github.com/thuthancs/inline/internal/notion"
)

// ErrMissingContent is returned when a save carries neither text nor images.
var ErrMissingContent = errors.New("missing content or images")

// ErrNoBlockID is returned when an append response yields no block id to
// attach a comment to.
var ErrNoBlockID = errors.New("append response contained no block id")

// ImageUploader pushes one external image into Notion. *ingest.Uploader is
// the production implementation.
type ImageUploader interface {
	Upload(ctx context.Context, imageURL string) (*ingest.Result, error)
}

// Service saves captured content to Notion pages on behalf of one session.
type Service struct {
	client   *notion.Client
	uploader ImageUploader
}

// NewService builds a Service bound to an authenticated client.
func NewService(client *notion.Client, uploader ImageUploader) *Service {
	return &Service{client: client, uploader: uploader}
}

// buildBlocks assembles the ordered block list: the quote first, then one
// image block per URL. Images upload concurrently; a failed upload degrades
// that image to an external link instead of failing the save.
func (s *Service) buildBlocks(ctx context.Context, text string, images []string) []notion.Block {
	imageBlocks := make([]notion.Block, len(images))
	var wg sync.WaitGroup
	for i, imageURL := range images {
		wg.Add(1)
		go func(i int, imageURL string) {
			defer wg.Done()
			res, err := s.uploader.Upload(ctx, imageURL)
			if err != nil || res.UploadID == "" {
				log.Debug(log.Basic, "[SAVE] image upload failed, linking externally: %s: %v\n", imageURL, err)
				imageBlocks[i] = notion.ExternalImageBlock(imageURL)
				return
			}
			imageBlocks[i] = notion.UploadedImageBlock(res.UploadID)
		}(i, imageURL)
	}
	wg.Wait()

	var blocks []notion.Block
	if text != "" {
		blocks = append(blocks, notion.QuoteBlock(text))
	}
	return append(blocks, imageBlocks...)
}

// SaveContent appends the captured text and images to the target page in one
// call and returns the raw append response.
func (s *Service) SaveContent(ctx context.Context, pageID, text string, images []string) (*notion.AppendResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(images) == 0 {
		return nil, ErrMissingContent
	}

	log.Debug(log.Basic, "[SAVE] page %s: %d chars, %d images\n", pageID, len(text), len(images))
	blocks := s.buildBlocks(ctx, text, images)
	resp, err := s.client.AppendBlockChildren(ctx, pageID, blocks)
	if err != nil {
		return nil, err
	}
	log.Debug(log.Detailed, "[SAVE] appended %d blocks\n", len(resp.Results))
	return resp, nil
}

// SaveContentWithComment appends the text as a quote and attaches a comment
// to the created block. The comment is never created without a block id.
func (s *Service) SaveContentWithComment(ctx context.Context, pageID, text, commentText string) (string, error) {
	resp, err := s.client.AppendBlockChildren(ctx, pageID, []notion.Block{notion.QuoteBlock(text)})
	if err != nil {
		return "", err
	}

	blockID := resp.FirstBlockID()
	if blockID == "" {
		return "", ErrNoBlockID
	}

	if _, err := s.client.CreateComment(ctx, blockID, commentText); err != nil {
		return "", err
	}
	log.Debug(log.Basic, "[SAVE+COMMENT] block %s commented\n", blockID)
	return blockID, nil
}

// AddComment creates a comment parented to the given block.
func (s *Service) AddComment(ctx context.Context, blockID, text string) (*notion.Comment, error) {
	return s.client.CreateComment(ctx, blockID, text)
}
