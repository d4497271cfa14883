package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thuthancs/inline/internal/ingest"
	"github.com/thuthancs/inline/internal/notion"
	"github.com/thuthancs/inline/internal/save"
)

// SaveHandler serves the content save and comment routes.
type SaveHandler struct {
	gateway *Gateway

	// newUploader builds the image uploader for one request's client.
	// Swappable in tests.
	newUploader func(*notion.Client) save.ImageUploader
}

// NewSaveHandler registers /save, /save-with-comment, and /comment.
func NewSaveHandler(r *gin.Engine, gateway *Gateway) *SaveHandler {
	handler := &SaveHandler{
		gateway: gateway,
		newUploader: func(client *notion.Client) save.ImageUploader {
			return ingest.NewUploader(client)
		},
	}
	r.PATCH("/save", handler.Save)
	r.POST("/save-with-comment", handler.SaveWithComment)
	r.POST("/comment", handler.Comment)
	return handler
}

func (h *SaveHandler) service(client *notion.Client) *save.Service {
	return save.NewService(client, h.newUploader(client))
}

type saveRequest struct {
	PageID  string   `json:"page_id"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// Save appends captured text and images to the target page and forwards the
// Notion append response verbatim.
func (h *SaveHandler) Save(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	var req saveRequest
	_ = c.ShouldBindJSON(&req)
	req.PageID = strings.TrimSpace(req.PageID)
	req.Content = strings.TrimSpace(req.Content)

	if req.PageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing page_id"})
		return
	}

	resp, err := h.service(client).SaveContent(c.Request.Context(), req.PageID, req.Content, req.Images)
	if errors.Is(err, save.ErrMissingContent) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing content or images"})
		return
	}
	if err != nil {
		respondUpstreamError(c, err, "Failed to save content")
		return
	}
	c.Data(http.StatusOK, "application/json", resp.Raw)
}

type saveWithCommentRequest struct {
	PageID      string `json:"page_id"`
	Content     string `json:"content"`
	CommentText string `json:"comment_text"`
}

// SaveWithComment appends the text and attaches a comment to the created
// block in one round trip.
func (h *SaveHandler) SaveWithComment(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	var req saveWithCommentRequest
	_ = c.ShouldBindJSON(&req)
	req.PageID = strings.TrimSpace(req.PageID)
	req.Content = strings.TrimSpace(req.Content)
	req.CommentText = strings.TrimSpace(req.CommentText)

	if req.PageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing page_id"})
		return
	}
	if req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing content"})
		return
	}
	if req.CommentText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing comment_text"})
		return
	}

	blockID, err := h.service(client).SaveContentWithComment(c.Request.Context(), req.PageID, req.Content, req.CommentText)
	if err != nil {
		respondUpstreamError(c, err, "Failed to save with comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "blockId": blockID})
}

type commentRequest struct {
	BlockID     string `json:"block_id"`
	CommentText string `json:"comment_text"`
}

// Comment creates a standalone comment on an existing block.
func (h *SaveHandler) Comment(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	var req commentRequest
	_ = c.ShouldBindJSON(&req)
	req.BlockID = strings.TrimSpace(req.BlockID)
	req.CommentText = strings.TrimSpace(req.CommentText)

	if req.BlockID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "block_id is required"})
		return
	}
	if req.CommentText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment_text is required"})
		return
	}

	comment, err := h.service(client).AddComment(c.Request.Context(), req.BlockID, req.CommentText)
	if err != nil {
		respondUpstreamError(c, err, "Failed to add comment")
		return
	}
	c.Data(http.StatusOK, "application/json", comment.Raw)
}
