package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// PagesHandler creates pages under a chosen parent.
type PagesHandler struct {
	gateway *Gateway
}

// NewPagesHandler registers POST /create-page.
func NewPagesHandler(r *gin.Engine, gateway *Gateway) *PagesHandler {
	handler := &PagesHandler{gateway: gateway}
	r.POST("/create-page", handler.Create)
	return handler
}

type createPageRequest struct {
	ParentID   string         `json:"parent_id"`
	ParentType string         `json:"parent_type"`
	Title      string         `json:"title"`
	Properties map[string]any `json:"properties"`
}

func titleProperty(title string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"type": "text", "text": map[string]any{"content": title}},
		},
	}
}

// Create makes a child page under a page, database, or data source parent.
// Data source parents accept caller-supplied properties for schema fields,
// but any property declaring a title value is filled with the page title so
// a row cannot be created with a mismatched name.
func (h *PagesHandler) Create(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	var req createPageRequest
	_ = c.ShouldBindJSON(&req)
	req.ParentID = strings.TrimSpace(req.ParentID)
	req.Title = strings.TrimSpace(req.Title)
	parentType := strings.TrimSpace(req.ParentType)
	if parentType == "" {
		parentType = "page"
	}

	if req.ParentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parent_id is required"})
		return
	}
	if req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	var parent map[string]any
	var properties map[string]any

	switch parentType {
	case "data_source":
		parent = map[string]any{"data_source_id": req.ParentID}
		if len(req.Properties) > 0 {
			properties = req.Properties
			for name, value := range properties {
				if prop, ok := value.(map[string]any); ok {
					if _, isTitle := prop["title"]; isTitle {
						properties[name] = titleProperty(req.Title)
					}
				}
			}
		} else {
			properties = map[string]any{"Name": titleProperty(req.Title)}
		}
	case "database":
		parent = map[string]any{"database_id": req.ParentID}
		properties = map[string]any{"Name": titleProperty(req.Title)}
	default:
		parent = map[string]any{"page_id": req.ParentID}
		properties = map[string]any{"title": titleProperty(req.Title)}
	}

	raw, err := client.CreatePage(c.Request.Context(), parent, properties)
	if err != nil {
		respondUpstreamError(c, err, "Failed to create page")
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
