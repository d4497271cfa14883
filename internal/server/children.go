package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thuthancs/inline/internal/notion"
)

// ChildrenHandler lists the child pages and databases of a parent page.
type ChildrenHandler struct {
	gateway *Gateway
}

// NewChildrenHandler registers GET /children/:pageId.
func NewChildrenHandler(r *gin.Engine, gateway *Gateway) *ChildrenHandler {
	handler := &ChildrenHandler{gateway: gateway}
	r.GET("/children/:pageId", handler.List)
	return handler
}

// List returns the direct child pages and child databases of the page.
// Other block types are dropped.
func (h *ChildrenHandler) List(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	resp, err := client.ListBlockChildren(c.Request.Context(), c.Param("pageId"))
	if err != nil {
		respondUpstreamError(c, err, "Failed to fetch children")
		return
	}

	children := lo.FilterMap(resp.Results, func(block notion.ChildBlock, _ int) (SearchItem, bool) {
		switch block.Type {
		case "child_database":
			return SearchItem{ID: block.ID, Type: "database", Title: childTitle(block.ChildDatabase)}, true
		case "child_page":
			return SearchItem{ID: block.ID, Type: "page", Title: childTitle(block.ChildPage)}, true
		}
		return SearchItem{}, false
	})

	c.JSON(http.StatusOK, children)
}

func childTitle(ct *notion.ChildTitle) string {
	if ct == nil || ct.Title == "" {
		return notion.Untitled
	}
	return ct.Title
}
