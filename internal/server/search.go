package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/thuthancs/inline/internal/log"
	"github.com/thuthancs/inline/internal/notion"
)

// SearchItem is the shape the extension popup renders: one save target
// candidate.
type SearchItem struct {
	ID    string  `json:"id,omitempty"`
	Type  string  `json:"type"`
	Title string  `json:"title"`
	URL   *string `json:"url"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SearchHandler serves workspace search.
type SearchHandler struct {
	gateway *Gateway
}

// NewSearchHandler registers POST /search.
func NewSearchHandler(r *gin.Engine, gateway *Gateway) *SearchHandler {
	handler := &SearchHandler{gateway: gateway}
	r.POST("/search", handler.Search)
	return handler
}

// Search queries Notion and shapes the results into SearchItems. Pages are
// re-retrieved for their full title property and URL; databases and data
// sources come back directly from the search response.
func (h *SearchHandler) Search(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	var body struct {
		Query string `json:"query"`
	}
	_ = c.ShouldBindJSON(&body)
	query := strings.TrimSpace(body.Query)

	resp, err := client.Search(c.Request.Context(), query)
	if err != nil {
		respondUpstreamError(c, err, "Notion search failed")
		return
	}
	log.Debug(log.Detailed, "[SEARCH] %q returned %d items\n", query, len(resp.Results))

	items := make([]SearchItem, 0, len(resp.Results))
	for _, result := range resp.Results {
		switch result.Object {
		case "page":
			page, err := client.RetrievePage(c.Request.Context(), result.ID)
			if err != nil {
				respondUpstreamError(c, err, "Notion search failed")
				return
			}
			items = append(items, SearchItem{
				ID:    result.ID,
				Type:  "page",
				Title: notion.PageTitle(page),
				URL:   strPtr(page.URL),
			})
		case "database", "data_source":
			items = append(items, SearchItem{
				ID:    result.ID,
				Type:  result.Object,
				Title: notion.ResultTitle(result),
				URL:   strPtr(result.URL),
			})
		default:
			items = append(items, SearchItem{
				Type:  result.Object,
				Title: "(Unsupported object)",
				URL:   strPtr(result.URL),
			})
		}
	}

	c.JSON(http.StatusOK, items)
}
