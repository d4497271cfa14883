package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/thuthancs/inline/internal/notion"
)

// DataSourceHandler serves database data-source listing and schema
// retrieval.
type DataSourceHandler struct {
	gateway *Gateway
}

// NewDataSourceHandler registers the data source routes.
func NewDataSourceHandler(r *gin.Engine, gateway *Gateway) *DataSourceHandler {
	handler := &DataSourceHandler{gateway: gateway}
	r.GET("/data-sources/:databaseId", handler.ListForDatabase)
	r.GET("/data-source/:dataSourceId", handler.Retrieve)
	return handler
}

// ListForDatabase returns the data sources of a database as SearchItems.
func (h *DataSourceHandler) ListForDatabase(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	db, err := client.RetrieveDatabase(c.Request.Context(), c.Param("databaseId"))
	if err != nil {
		respondUpstreamError(c, err, "Failed to fetch data sources")
		return
	}

	items := lo.Map(db.DataSources, func(ds notion.DataSourceRef, _ int) SearchItem {
		title := ds.Name
		if title == "" {
			title = "(Untitled data source)"
		}
		return SearchItem{ID: ds.ID, Type: "data_source", Title: title}
	})

	c.JSON(http.StatusOK, items)
}

// Retrieve forwards a data source schema verbatim; the popup's property form
// is built from it.
func (h *DataSourceHandler) Retrieve(c *gin.Context) {
	client, _, ok := h.gateway.ClientFor(c)
	if !ok {
		return
	}

	raw, err := client.RetrieveDataSource(c.Request.Context(), c.Param("dataSourceId"))
	if err != nil {
		respondUpstreamError(c, err, "Failed to retrieve data source")
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
