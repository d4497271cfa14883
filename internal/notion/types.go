package notion

import "encoding/json"

// RichText is one segment of Notion rich text. Requests populate Text;
// responses populate PlainText.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the text payload of a rich text segment.
type TextContent struct {
	Content string `json:"content"`
}

// NewRichText builds a single-segment rich text array from plain text.
func NewRichText(content string) []RichText {
	return []RichText{{Type: "text", Text: &TextContent{Content: content}}}
}

// Page is a Notion page, as returned by retrieve and search.
type Page struct {
	Object     string                  `json:"object"`
	ID         string                  `json:"id"`
	URL        string                  `json:"url,omitempty"`
	Properties map[string]PageProperty `json:"properties,omitempty"`
}

// PageProperty is a page property value. Only the title variant is decoded;
// other property types are ignored.
type PageProperty struct {
	Type  string     `json:"type"`
	Title []RichText `json:"title,omitempty"`
}

// Database is a Notion database, including its data sources (API version
// 2025-09-03 splits databases into one or more data sources).
type Database struct {
	Object      string          `json:"object"`
	ID          string          `json:"id"`
	URL         string          `json:"url,omitempty"`
	Title       []RichText      `json:"title,omitempty"`
	DataSources []DataSourceRef `json:"data_sources,omitempty"`
}

// DataSourceRef is a data source listed under a database.
type DataSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// SearchResult is one item from the search endpoint. Pages carry Properties;
// databases and data sources carry a top-level Title.
type SearchResult struct {
	Object     string                  `json:"object"`
	ID         string                  `json:"id"`
	URL        string                  `json:"url,omitempty"`
	Title      []RichText              `json:"title,omitempty"`
	Properties map[string]PageProperty `json:"properties,omitempty"`
}

// SearchResponse is the search endpoint's result page.
type SearchResponse struct {
	Results    []SearchResult `json:"results"`
	HasMore    bool           `json:"has_more"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ChildBlock is a block from a children listing; only the child page and
// child database variants matter to us.
type ChildBlock struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	ChildPage     *ChildTitle `json:"child_page,omitempty"`
	ChildDatabase *ChildTitle `json:"child_database,omitempty"`
}

// ChildTitle is the title payload of a child page or child database block.
type ChildTitle struct {
	Title string `json:"title"`
}

// BlockChildrenList is the children listing of one block or page.
type BlockChildrenList struct {
	Results []ChildBlock `json:"results"`
	HasMore bool         `json:"has_more"`
}

// BlockRef identifies one created block in an append response.
type BlockRef struct {
	ID string `json:"id"`
}

// AppendResponse is the result of appending children to a block. Raw
// preserves the upstream body verbatim for passthrough responses.
type AppendResponse struct {
	Results []BlockRef      `json:"results"`
	Raw     json.RawMessage `json:"-"`
}

// FirstBlockID returns the id of the first created block, or "" if the
// append yielded none.
func (r *AppendResponse) FirstBlockID() string {
	if r == nil || len(r.Results) == 0 {
		return ""
	}
	return r.Results[0].ID
}

// FileUpload describes a file upload object. UploadURL is one-time and only
// present on creation; Status becomes "uploaded" once the bytes are in.
type FileUpload struct {
	ID        string `json:"id"`
	UploadURL string `json:"upload_url,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Comment is a created Notion comment.
type Comment struct {
	Object   string          `json:"object"`
	ID       string          `json:"id"`
	RichText []RichText      `json:"rich_text,omitempty"`
	Raw      json.RawMessage `json:"-"`
}
