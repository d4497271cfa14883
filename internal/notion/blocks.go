package notion

// Block is a block object in an append request.
type Block struct {
	Object    string         `json:"object"`
	Type      string         `json:"type"`
	Quote     *RichTextBlock `json:"quote,omitempty"`
	Paragraph *RichTextBlock `json:"paragraph,omitempty"`
	Image     *Image         `json:"image,omitempty"`
}

// RichTextBlock is the payload of a text-bearing block.
type RichTextBlock struct {
	RichText []RichText `json:"rich_text"`
}

// Image is an image block payload, either a finalized file upload or an
// external link.
type Image struct {
	Type       string         `json:"type"`
	FileUpload *FileUploadRef `json:"file_upload,omitempty"`
	External   *ExternalRef   `json:"external,omitempty"`
}

// FileUploadRef references a completed file upload by id.
type FileUploadRef struct {
	ID string `json:"id"`
}

// ExternalRef links an externally hosted file by URL.
type ExternalRef struct {
	URL string `json:"url"`
}

// QuoteBlock builds a quote block holding the given text.
func QuoteBlock(text string) Block {
	return Block{
		Object: "block",
		Type:   "quote",
		Quote:  &RichTextBlock{RichText: NewRichText(text)},
	}
}

// ParagraphBlock builds a plain paragraph block holding the given text.
func ParagraphBlock(text string) Block {
	return Block{
		Object:    "block",
		Type:      "paragraph",
		Paragraph: &RichTextBlock{RichText: NewRichText(text)},
	}
}

// UploadedImageBlock builds an image block referencing a finalized upload.
func UploadedImageBlock(uploadID string) Block {
	return Block{
		Object: "block",
		Type:   "image",
		Image:  &Image{Type: "file_upload", FileUpload: &FileUploadRef{ID: uploadID}},
	}
}

// ExternalImageBlock builds an image block linking the original URL.
func ExternalImageBlock(url string) Block {
	return Block{
		Object: "block",
		Type:   "image",
		Image:  &Image{Type: "external", External: &ExternalRef{URL: url}},
	}
}
