package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// CreateFileUpload registers a pending upload and returns its id plus the
// one-time URL the bytes must be posted to.
func (c *Client) CreateFileUpload(ctx context.Context, fileName, contentType string, size int) (*FileUpload, error) {
	var out FileUpload
	if _, err := c.do(ctx, http.MethodPost, "/file_uploads", map[string]any{
		"file_name":    fileName,
		"content_type": contentType,
		"file_size":    size,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendFileUpload posts the raw bytes to the one-time upload URL as multipart
// form data. The returned status is "uploaded" when the upload auto-completed
// (simple uploads of at most 20 MiB).
func (c *Client) SendFileUpload(ctx context.Context, uploadURL, fileName, contentType string, data []byte) (*FileUpload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", Version)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload failed: %d %s - %s", resp.StatusCode, resp.Status, string(raw))
	}

	var out FileUpload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}
	return &out, nil
}

// CompleteFileUpload finalizes a multi-part upload so its id can be
// referenced in a block.
func (c *Client) CompleteFileUpload(ctx context.Context, uploadID string) error {
	_, err := c.do(ctx, http.MethodPost, "/file_uploads/"+uploadID+"/complete", struct{}{}, nil)
	return err
}
