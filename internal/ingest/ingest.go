// Package ingest copies an external image into Notion's file storage.
//
// The upload runs in stages: fetch the source bytes, register the upload,
// post the bytes to the one-time URL, and finalize if Notion didn't
// auto-complete. A failure at any stage is reported as a typed error so the
// caller can fall back to linking the image externally.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/thuthancs/inline/internal/log"
	"github.com/thuthancs/inline/internal/notion"
)

// FetchError means the source image could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch image %s: %v", e.URL, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// UploadInitError means Notion's upload registration was rejected or
// returned an unusable response.
type UploadInitError struct {
	Err error
}

func (e *UploadInitError) Error() string { return fmt.Sprintf("create file upload: %v", e.Err) }
func (e *UploadInitError) Unwrap() error { return e.Err }

// UploadSendError means posting the bytes to the one-time URL failed.
type UploadSendError struct {
	Err error
}

func (e *UploadSendError) Error() string { return fmt.Sprintf("send file upload: %v", e.Err) }
func (e *UploadSendError) Unwrap() error { return e.Err }

// Result references a finalized upload, ready to embed in an image block.
type Result struct {
	UploadID string
	Type     string
}

// Uploader moves images from external URLs into Notion.
type Uploader struct {
	client     *notion.Client
	httpClient *http.Client
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithHTTPClient overrides the client used to fetch source images.
func WithHTTPClient(hc *http.Client) Option {
	return func(u *Uploader) { u.httpClient = hc }
}

// NewUploader builds an Uploader that registers uploads through the given
// Notion client.
func NewUploader(client *notion.Client, opts ...Option) *Uploader {
	u := &Uploader{
		client:     client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type fetched struct {
	data        []byte
	contentType string
	fileName    string
}

func (u *Uploader) fetch(ctx context.Context, imageURL string) (*fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("status %d %s", resp.StatusCode, resp.Status)}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	return &fetched{
		data:        data,
		contentType: contentType,
		fileName:    fileNameFor(imageURL, contentType),
	}, nil
}

// fileNameFor derives an upload file name from the URL path, falling back to
// the content-type subtype when the path carries no extension.
func fileNameFor(imageURL, contentType string) string {
	base := "image"
	if parsed, err := url.Parse(imageURL); err == nil {
		if b := path.Base(parsed.Path); b != "" && b != "." && b != "/" {
			base = b
		}
	}
	if strings.Contains(base, ".") {
		return base
	}
	ext := "jpg"
	if _, subtype, found := strings.Cut(contentType, "/"); found && subtype != "" {
		ext = subtype
	}
	return base + "." + ext
}

// Upload fetches imageURL and pushes its bytes into Notion, returning a
// reference usable in an image block.
func (u *Uploader) Upload(ctx context.Context, imageURL string) (*Result, error) {
	log.Debug(log.Detailed, "[UPLOAD] fetching image: %s\n", imageURL)
	img, err := u.fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	log.Debug(log.Detailed, "[UPLOAD] fetched %s (%s, %d bytes)\n", img.fileName, img.contentType, len(img.data))

	created, err := u.client.CreateFileUpload(ctx, img.fileName, img.contentType, len(img.data))
	if err != nil {
		return nil, &UploadInitError{Err: err}
	}
	if created.ID == "" || created.UploadURL == "" {
		return nil, &UploadInitError{Err: fmt.Errorf("response missing upload_url or id")}
	}

	sent, err := u.client.SendFileUpload(ctx, created.UploadURL, img.fileName, img.contentType, img.data)
	if err != nil {
		return nil, &UploadSendError{Err: err}
	}

	// Simple uploads (<=20 MiB) are finalized by the send itself.
	if sent.Status != "uploaded" {
		log.Debug(log.Detailed, "[UPLOAD] completing multi-part upload %s\n", created.ID)
		if err := u.client.CompleteFileUpload(ctx, created.ID); err != nil {
			return nil, &UploadSendError{Err: err}
		}
	}

	log.Debug(log.Basic, "[UPLOAD] uploaded %s as %s\n", imageURL, created.ID)
	return &Result{UploadID: created.ID, Type: "file_upload"}, nil
}
