package save

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuthancs/inline/internal/ingest"
	"github.com/thuthancs/inline/internal/notion"
)

type mockUploader struct {
	results map[string]string // url -> upload id
}

func (m *mockUploader) Upload(_ context.Context, imageURL string) (*ingest.Result, error) {
	id, ok := m.results[imageURL]
	if !ok {
		return nil, &ingest.FetchError{URL: imageURL, Err: errors.New("unreachable")}
	}
	return &ingest.Result{UploadID: id, Type: "file_upload"}, nil
}

type appendCall struct {
	blockID string
	blocks  []notion.Block
}

// notionStub records appends and comments against a stub API.
type notionStub struct {
	t           *testing.T
	srv         *httptest.Server
	appends     []appendCall
	comments    []map[string]any
	appendBody  string
	commentFail int
}

func newNotionStub(t *testing.T) *notionStub {
	s := &notionStub{t: t, appendBody: `{"object":"list","results":[{"id":"block-1"}]}`}
	mux := http.NewServeMux()
	mux.HandleFunc("/blocks/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Children []notion.Block `json:"children"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		blockID := r.URL.Path[len("/blocks/") : len(r.URL.Path)-len("/children")]
		s.appends = append(s.appends, appendCall{blockID: blockID, blocks: body.Children})
		w.Write([]byte(s.appendBody))
	})
	mux.HandleFunc("/comments", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		s.comments = append(s.comments, body)
		if s.commentFail != 0 {
			w.WriteHeader(s.commentFail)
			w.Write([]byte(`{"message":"comment rejected"}`))
			return
		}
		w.Write([]byte(`{"object":"comment","id":"c-1"}`))
	})
	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

func (s *notionStub) client() *notion.Client {
	return notion.NewClient("tok", notion.WithBaseURL(s.srv.URL))
}

func TestSaveContentRequiresContent(t *testing.T) {
	stub := newNotionStub(t)
	svc := NewService(stub.client(), &mockUploader{})

	_, err := svc.SaveContent(context.Background(), "page-1", "", nil)
	assert.ErrorIs(t, err, ErrMissingContent)
	assert.Empty(t, stub.appends, "append endpoint must not be called")

	_, err = svc.SaveContent(context.Background(), "page-1", "   ", []string{})
	assert.ErrorIs(t, err, ErrMissingContent)
	assert.Empty(t, stub.appends)
}

func TestSaveContentTextOnly(t *testing.T) {
	stub := newNotionStub(t)
	svc := NewService(stub.client(), &mockUploader{})

	resp, err := svc.SaveContent(context.Background(), "abc", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "block-1", resp.FirstBlockID())

	require.Len(t, stub.appends, 1)
	assert.Equal(t, "abc", stub.appends[0].blockID)
	require.Len(t, stub.appends[0].blocks, 1)
	block := stub.appends[0].blocks[0]
	assert.Equal(t, "quote", block.Type)
	assert.Equal(t, "hello", block.Quote.RichText[0].Text.Content)
}

func TestSaveContentUploadedImage(t *testing.T) {
	stub := newNotionStub(t)
	svc := NewService(stub.client(), &mockUploader{results: map[string]string{
		"http://x/a.png": "up-a",
	}})

	_, err := svc.SaveContent(context.Background(), "abc", "hello", []string{"http://x/a.png"})
	require.NoError(t, err)

	require.Len(t, stub.appends, 1)
	blocks := stub.appends[0].blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, "quote", blocks[0].Type)
	assert.Equal(t, "image", blocks[1].Type)
	assert.Equal(t, "file_upload", blocks[1].Image.Type)
	assert.Equal(t, "up-a", blocks[1].Image.FileUpload.ID)
}

func TestSaveContentExternalFallback(t *testing.T) {
	stub := newNotionStub(t)
	svc := NewService(stub.client(), &mockUploader{}) // every upload fails

	resp, err := svc.SaveContent(context.Background(), "abc", "hello", []string{"http://x/img.png"})
	require.NoError(t, err, "a failed upload must not fail the save")
	assert.NotNil(t, resp)

	blocks := stub.appends[0].blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, "external", blocks[1].Image.Type)
	assert.Equal(t, "http://x/img.png", blocks[1].Image.External.URL)
}

func TestSaveContentMixedImagesPreserveOrder(t *testing.T) {
	stub := newNotionStub(t)
	svc := NewService(stub.client(), &mockUploader{results: map[string]string{
		"http://x/ok.png": "up-ok",
	}})

	_, err := svc.SaveContent(context.Background(), "abc", "", []string{
		"http://x/broken.png", "http://x/ok.png",
	})
	require.NoError(t, err)

	blocks := stub.appends[0].blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, "external", blocks[0].Image.Type)
	assert.Equal(t, "http://x/broken.png", blocks[0].Image.External.URL)
	assert.Equal(t, "file_upload", blocks[1].Image.Type)
}

func TestSaveContentWithComment(t *testing.T) {
	stub := newNotionStub(t)
	svc := NewService(stub.client(), &mockUploader{})

	blockID, err := svc.SaveContentWithComment(context.Background(), "abc", "hello", "great point")
	require.NoError(t, err)
	assert.Equal(t, "block-1", blockID)

	require.Len(t, stub.comments, 1)
	parent := stub.comments[0]["parent"].(map[string]any)
	assert.Equal(t, "block-1", parent["block_id"])
}

func TestSaveContentWithCommentNoBlockID(t *testing.T) {
	stub := newNotionStub(t)
	stub.appendBody = `{"object":"list","results":[]}`
	svc := NewService(stub.client(), &mockUploader{})

	_, err := svc.SaveContentWithComment(context.Background(), "abc", "hello", "orphan")
	assert.ErrorIs(t, err, ErrNoBlockID)
	assert.Empty(t, stub.comments, "no comment may be created without a block id")
}

func TestAddCommentSurfacesUpstreamMessage(t *testing.T) {
	stub := newNotionStub(t)
	stub.commentFail = http.StatusBadRequest
	svc := NewService(stub.client(), &mockUploader{})

	_, err := svc.AddComment(context.Background(), "block-1", "text")
	require.Error(t, err)
	var apiErr *notion.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "comment rejected", apiErr.Message)
}
