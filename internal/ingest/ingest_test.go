package ingest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thuthancs/inline/internal/notion"
)

// tiny valid PNG header, enough for mimetype sniffing
var pngBytes = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func TestFileNameFor(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		want        string
	}{
		{"http://x/photos/cat.png", "image/png", "cat.png"},
		{"http://x/photos/cat", "image/png", "cat.png"},
		{"http://x/photos/cat", "image/jpeg", "cat.jpeg"},
		{"http://x/", "image/png", "image.png"},
		{"http://x/img", "", "img.jpg"},
	}
	for _, tc := range tests {
		if got := fileNameFor(tc.url, tc.contentType); got != tc.want {
			t.Errorf("fileNameFor(%q, %q) = %q, want %q", tc.url, tc.contentType, got, tc.want)
		}
	}
}

func TestUploadSimple(t *testing.T) {
	// Image host.
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	t.Cleanup(imgSrv.Close)

	// Notion stub: send auto-completes, so /complete must not be hit.
	mux := http.NewServeMux()
	notionSrv := httptest.NewServer(mux)
	t.Cleanup(notionSrv.Close)

	mux.HandleFunc("/file_uploads", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "image/png", body["content_type"])
		assert.Equal(t, float64(len(pngBytes)), body["file_size"])

		json.NewEncoder(w).Encode(map[string]any{"id": "up-1", "upload_url": notionSrv.URL + "/send"})
	})
	mux.HandleFunc("/send", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "up-1", "status": "uploaded"})
	})
	mux.HandleFunc("/file_uploads/up-1/complete", func(w http.ResponseWriter, r *http.Request) {
		t.Error("complete must not be called for simple uploads")
	})

	u := NewUploader(notion.NewClient("tok", notion.WithBaseURL(notionSrv.URL)))
	res, err := u.Upload(context.Background(), imgSrv.URL+"/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "up-1", res.UploadID)
	assert.Equal(t, "file_upload", res.Type)
}

func TestUploadMultiPartCompletes(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	t.Cleanup(imgSrv.Close)

	var completed bool
	mux := http.NewServeMux()
	notionSrv := httptest.NewServer(mux)
	t.Cleanup(notionSrv.Close)

	mux.HandleFunc("/file_uploads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "up-2", "upload_url": notionSrv.URL + "/send"})
	})
	mux.HandleFunc("/send", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "up-2", "status": "pending"})
	})
	mux.HandleFunc("/file_uploads/up-2/complete", func(w http.ResponseWriter, r *http.Request) {
		completed = true
		json.NewEncoder(w).Encode(map[string]any{"id": "up-2", "status": "uploaded"})
	})

	u := NewUploader(notion.NewClient("tok", notion.WithBaseURL(notionSrv.URL)))
	res, err := u.Upload(context.Background(), imgSrv.URL+"/big.png")
	require.NoError(t, err)
	assert.Equal(t, "up-2", res.UploadID)
	assert.True(t, completed)
}

func TestUploadUnreachableImage(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(imgSrv.Close)

	u := NewUploader(notion.NewClient("tok"))
	_, err := u.Upload(context.Background(), imgSrv.URL+"/missing.png")
	require.Error(t, err)
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestUploadInitMissingURL(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	t.Cleanup(imgSrv.Close)

	notionSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// id present but no upload_url
		json.NewEncoder(w).Encode(map[string]any{"id": "up-3"})
	}))
	t.Cleanup(notionSrv.Close)

	u := NewUploader(notion.NewClient("tok", notion.WithBaseURL(notionSrv.URL)))
	_, err := u.Upload(context.Background(), imgSrv.URL+"/cat.png")
	require.Error(t, err)
	var initErr *UploadInitError
	assert.ErrorAs(t, err, &initErr)
}

func TestUploadSendFailureIncludesBody(t *testing.T) {
	imgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes)
	}))
	t.Cleanup(imgSrv.Close)

	mux := http.NewServeMux()
	notionSrv := httptest.NewServer(mux)
	t.Cleanup(notionSrv.Close)

	mux.HandleFunc("/file_uploads", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "up-4", "upload_url": notionSrv.URL + "/send"})
	})
	mux.HandleFunc("/send", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upload rejected by storage", http.StatusBadRequest)
	})

	u := NewUploader(notion.NewClient("tok", notion.WithBaseURL(notionSrv.URL)))
	_, err := u.Upload(context.Background(), imgSrv.URL+"/cat.png")
	require.Error(t, err)
	var sendErr *UploadSendError
	require.ErrorAs(t, err, &sendErr)
	assert.Contains(t, err.Error(), "upload rejected by storage")
}
