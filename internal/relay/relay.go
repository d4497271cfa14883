// Package relay is the background worker's message handler: it resolves the
// saved destination and forwards capture requests to the save API.
package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/thuthancs/inline/internal/destination"
)

// Kind tags a relay request variant.
type Kind string

const (
	// KindSaveHighlight saves selected text, optionally with inline images.
	KindSaveHighlight Kind = "SAVE_HIGHLIGHT"
	// KindSaveImage saves a single image.
	KindSaveImage Kind = "SAVE_IMAGE"
	// KindCommentHighlight saves selected text and attaches a comment.
	KindCommentHighlight Kind = "COMMENT_HIGHLIGHT"
)

// Error codes the UI branches on.
const (
	CodeNoDestination     = "NO_DESTINATION"
	CodeNoTargetPage      = "NO_TARGET_PAGE"
	CodeNoBlockID         = "NO_BLOCK_ID"
	CodeUnknownMessage    = "UNKNOWN_MESSAGE"
	CodeExtensionReloaded = "EXTENSION_RELOADED"
)

// timeoutMessage is the error surfaced when the relay gives up waiting.
const timeoutMessage = "Operation timed out. The server may be slow or unreachable."

// Request is one message from the content script.
type Request struct {
	Kind      Kind     `json:"type"`
	Text      string   `json:"text,omitempty"`
	Comment   string   `json:"comment,omitempty"`
	ImageURL  string   `json:"imageUrl,omitempty"`
	Images    []string `json:"images,omitempty"`
	PageURL   string   `json:"pageUrl,omitempty"`
	PageTitle string   `json:"pageTitle,omitempty"`
}

// Response is the relay's answer, normalized so the UI needs one branch.
type Response struct {
	OK       bool            `json:"ok"`
	Error    string          `json:"error,omitempty"`
	BlockID  string          `json:"blockId,omitempty"`
	Upstream json.RawMessage `json:"response,omitempty"`
}

// Saver is the save API as the relay sees it. The HTTP client implements it
// in the browser build; tests substitute mocks.
type Saver interface {
	Save(ctx context.Context, pageID, content string, images []string) (json.RawMessage, error)
	SaveWithComment(ctx context.Context, pageID, content, comment string) (blockID string, err error)
}

// DefaultTimeout bounds one relay round trip.
const DefaultTimeout = 15 * time.Second

// Relay dispatches content script requests to the save API.
type Relay struct {
	destinations *destination.Registry
	saver        Saver
	timeout      time.Duration
}

// Option configures a Relay.
type Option func(*Relay)

// WithTimeout overrides the round-trip timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Relay) { r.timeout = d }
}

// New builds a Relay.
func New(destinations *destination.Registry, saver Saver, opts ...Option) *Relay {
	r := &Relay{
		destinations: destinations,
		saver:        saver,
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one request and delivers exactly one response through
// respond, even if the underlying save outlives the timeout.
func (r *Relay) Handle(ctx context.Context, req Request, respond func(Response)) {
	var once sync.Once
	reply := func(resp Response) {
		once.Do(func() { respond(resp) })
	}

	dest, err := r.destinations.Current()
	if err != nil || dest == nil {
		reply(Response{OK: false, Error: CodeNoDestination})
		return
	}

	targetPageID := dest.TargetPageID()
	if targetPageID == "" {
		reply(Response{OK: false, Error: CodeNoTargetPage})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)

	done := make(chan Response, 1)
	go func() {
		defer cancel()
		done <- r.dispatch(ctx, targetPageID, req)
	}()

	select {
	case resp := <-done:
		reply(resp)
	case <-ctx.Done():
		// The in-flight call is not aborted server-side; we only stop
		// waiting for it.
		reply(Response{OK: false, Error: timeoutMessage})
	}
}

func (r *Relay) dispatch(ctx context.Context, targetPageID string, req Request) Response {
	switch req.Kind {
	case KindSaveHighlight:
		raw, err := r.saver.Save(ctx, targetPageID, req.Text, req.Images)
		if err != nil {
			return Response{OK: false, Error: err.Error()}
		}
		return Response{OK: true, Upstream: raw}

	case KindSaveImage:
		raw, err := r.saver.Save(ctx, targetPageID, "", []string{req.ImageURL})
		if err != nil {
			return Response{OK: false, Error: err.Error()}
		}
		return Response{OK: true, Upstream: raw}

	case KindCommentHighlight:
		blockID, err := r.saver.SaveWithComment(ctx, targetPageID, req.Text, req.Comment)
		if err != nil {
			return Response{OK: false, Error: err.Error()}
		}
		if blockID == "" {
			return Response{OK: false, Error: CodeNoBlockID}
		}
		return Response{OK: true, BlockID: blockID}

	default:
		return Response{OK: false, Error: CodeUnknownMessage}
	}
}
