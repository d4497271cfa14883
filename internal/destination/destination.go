// Package destination persists the user's chosen save target, bound to the
// page it was chosen on.
package destination

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/thuthancs/inline/internal/extension"
)

// StorageKey is the extension-local storage key for the destination record.
const StorageKey = "inline_destination_v1"

// Mode selects the destination variant.
type Mode string

const (
	// ModeDirect appends saves straight to a selected page.
	ModeDirect Mode = "append_to_selected"
	// ModeChild appends saves to a child page created under a parent.
	ModeChild Mode = "append_to_child"
)

// ErrEmptyTarget is returned when a destination without a target page id is
// saved. A half-created destination must never be persisted.
var ErrEmptyTarget = errors.New("destination has no target page id")

// Destination is the chosen save target. Direct mode uses PageID; child mode
// uses the parent/child pair. SourceURL binds the record to the page it was
// set on.
type Destination struct {
	Mode Mode `json:"mode"`

	PageID    string `json:"pageId,omitempty"`
	PageTitle string `json:"pageTitle,omitempty"`
	PageURL   string `json:"pageUrl,omitempty"`

	ParentPageID string `json:"parentPageId,omitempty"`
	ParentTitle  string `json:"parentTitle,omitempty"`
	ChildPageID  string `json:"childPageId,omitempty"`
	ChildTitle   string `json:"childTitle,omitempty"`
	ChildURL     string `json:"childUrl,omitempty"`

	SourceURL string `json:"sourceUrl,omitempty"`
	SetAt     int64  `json:"setAt,omitempty"`
}

// TargetPageID resolves the page saves are appended to.
func (d *Destination) TargetPageID() string {
	if d == nil {
		return ""
	}
	if d.Mode == ModeChild {
		return d.ChildPageID
	}
	return d.PageID
}

// Registry stores and validates the destination record.
type Registry struct {
	storage extension.Storage
	tabs    extension.Tabs
}

// NewRegistry builds a Registry over the given storage and tabs.
func NewRegistry(storage extension.Storage, tabs extension.Tabs) *Registry {
	return &Registry{storage: storage, tabs: tabs}
}

// Save stamps the active tab's URL onto the destination and persists it.
// A destination without a target page id is rejected.
func (r *Registry) Save(d Destination) error {
	if d.TargetPageID() == "" {
		return ErrEmptyTarget
	}
	if url, err := r.tabs.ActiveURL(); err == nil {
		d.SourceURL = url
	}
	d.SetAt = time.Now().UnixMilli()

	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.storage.Set(StorageKey, raw)
}

// Load returns the stored destination only if its stamped URL still matches
// the active tab. On mismatch the stale record is deleted and nil is
// returned, so a destination chosen on one page never leaks into a save on
// another.
func (r *Registry) Load() (*Destination, error) {
	d, err := r.Current()
	if err != nil || d == nil {
		return nil, err
	}

	currentURL, err := r.tabs.ActiveURL()
	if err != nil {
		currentURL = ""
	}
	if d.SourceURL != currentURL {
		_ = r.storage.Remove(StorageKey)
		return nil, nil
	}
	return d, nil
}

// Current returns the stored destination without the URL check. The
// background relay reads through this; the popup uses Load.
func (r *Registry) Current() (*Destination, error) {
	raw, err := r.storage.Get(StorageKey)
	if errors.Is(err, extension.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var d Destination
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Clear unconditionally removes the stored destination.
func (r *Registry) Clear() error {
	return r.storage.Remove(StorageKey)
}
