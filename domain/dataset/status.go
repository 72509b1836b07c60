package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StatusFileName is stored in the dataset root.
const StatusFileName = "image_status.json"

// Status is the review state of one image.
type Status string

const (
	StatusNotViewed    Status = "not_viewed"
	StatusViewed       Status = "viewed"
	StatusEdited       Status = "edited"
	StatusReviewNeeded Status = "review_needed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotViewed, StatusViewed, StatusEdited, StatusReviewNeeded:
		return true
	}
	return false
}

// StatusFor returns edited when an image has annotations and viewed otherwise.
func StatusFor(hasAnnotations bool) Status {
	if hasAnnotations {
		return StatusEdited
	}
	return StatusViewed
}

// Counts summarizes statuses the way the status bar shows them. Labeled images
// also count as viewed.
type Counts struct {
	Viewed       int
	Labeled      int
	ReviewNeeded int
	NotViewed    int
}

// StatusBook tracks per-image statuses keyed by relative image path.
type StatusBook struct {
	mu       sync.RWMutex
	path     string
	statuses map[string]Status
}

// LoadStatusBook reads <root>/image_status.json. A missing file yields an empty book.
func LoadStatusBook(root string) (*StatusBook, error) {
	b := &StatusBook{path: filepath.Join(root, StatusFileName), statuses: make(map[string]Status)}
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return b, fmt.Errorf("read statuses: %w", err)
	}
	raw := make(map[string]Status)
	if err := json.Unmarshal(data, &raw); err != nil {
		return b, fmt.Errorf("decode statuses: %w", err)
	}
	for k, v := range raw {
		if v.Valid() {
			b.statuses[k] = v
		}
	}
	return b, nil
}

// Get returns the status of rel, not_viewed when unknown.
func (b *StatusBook) Get(rel string) Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if s, ok := b.statuses[rel]; ok {
		return s
	}
	return StatusNotViewed
}

// Set records the status of rel.
func (b *StatusBook) Set(rel string, s Status) {
	b.mu.Lock()
	b.statuses[rel] = s
	b.mu.Unlock()
}

// Delete forgets rel.
func (b *StatusBook) Delete(rel string) {
	b.mu.Lock()
	delete(b.statuses, rel)
	b.mu.Unlock()
}

// Merge applies a batch of statuses.
func (b *StatusBook) Merge(updates map[string]Status) {
	b.mu.Lock()
	for k, v := range updates {
		b.statuses[k] = v
	}
	b.mu.Unlock()
}

// Counts summarizes the statuses of images.
func (b *StatusBook) Counts(images []string) Counts {
	var c Counts
	for _, rel := range images {
		switch b.Get(rel) {
		case StatusEdited:
			c.Labeled++
			c.Viewed++
		case StatusViewed:
			c.Viewed++
		case StatusReviewNeeded:
			c.ReviewNeeded++
		default:
			c.NotViewed++
		}
	}
	return c
}

// Save writes the book to disk.
func (b *StatusBook) Save() error {
	b.mu.RLock()
	data, err := json.MarshalIndent(b.statuses, "", "  ")
	b.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode statuses: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0o644); err != nil {
		return fmt.Errorf("write statuses: %w", err)
	}
	return nil
}
