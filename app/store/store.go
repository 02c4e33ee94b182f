// Package store contains entities of the harvester and the archive of completed runs.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Placeholders for values the extractor could not obtain.
const (
	ContentNotExtracted = "No extraído"
	DateNotExtracted    = "No extraída"
)

// Interface defines methods for the run archive.
type Interface interface {
	Put(ctx context.Context, r Run) error
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context, req ListRequest) ([]Run, error)
}

// ListRequest defines parameters for listing runs from store.
type ListRequest struct {
	// WithRecords loads the article records of each run as well.
	WithRecords bool
}

// SearchResultItem is a single news link found on a search result page.
type SearchResultItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"` // summary shown on the result card
}

// ArticleRecord is one row of the harvest output.
// Source and Snippet are kept in the archive only and are not part
// of the CSV table.
type ArticleRecord struct {
	Company     string `json:"company"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at"`
	Market      string `json:"market"`
	Source      string `json:"source,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
}

// NewArticleRecord builds a record for the item found under the query,
// empty content and date are replaced with placeholders.
func NewArticleRecord(query, market string, item SearchResultItem, content, date string) ArticleRecord {
	if content == "" {
		content = ContentNotExtracted
	}
	if date == "" {
		date = DateNotExtracted
	}

	return ArticleRecord{
		Company:     query,
		Title:       item.Title,
		URL:         item.Link,
		Content:     content,
		PublishedAt: date,
		Market:      market,
		Snippet:     item.Snippet,
	}
}

// Run is a completed harvest.
type Run struct {
	ID         string          `json:"id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Market     string          `json:"market"`
	Queries    []string        `json:"queries"`
	Output     string          `json:"output"`
	Total      int             `json:"total"`
	Records    []ArticleRecord `json:"records,omitempty"`
}
