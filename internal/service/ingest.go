package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
)

// Chunking parameters for ingested pages.
const (
	chunkSize    = 500
	chunkOverlap = 75
)

// DocumentWriter is the persistence surface the ingestor needs.
type DocumentWriter interface {
	InsertDocuments(ctx context.Context, docs []crm.Document) error
}

// Ingestor fetches web pages, strips markup, chunks the text, and stores the
// chunks in the knowledge base for the retriever tool.
type Ingestor struct {
	store      DocumentWriter
	httpClient *http.Client
	log        *slog.Logger
}

// NewIngestor creates the ingestion service.
func NewIngestor(store DocumentWriter, log *slog.Logger) *Ingestor {
	return &Ingestor{
		store: store,
		httpClient: &http.Client{
			Timeout: 25 * time.Second,
		},
		log: log,
	}
}

// IngestResult reports the outcome for one URL.
type IngestResult struct {
	URL    string `json:"url"`
	OK     bool   `json:"ok"`
	Chunks int    `json:"chunks"`
	Error  string `json:"error,omitempty"`
}

// IngestURLs processes each URL independently; one failing URL does not
// abort the batch.
func (s *Ingestor) IngestURLs(ctx context.Context, urls []string) []IngestResult {
	results := make([]IngestResult, 0, len(urls))
	for _, url := range urls {
		res := IngestResult{URL: url}

		text, err := s.fetchText(ctx, url)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		chunks := chunkText(text, chunkSize, chunkOverlap)
		if len(chunks) == 0 {
			res.Error = "no content after chunking"
			results = append(results, res)
			continue
		}

		docs := make([]crm.Document, 0, len(chunks))
		for _, c := range chunks {
			docs = append(docs, crm.Document{Source: url, Content: c})
		}
		if err := s.store.InsertDocuments(ctx, docs); err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}

		s.log.Info("url ingested", "url", url, "chunks", len(chunks))
		res.OK = true
		res.Chunks = len(chunks)
		results = append(results, res)
	}
	return results
}

func (s *Ingestor) fetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (swarm-ingestor)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return stripHTML(string(body)), nil
}

var (
	scriptRe = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagRe    = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// stripHTML reduces a page to plain text. Good enough for knowledge-base
// ingestion; no DOM fidelity is needed.
func stripHTML(html string) string {
	text := scriptRe.ReplaceAllString(html, " ")
	text = tagRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}

// chunkText splits text into size-rune windows with the given overlap.
func chunkText(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if size <= overlap {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
