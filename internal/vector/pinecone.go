package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spec-kit/dispute-service/internal/config"
)

// ErrNotConfigured indicates the index host or key is missing.
var ErrNotConfigured = errors.New("pinecone index not configured")

// PineconeIndex implements Index against the Pinecone data-plane REST API.
type PineconeIndex struct {
	apiKey    string
	host      string
	namespace string
	client    *http.Client
}

// NewPineconeIndex builds an index client from config.
func NewPineconeIndex(cfg config.PineconeConfig) *PineconeIndex {
	host := strings.TrimSuffix(cfg.IndexHost, "/")
	if host != "" && !strings.HasPrefix(host, "http") {
		host = "https://" + host
	}
	return &PineconeIndex{
		apiKey:    cfg.APIKey,
		host:      host,
		namespace: cfg.Namespace,
		client:    &http.Client{Timeout: cfg.Timeout()},
	}
}

// Configured reports whether the index is reachable in principle.
func (p *PineconeIndex) Configured() bool {
	return p.apiKey != "" && p.host != ""
}

type pineconeVector struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []pineconeVector `json:"vectors"`
	Namespace string           `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

// Upsert writes points to the index.
func (p *PineconeIndex) Upsert(ctx context.Context, points []Point) error {
	if !p.Configured() {
		return ErrNotConfigured
	}
	if len(points) == 0 {
		return nil
	}
	vectors := make([]pineconeVector, 0, len(points))
	for _, pt := range points {
		vectors = append(vectors, pineconeVector{ID: pt.ID, Values: pt.Values, Metadata: pt.Metadata})
	}
	return p.post(ctx, "/vectors/upsert", upsertRequest{Vectors: vectors, Namespace: p.namespace}, nil)
}

// Query returns the topK nearest points with metadata.
func (p *PineconeIndex) Query(ctx context.Context, values []float32, topK int) ([]Match, error) {
	if !p.Configured() {
		return nil, ErrNotConfigured
	}
	var resp queryResponse
	err := p.post(ctx, "/query", queryRequest{
		Vector:          values,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       p.namespace,
	}, &resp)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (p *PineconeIndex) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.host+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone: status %d: %s", resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
