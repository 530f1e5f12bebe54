// Package pinecone implements vectorstore.Store against the Pinecone REST
// API: the control plane for index lifecycle and the per-index data plane
// for upserts and queries.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shersomas/manualbot/internal/vectorstore"
)

const (
	defaultControlURL = "https://api.pinecone.io"
	apiVersion        = "2025-01"
)

// Store talks to a Pinecone serverless index.
type Store struct {
	controlURL string
	apiKey     string
	cloud      string
	region     string
	metric     string
	httpClient *http.Client

	mu        sync.Mutex
	indexHost string // Data-plane host, resolved once per index.
	indexName string
}

// Config configures the Pinecone client.
type Config struct {
	APIKey     string
	ControlURL string // Defaults to the hosted control plane.
	Cloud      string // Serverless cloud provider, default "aws".
	Region     string // Serverless region, default "us-east-1".
	Timeout    time.Duration
}

func NewStore(cfg Config) *Store {
	if cfg.ControlURL == "" {
		cfg.ControlURL = defaultControlURL
	}
	if cfg.Cloud == "" {
		cfg.Cloud = "aws"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Store{
		controlURL: cfg.ControlURL,
		apiKey:     cfg.APIKey,
		cloud:      cfg.Cloud,
		region:     cfg.Region,
		metric:     "cosine",
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type indexModel struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

type listIndexesResponse struct {
	Indexes []indexModel `json:"indexes"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

// EnsureIndex lists existing indexes and creates name if absent. Calling it
// again with the same name is a no-op, so repeated ingestion runs never hit
// a duplicate-creation error.
func (s *Store) EnsureIndex(ctx context.Context, name string, dimension int) error {
	indexes, err := s.listIndexes(ctx)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}
	for _, idx := range indexes {
		if idx.Name == name {
			s.setHost(name, idx.Host)
			return nil
		}
	}

	host, err := s.createIndex(ctx, name, dimension)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	s.setHost(name, host)
	return nil
}

func (s *Store) setHost(name, host string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexName = name
	s.indexHost = host
}

func (s *Store) host(ctx context.Context) (string, error) {
	s.mu.Lock()
	host := s.indexHost
	name := s.indexName
	s.mu.Unlock()
	if host != "" {
		return withScheme(host), nil
	}
	if name == "" {
		return "", fmt.Errorf("index host unknown: call EnsureIndex first")
	}
	// Host can be empty right after creation; re-resolve it.
	indexes, err := s.listIndexes(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve index host: %w", err)
	}
	for _, idx := range indexes {
		if idx.Name == name && idx.Host != "" {
			s.setHost(name, idx.Host)
			return withScheme(idx.Host), nil
		}
	}
	return "", fmt.Errorf("index %s has no host yet", name)
}

func withScheme(host string) string {
	if strings.Contains(host, "://") {
		return host
	}
	return "https://" + host
}

func (s *Store) listIndexes(ctx context.Context) ([]indexModel, error) {
	var out listIndexesResponse
	if err := s.doJSON(ctx, http.MethodGet, s.controlURL+"/indexes", nil, &out); err != nil {
		return nil, err
	}
	return out.Indexes, nil
}

func (s *Store) createIndex(ctx context.Context, name string, dimension int) (string, error) {
	req := createIndexRequest{
		Name:      name,
		Dimension: dimension,
		Metric:    s.metric,
		Spec: indexSpec{
			Serverless: serverlessSpec{Cloud: s.cloud, Region: s.region},
		},
	}
	var out indexModel
	if err := s.doJSON(ctx, http.MethodPost, s.controlURL+"/indexes", req, &out); err != nil {
		return "", err
	}
	return out.Host, nil
}

type upsertRequest struct {
	Vectors   []vectorPayload `json:"vectors"`
	Namespace string          `json:"namespace"`
}

type vectorPayload struct {
	ID       string            `json:"id"`
	Values   []float32         `json:"values"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Upsert writes entries into the namespace, overwriting any existing IDs.
func (s *Store) Upsert(ctx context.Context, namespace string, entries []vectorstore.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	host, err := s.host(ctx)
	if err != nil {
		return &vectorstore.UploadError{Namespace: namespace, Err: err}
	}

	req := upsertRequest{Namespace: namespace}
	for _, e := range entries {
		req.Vectors = append(req.Vectors, vectorPayload{
			ID:       e.ID,
			Values:   e.Values,
			Metadata: e.Metadata,
		})
	}
	if err := s.doJSON(ctx, http.MethodPost, host+"/vectors/upsert", req, nil); err != nil {
		return &vectorstore.UploadError{Namespace: namespace, Err: err}
	}
	return nil
}

type queryRequest struct {
	Namespace       string    `json:"namespace"`
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float32           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

// Query returns up to topK nearest entries in the namespace.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int, includeMetadata bool) ([]vectorstore.Match, error) {
	host, err := s.host(ctx)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		Namespace:       namespace,
		Vector:          vector,
		TopK:            topK,
		IncludeMetadata: includeMetadata,
	}
	var out queryResponse
	if err := s.doJSON(ctx, http.MethodPost, host+"/query", req, &out); err != nil {
		return nil, fmt.Errorf("query namespace %q: %w", namespace, err)
	}

	matches := make([]vectorstore.Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, vectorstore.Match{
			ID:       m.ID,
			Score:    m.Score,
			Metadata: m.Metadata,
		})
	}
	return matches, nil
}

func (s *Store) doJSON(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Api-Key", s.apiKey)
	httpReq.Header.Set("X-Pinecone-API-Version", apiVersion)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("pinecone api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("pinecone api status %d: %s", resp.StatusCode, string(respBody))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() {
	s.httpClient.CloseIdleConnections()
}
