package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/filterdeck/filterdeck/internal/config"
)

// OpenSearchClient wraps the transport client with the operations filterdeck
// needs: executing compiled queries, introspecting field mappings, and
// aggregating field values for suggestions.
type OpenSearchClient struct {
	client *opensearch.Client
	index  string
}

// New connects to OpenSearch and verifies the connection with an info ping.
func New(cfg config.OpenSearchConfig) (*OpenSearchClient, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	return &OpenSearchClient{
		client: client,
		index:  cfg.Index,
	}, nil
}

// Client returns the underlying transport client.
func (c *OpenSearchClient) Client() *opensearch.Client {
	return c.client
}

// Index returns the configured index name.
func (c *OpenSearchClient) Index() string {
	return c.index
}

// SearchResult carries the decoded portion of a search response.
type SearchResult struct {
	TotalMatches int
	Hits         []map[string]any
	Aggregations map[string]any
}

// Search executes a query document against the configured index.
func (c *OpenSearchClient) Search(ctx context.Context, body map[string]any, size int) (*SearchResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(c.index+"*"),
		c.client.Search.WithBody(&buf),
		c.client.Search.WithSize(size),
		c.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var decoded struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
		Aggregations map[string]any `json:"aggregations,omitempty"`
	}
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &SearchResult{
		TotalMatches: decoded.Hits.Total.Value,
		Hits:         make([]map[string]any, 0, len(decoded.Hits.Hits)),
		Aggregations: decoded.Aggregations,
	}
	for _, hit := range decoded.Hits.Hits {
		result.Hits = append(result.Hits, hit.Source)
	}
	return result, nil
}

// Fields introspects the index mapping and returns the ordered field
// catalog, including derived ".keyword" variants of multi-fields.
func (c *OpenSearchClient) Fields(ctx context.Context) ([]string, error) {
	res, err := c.client.Indices.GetMapping(
		c.client.Indices.GetMapping.WithContext(ctx),
		c.client.Indices.GetMapping.WithIndex(c.index+"*"),
	)
	if err != nil {
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("get mapping error: %s", res.String())
	}

	var mappings map[string]struct {
		Mappings struct {
			Properties map[string]any `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(res.Body).Decode(&mappings); err != nil {
		return nil, fmt.Errorf("decode mapping: %w", err)
	}

	seen := make(map[string]bool)
	for _, index := range mappings {
		collectFields("", index.Mappings.Properties, seen)
	}

	fields := make([]string, 0, len(seen))
	for field := range seen {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields, nil
}

// collectFields walks a mapping's properties, flattening nested objects to
// dot paths and expanding multi-fields like {"fields":{"keyword":{...}}}.
func collectFields(prefix string, properties map[string]any, out map[string]bool) {
	for name, raw := range properties {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if nested, ok := prop["properties"].(map[string]any); ok {
			collectFields(path, nested, out)
			continue
		}
		out[path] = true
		if multi, ok := prop["fields"].(map[string]any); ok {
			for sub := range multi {
				out[path+"."+sub] = true
			}
		}
	}
}
