package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filterdeck/filterdeck/internal/client"
)

// fakeSearcher records the last request body and returns a canned result.
type fakeSearcher struct {
	lastBody map[string]any
	result   *client.SearchResult
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, body map[string]any, _ int) (*client.SearchResult, error) {
	f.lastBody = body
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func buckets(keys ...any) map[string]any {
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]any{"key": k, "doc_count": float64(1)})
	}
	return map[string]any{
		"values": map[string]any{"buckets": out},
	}
}

func TestSuggestBuildsTermsAggregation(t *testing.T) {
	fake := &fakeSearcher{result: &client.SearchResult{
		Aggregations: buckets("web01", "web02"),
	}}
	s := New(fake, nil)

	values, err := s.Suggest(context.Background(), Request{Field: "host.keyword", Query: "we", Size: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"web01", "web02"}, values)

	require.NotNil(t, fake.lastBody)
	assert.Equal(t, 0, fake.lastBody["size"])

	aggs := fake.lastBody["aggs"].(map[string]any)
	terms := aggs["values"].(map[string]any)["terms"].(map[string]any)
	assert.Equal(t, "host.keyword", terms["field"])
	assert.Equal(t, 10, terms["size"])
	assert.Equal(t, "[wW][eE].*", terms["include"])
}

func TestSuggestWithoutQueryOmitsInclude(t *testing.T) {
	fake := &fakeSearcher{result: &client.SearchResult{Aggregations: buckets("a")}}
	s := New(fake, nil)

	_, err := s.Suggest(context.Background(), Request{Field: "host.keyword"})
	require.NoError(t, err)

	terms := fake.lastBody["aggs"].(map[string]any)["values"].(map[string]any)["terms"].(map[string]any)
	_, hasInclude := terms["include"]
	assert.False(t, hasInclude)
	assert.Equal(t, DefaultSize, terms["size"])
}

func TestSuggestRequiresField(t *testing.T) {
	s := New(&fakeSearcher{}, nil)
	_, err := s.Suggest(context.Background(), Request{})
	assert.Error(t, err)
}

func TestSuggestPropagatesSearchError(t *testing.T) {
	fake := &fakeSearcher{err: errors.New("backend down")}
	s := New(fake, nil)

	_, err := s.Suggest(context.Background(), Request{Field: "host.keyword"})
	assert.ErrorContains(t, err, "backend down")
}

func TestSuggestContextQuery(t *testing.T) {
	fake := &fakeSearcher{result: &client.SearchResult{Aggregations: buckets()}}
	s := New(fake, nil)

	// Full compiled document: the inner clause scopes the aggregation.
	doc := json.RawMessage(`{"query": {"term": {"host.keyword": "web01"}}}`)
	_, err := s.Suggest(context.Background(), Request{Field: "verb.keyword", Context: doc})
	require.NoError(t, err)
	query := fake.lastBody["query"].(map[string]any)
	assert.Contains(t, query, "term")

	// Bare clause without the query wrapper is accepted too.
	_, err = s.Suggest(context.Background(), Request{Field: "verb.keyword", Context: json.RawMessage(`{"match_all": {}}`)})
	require.NoError(t, err)
	assert.Contains(t, fake.lastBody["query"].(map[string]any), "match_all")

	// Malformed context degrades to match_all instead of failing.
	_, err = s.Suggest(context.Background(), Request{Field: "verb.keyword", Context: json.RawMessage(`{broken`)})
	require.NoError(t, err)
	assert.Contains(t, fake.lastBody["query"].(map[string]any), "match_all")
}

func TestSuggestDeduplicatesAndFormatsKeys(t *testing.T) {
	fake := &fakeSearcher{result: &client.SearchResult{
		Aggregations: buckets("GET", "GET", float64(500), float64(3.5), true, nil),
	}}
	s := New(fake, nil)

	values, err := s.Suggest(context.Background(), Request{Field: "verb.keyword"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "500", "3.5", "true"}, values)
}

func TestSuggestMissingAggregation(t *testing.T) {
	fake := &fakeSearcher{result: &client.SearchResult{}}
	s := New(fake, nil)

	values, err := s.Suggest(context.Background(), Request{Field: "verb.keyword"})
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestClampSize(t *testing.T) {
	assert.Equal(t, DefaultSize, ClampSize(0))
	assert.Equal(t, DefaultSize, ClampSize(-5))
	assert.Equal(t, 1, ClampSize(1))
	assert.Equal(t, 250, ClampSize(250))
	assert.Equal(t, MaxSize, ClampSize(MaxSize+1))
}

func TestPrefixPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"ge", "[gG][eE].*"},
		{"Web-01", "[wW][eE][bB]-01.*"},
		{"a.b", "[aA]\\.[bB].*"},
		{"x*", "[xX]\\*.*"},
		{"", ".*"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, prefixPattern(tt.term), "term %q", tt.term)
	}
}

func TestStaticCatalog(t *testing.T) {
	catalog := StaticCatalog{"status", "host.keyword", "verb.keyword"}
	fields, err := catalog.Fields(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"host.keyword", "status", "verb.keyword"}, fields)
}
