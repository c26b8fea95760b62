package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filterdeck/filterdeck/internal/client"
	"github.com/filterdeck/filterdeck/internal/metrics"
	"github.com/filterdeck/filterdeck/internal/models"
	"github.com/filterdeck/filterdeck/internal/preview"
	"github.com/filterdeck/filterdeck/internal/suggest"
	"github.com/filterdeck/filterdeck/internal/translator"
	"github.com/filterdeck/filterdeck/pkg/filter"
)

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrSearchUnavailable = errors.New("search backend unavailable")
)

// FilterService owns the editing sessions and wires the core filter model to
// the OpenSearch transport. Each session holds exactly one current tree,
// replaced atomically on every edit; the core itself never locks.
type FilterService struct {
	mu        sync.RWMutex
	startedAt time.Time
	version   string
	sessions  map[string]*session

	translator *translator.OpenSearchTranslator
	osClient   *client.OpenSearchClient
	suggester  suggest.Suggester
	catalog    suggest.Catalog
}

type session struct {
	id        string
	createdAt time.Time
	tree      filter.Tree
}

// New creates a FilterService. osClient, suggester and catalog may be nil;
// search-backed operations then report ErrSearchUnavailable while editing,
// compilation and preview keep working.
func New(version string, osClient *client.OpenSearchClient, suggester suggest.Suggester, catalog suggest.Catalog) *FilterService {
	return &FilterService{
		startedAt:  time.Now().UTC(),
		version:    version,
		sessions:   make(map[string]*session),
		translator: translator.NewOpenSearchTranslator(),
		osClient:   osClient,
		suggester:  suggester,
		catalog:    catalog,
	}
}

// CreateSession opens an editing session with an empty tree.
func (s *FilterService) CreateSession() models.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &session{
		id:        uuid.NewString(),
		createdAt: time.Now().UTC(),
		tree:      filter.NewTree(),
	}
	s.sessions[sess.id] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return sessionResponse(sess)
}

// GetSession returns the session's current tree snapshot.
func (s *FilterService) GetSession(id string) (models.SessionResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.SessionResponse{}, ErrSessionNotFound
	}
	return sessionResponse(sess), nil
}

// DeleteSession discards a session and its tree.
func (s *FilterService) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// SessionCount reports the number of open sessions.
func (s *FilterService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// mutate swaps a session's tree for the result of fn applied to the current
// snapshot. fn is pure; the previous tree value is never touched.
func (s *FilterService) mutate(id string, fn func(filter.Tree) filter.Tree) (models.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.SessionResponse{}, ErrSessionNotFound
	}
	sess.tree = fn(sess.tree)
	return sessionResponse(sess), nil
}

// AddFilter attaches a condition relative to parentID in the session's tree.
func (s *FilterService) AddFilter(sessionID, parentID string, rel filter.Relation, cond *filter.Condition) (models.SessionResponse, error) {
	metrics.FilterEditsTotal.WithLabelValues("add").Inc()
	return s.mutate(sessionID, func(t filter.Tree) filter.Tree {
		return t.AddFilter(parentID, rel, cond)
	})
}

// ModifyFilter patches a condition or changes a group relation.
func (s *FilterService) ModifyFilter(sessionID, nodeID string, rel filter.Relation, patch filter.ConditionPatch) (models.SessionResponse, error) {
	metrics.FilterEditsTotal.WithLabelValues("modify").Inc()
	return s.mutate(sessionID, func(t filter.Tree) filter.Tree {
		return t.ModifyFilter(nodeID, rel, patch)
	})
}

// RemoveFilter deletes a node from the session's tree.
func (s *FilterService) RemoveFilter(sessionID, nodeID string) (models.SessionResponse, error) {
	metrics.FilterEditsTotal.WithLabelValues("remove").Inc()
	return s.mutate(sessionID, func(t filter.Tree) filter.Tree {
		return t.RemoveFilter(nodeID)
	})
}

// ToggleRelation flips a group's relation in the session's tree.
func (s *FilterService) ToggleRelation(sessionID, nodeID string) (models.SessionResponse, error) {
	metrics.FilterEditsTotal.WithLabelValues("toggle").Inc()
	return s.mutate(sessionID, func(t filter.Tree) filter.Tree {
		return t.ToggleRelation(nodeID)
	})
}

// ResetSession replaces the session's tree with an empty one.
func (s *FilterService) ResetSession(sessionID string) (models.SessionResponse, error) {
	metrics.FilterEditsTotal.WithLabelValues("reset").Inc()
	return s.mutate(sessionID, func(filter.Tree) filter.Tree {
		return filter.NewTree()
	})
}

// Compile lowers the session's current tree into a query document.
func (s *FilterService) Compile(sessionID string) (models.CompileResponse, error) {
	resp, err := s.GetSession(sessionID)
	if err != nil {
		return models.CompileResponse{}, err
	}
	return s.CompileTree(resp.Tree), nil
}

// CompileTree compiles a tree snapshot with its previews.
func (s *FilterService) CompileTree(t filter.Tree) models.CompileResponse {
	metrics.CompilationsTotal.WithLabelValues("tree").Inc()
	return models.CompileResponse{
		QueryDSL:      s.translator.Translate(t),
		Preview:       preview.Tree(t.Root),
		PreviewMarkup: preview.TreeMarkup(t.Root),
	}
}

// CompileFlat compiles a flat relation-tagged list with its previews.
func (s *FilterService) CompileFlat(list filter.FlatList) models.CompileResponse {
	metrics.CompilationsTotal.WithLabelValues("flat").Inc()
	return models.CompileResponse{
		QueryDSL:      s.translator.TranslateFlat(list),
		Preview:       preview.Flat(list),
		PreviewMarkup: preview.FlatMarkup(list),
	}
}

// Submit confirms the session's filter and emits the submission contract.
// The compiled document is always present and always valid.
func (s *FilterService) Submit(sessionID, customLabel string) (filter.FilterGroup, error) {
	resp, err := s.GetSession(sessionID)
	if err != nil {
		return filter.FilterGroup{}, err
	}
	return filter.FilterGroup{
		Filters:     resp.Tree.Root,
		CustomLabel: customLabel,
		QueryDSL:    s.translator.Translate(resp.Tree),
	}, nil
}

// Execute compiles the session's tree and runs it against the backend.
func (s *FilterService) Execute(ctx context.Context, sessionID string, limit int) (*models.SearchResponse, error) {
	resp, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.ExecuteQuery(ctx, s.translator.Translate(resp.Tree), limit)
}

// ExecuteQuery runs an already-compiled document against the backend.
func (s *FilterService) ExecuteQuery(ctx context.Context, queryDSL map[string]any, limit int) (*models.SearchResponse, error) {
	if s.osClient == nil {
		return nil, ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 10000 {
		limit = 10000
	}

	start := time.Now()
	result, err := s.osClient.Search(ctx, queryDSL, limit)
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchErrors.Inc()
		return nil, err
	}

	return &models.SearchResponse{
		RequestID:    uuid.NewString(),
		LatencyMS:    int(time.Since(start).Milliseconds()),
		ResultCount:  len(result.Hits),
		TotalMatches: result.TotalMatches,
		Results:      result.Hits,
		QueryDSL:     queryDSL,
	}, nil
}

// SuggestValues looks up values for a field, scoped to the session's current
// compiled query when a session id is given.
func (s *FilterService) SuggestValues(ctx context.Context, sessionID, field, query string, size int) ([]string, error) {
	if s.suggester == nil {
		return nil, ErrSearchUnavailable
	}

	var contextDoc json.RawMessage
	if sessionID != "" {
		if resp, err := s.GetSession(sessionID); err == nil {
			if encoded, err := json.Marshal(s.translator.Translate(resp.Tree)); err == nil {
				contextDoc = encoded
			}
		}
	}

	values, err := s.suggester.Suggest(ctx, suggest.Request{
		Field:   field,
		Query:   query,
		Size:    size,
		Context: contextDoc,
	})
	if err != nil {
		metrics.SuggestionLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SuggestionLookupsTotal.WithLabelValues("ok").Inc()
	return values, nil
}

// Fields returns the filterable field catalog.
func (s *FilterService) Fields(ctx context.Context) ([]string, error) {
	if s.catalog == nil {
		return nil, ErrSearchUnavailable
	}
	return s.catalog.Fields(ctx)
}

// Health reports liveness and backend availability.
func (s *FilterService) Health() models.HealthResponse {
	return models.HealthResponse{
		Status:   "ok",
		Version:  s.version,
		UptimeS:  int(time.Since(s.startedAt).Seconds()),
		Sessions: s.SessionCount(),
		Search:   s.osClient != nil,
	}
}

func sessionResponse(sess *session) models.SessionResponse {
	return models.SessionResponse{
		ID:        sess.id,
		CreatedAt: sess.createdAt,
		Tree:      sess.tree.Clone(),
	}
}
