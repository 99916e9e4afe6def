package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/cache"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// mapCache is a TTL-less cache for tests.
type mapCache struct {
	entries map[string][]byte
	sets    int
}

var _ cache.Cache = (*mapCache)(nil)

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(key string) ([]byte, bool) {
	v, ok := c.entries[key]
	return v, ok
}

func (c *mapCache) Set(key string, value []byte, _ time.Duration) bool {
	c.entries[key] = value
	c.sets++
	return true
}

func (c *mapCache) Del(key string) { delete(c.entries, key) }
func (c *mapCache) Close()         {}

type fakeUserInfoStore struct {
	user  *crm.UserInfo
	err   error
	calls int
}

var _ UserInfoStore = (*fakeUserInfoStore)(nil)

func (s *fakeUserInfoStore) GetUserInfo(_ context.Context, _ string) (*crm.UserInfo, error) {
	s.calls++
	return s.user, s.err
}

func TestUserInfoToolFound(t *testing.T) {
	store := &fakeUserInfoStore{user: &crm.UserInfo{
		ID: "u1", Nickname: "alice", FullName: "Alice Jones", Plan: "pro",
	}}
	tool := NewUserInfoTool(store, nil, 0)

	out, err := tool.Execute(context.Background(), nil, toolbox.Context{Nickname: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "User info retrieved from database:") {
		t.Errorf("unexpected result: %q", out)
	}
	if !strings.Contains(out, "Alice Jones") {
		t.Errorf("expected the profile in the result, got %q", out)
	}
}

func TestUserInfoToolNotFound(t *testing.T) {
	store := &fakeUserInfoStore{err: domain.ErrNotFound}
	tool := NewUserInfoTool(store, nil, 0)

	out, err := tool.Execute(context.Background(), nil, toolbox.Context{Nickname: "ghost"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "User info not found! Ask the user for the data..." {
		t.Errorf("unexpected result: %q", out)
	}
}

func TestUserInfoToolMissingNickname(t *testing.T) {
	store := &fakeUserInfoStore{}
	tool := NewUserInfoTool(store, nil, 0)

	out, err := tool.Execute(context.Background(), nil, toolbox.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "User info not found! Ask the user for the data..." {
		t.Errorf("unexpected result: %q", out)
	}
	if store.calls != 0 {
		t.Error("no store lookup expected without a nickname")
	}
}

func TestUserInfoToolFoldsStoreErrors(t *testing.T) {
	store := &fakeUserInfoStore{err: errors.New("connection reset")}
	tool := NewUserInfoTool(store, nil, 0)

	out, err := tool.Execute(context.Background(), nil, toolbox.Context{Nickname: "alice"})
	if err != nil {
		t.Fatalf("expected the failure folded into content, got error %v", err)
	}
	if !strings.Contains(out, "connection reset") {
		t.Errorf("unexpected result: %q", out)
	}
}

func TestUserInfoToolCachesResult(t *testing.T) {
	store := &fakeUserInfoStore{user: &crm.UserInfo{ID: "u1", Nickname: "alice"}}
	c := newMapCache()
	tool := NewUserInfoTool(store, c, time.Minute)

	tc := toolbox.Context{Nickname: "alice"}
	first, err := tool.Execute(context.Background(), nil, tc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := tool.Execute(context.Background(), nil, tc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("cache hit diverged: %q vs %q", first, second)
	}
	if store.calls != 1 {
		t.Errorf("expected one store lookup, got %d", store.calls)
	}
}

type fakeSupportCallStore struct {
	created []crm.SupportCall
	err     error
}

var _ SupportCallStore = (*fakeSupportCallStore)(nil)

func (s *fakeSupportCallStore) CreateSupportCall(_ context.Context, c *crm.SupportCall) (*crm.SupportCall, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, *c)
	return c, nil
}

func TestSupportCallToolOpensCall(t *testing.T) {
	store := &fakeSupportCallStore{}
	tool := NewSupportCallTool(store)

	args := json.RawMessage(`{"user_id":"u1","issue_description":"cannot log in"}`)
	out, err := tool.Execute(context.Background(), args, toolbox.Context{Nickname: "alice"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "Successfully opened support call!") {
		t.Errorf("unexpected result: %q", out)
	}

	if len(store.created) != 1 {
		t.Fatalf("expected one call, got %d", len(store.created))
	}
	call := store.created[0]
	if call.Nickname != "alice" || call.Subject != "cannot log in" {
		t.Errorf("unexpected call: %+v", call)
	}
	if !strings.Contains(call.Details, "u1") {
		t.Errorf("expected the user id in the details, got %q", call.Details)
	}
}

func TestSupportCallToolFoldsStoreErrors(t *testing.T) {
	store := &fakeSupportCallStore{err: errors.New("insert failed")}
	tool := NewSupportCallTool(store)

	args := json.RawMessage(`{"user_id":"u1","issue_description":"broken"}`)
	out, err := tool.Execute(context.Background(), args, toolbox.Context{Nickname: "alice"})
	if err != nil {
		t.Fatalf("expected the failure folded into content, got error %v", err)
	}
	if !strings.Contains(out, "insert failed") {
		t.Errorf("unexpected result: %q", out)
	}
}

type fakeDocumentSearcher struct {
	docs    []crm.Document
	queries []string
}

var _ DocumentSearcher = (*fakeDocumentSearcher)(nil)

func (s *fakeDocumentSearcher) SearchDocuments(_ context.Context, query string, _ int) ([]crm.Document, error) {
	s.queries = append(s.queries, query)
	return s.docs, nil
}

func TestRetrieverToolFormatsResults(t *testing.T) {
	store := &fakeDocumentSearcher{docs: []crm.Document{
		{Source: "https://example.com/pricing", Content: "Plans start at $10."},
		{Source: "https://example.com/faq", Content: "Cancel anytime."},
	}}
	tool := NewRetrieverTool(store, nil, 5, 0)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"pricing"}`), toolbox.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[1] https://example.com/pricing") {
		t.Errorf("expected numbered sources, got %q", out)
	}
	if !strings.Contains(out, "Cancel anytime.") {
		t.Errorf("expected document content, got %q", out)
	}
}

func TestRetrieverToolEmptyQuery(t *testing.T) {
	store := &fakeDocumentSearcher{}
	tool := NewRetrieverTool(store, nil, 5, 0)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"  "}`), toolbox.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No documents found." {
		t.Errorf("unexpected result: %q", out)
	}
	if len(store.queries) != 0 {
		t.Error("blank query must not hit the store")
	}
}

func TestRetrieverToolNoMatches(t *testing.T) {
	store := &fakeDocumentSearcher{}
	tool := NewRetrieverTool(store, nil, 5, 0)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"nothing"}`), toolbox.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No documents found." {
		t.Errorf("unexpected result: %q", out)
	}
}

func TestRetrieverToolCachesByQuery(t *testing.T) {
	store := &fakeDocumentSearcher{docs: []crm.Document{
		{Source: "src", Content: "content"},
	}}
	c := newMapCache()
	tool := NewRetrieverTool(store, c, 5, time.Minute)

	args := json.RawMessage(`{"query":"pricing"}`)
	if _, err := tool.Execute(context.Background(), args, toolbox.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tool.Execute(context.Background(), args, toolbox.Context{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.queries) != 1 {
		t.Errorf("expected one store search, got %d", len(store.queries))
	}
}

func TestRegistryLookup(t *testing.T) {
	userInfo := NewUserInfoTool(&fakeUserInfoStore{}, nil, 0)
	retriever := NewRetrieverTool(&fakeDocumentSearcher{}, nil, 5, 0)
	r := NewRegistry(userInfo, retriever)

	if _, ok := r.Lookup("retrieve_user_info"); !ok {
		t.Error("expected retrieve_user_info registered")
	}
	if _, ok := r.Lookup("retriever_tool"); !ok {
		t.Error("expected retriever_tool registered")
	}
	if _, ok := r.Lookup("unknown"); ok {
		t.Error("unexpected lookup hit for unknown tool")
	}
	if got := len(r.Names()); got != 2 {
		t.Errorf("expected 2 registered tools, got %d", got)
	}
}
