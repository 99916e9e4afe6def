package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/domain/crm"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/cache"
	"github.com/davibc90/cloudwalk-agents-swarm-challenge/internal/port/toolbox"
)

// UserInfoStore is the persistence surface the tool needs.
type UserInfoStore interface {
	GetUserInfo(ctx context.Context, nickname string) (*crm.UserInfo, error)
}

// compile-time interface check
var _ toolbox.Tool = (*UserInfoTool)(nil)

// UserInfoTool looks up the profile of the user behind the thread. The
// nickname comes from the request context, never from model arguments.
type UserInfoTool struct {
	store UserInfoStore
	cache cache.Cache
	ttl   time.Duration
}

// NewUserInfoTool creates the tool. cache may be nil.
func NewUserInfoTool(store UserInfoStore, c cache.Cache, ttl time.Duration) *UserInfoTool {
	return &UserInfoTool{store: store, cache: c, ttl: ttl}
}

func (t *UserInfoTool) Name() string { return "retrieve_user_info" }

func (t *UserInfoTool) Description() string {
	return "Retrieve user information from the database with this tool. No arguments are required."
}

func (t *UserInfoTool) Parameters() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"required":[]}`)
}

func (t *UserInfoTool) Execute(ctx context.Context, _ json.RawMessage, tc toolbox.Context) (string, error) {
	if tc.Nickname == "" {
		return "User info not found! Ask the user for the data...", nil
	}

	key := "userinfo:" + tc.Nickname
	if t.cache != nil {
		if data, ok := t.cache.Get(key); ok {
			return string(data), nil
		}
	}

	u, err := t.store.GetUserInfo(ctx, tc.Nickname)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "User info not found! Ask the user for the data...", nil
		}
		return fmt.Sprintf("An error occurred while retrieving user info: %v", err), nil
	}

	payload, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user info: %w", err)
	}
	result := fmt.Sprintf("User info retrieved from database:\n%s", payload)

	if t.cache != nil {
		t.cache.Set(key, []byte(result), t.ttl)
	}
	return result, nil
}
