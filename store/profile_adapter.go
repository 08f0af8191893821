package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/wanderkit/wanderkit/core"
)

// ProfileAdapter 是基于 core.Store 的画像持久化适配器，实现 core.ProfileStore。
//
// 存储布局：
//   - 单个画像：{KeyPrefix}:user:{userID} → JSON(UserProfile)
//   - 用户索引：{KeyPrefix}:users → JSON([]userID)
//
// Save 由 Persister 的单 worker 串行调用，用户索引的读改写不会竞争；
// 适配器内部仍持锁以兼容多实例并发落盘。
type ProfileAdapter struct {
	store core.Store

	// KeyPrefix 是存储 key 的前缀，默认 "profiles"
	KeyPrefix string

	mu sync.Mutex
}

// NewProfileAdapter 创建一个基于 core.Store 的画像适配器。
func NewProfileAdapter(s core.Store, keyPrefix string) *ProfileAdapter {
	if keyPrefix == "" {
		keyPrefix = "profiles"
	}
	return &ProfileAdapter{
		store:     s,
		KeyPrefix: keyPrefix,
	}
}

func (a *ProfileAdapter) Name() string {
	return "profile_adapter(" + a.store.Name() + ")"
}

func (a *ProfileAdapter) userKey(userID string) string {
	return a.KeyPrefix + ":user:" + userID
}

func (a *ProfileAdapter) indexKey() string {
	return a.KeyPrefix + ":users"
}

// Save 覆盖写单个画像，并把用户并入索引。
func (a *ProfileAdapter) Save(ctx context.Context, profile *core.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return errInvalidProfile
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Set(ctx, a.userKey(profile.UserID), data); err != nil {
		return err
	}
	return a.addToIndex(ctx, profile.UserID)
}

func (a *ProfileAdapter) addToIndex(ctx context.Context, userID string) error {
	ids, err := a.loadIndex(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == userID {
			return nil
		}
	}
	ids = append(ids, userID)
	sort.Strings(ids)

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, a.indexKey(), data)
}

func (a *ProfileAdapter) loadIndex(ctx context.Context) ([]string, error) {
	data, err := a.store.Get(ctx, a.indexKey())
	if err != nil {
		if core.IsStoreNotFound(err) {
			return []string{}, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// LoadAll 加载全部画像（引擎启动时调用一次）。
// 单条损坏的画像跳过，不拖垮整个启动。
func (a *ProfileAdapter) LoadAll(ctx context.Context) ([]*core.UserProfile, error) {
	ids, err := a.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*core.UserProfile{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, a.userKey(id))
	}
	kvs, err := a.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}

	out := make([]*core.UserProfile, 0, len(kvs))
	for _, key := range keys {
		data, ok := kvs[key]
		if !ok {
			continue
		}
		var p core.UserProfile
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

// errInvalidProfile 表示画像缺少主键，无法落盘。
var errInvalidProfile = core.NewDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, "store: profile missing user id")

var _ core.ProfileStore = (*ProfileAdapter)(nil)
