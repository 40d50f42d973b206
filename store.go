package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Redis key layout. Each collection keeps a JSON document per entry, a
// membership set for listing, and whatever secondary indexes its queries
// need: a date-scored sorted set for items, a per-email set and a
// one-claim-per-item guard key for recovered claims.
const (
	itemKeyPrefix      = "item:"
	itemsSetKey        = "items"
	itemsByDateKey     = "items:by_date"
	recoveredKeyPrefix = "recovered:"
	recoveredSetKey    = "recovered"
	recoveredEmailKey  = "recovered:email:"
	recoveredItemKey   = "recovered:item:"
)

// RedisStore provides item and recovery-claim persistence in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// ValidateID reports whether id is a well-formed item identifier.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// InsertItem stores a new item and returns its generated identifier.
func (s *RedisStore) InsertItem(ctx context.Context, item *Item) (string, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	data, err := json.Marshal(item)
	if err != nil {
		return "", err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, itemKeyPrefix+item.ID, data, 0)
	pipe.SAdd(ctx, itemsSetKey, item.ID)
	pipe.ZAdd(ctx, itemsByDateKey, &redis.Z{Score: item.DateScore(), Member: item.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return item.ID, nil
}

// GetItem retrieves an item by ID.
func (s *RedisStore) GetItem(ctx context.Context, id string) (*Item, error) {
	data, err := s.client.Get(ctx, itemKeyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var item Item
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ReplaceItem overwrites the whole document for id. Returns the number of
// matched documents: 0 when the item does not exist, 1 otherwise.
func (s *RedisStore) ReplaceItem(ctx context.Context, id string, item *Item) (int64, error) {
	exists, err := s.client.Exists(ctx, itemKeyPrefix+id).Result()
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	item.ID = id
	data, err := json.Marshal(item)
	if err != nil {
		return 0, err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, itemKeyPrefix+id, data, 0)
	pipe.ZAdd(ctx, itemsByDateKey, &redis.Z{Score: item.DateScore(), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return 1, nil
}

// PatchStatus updates exactly the status field of an item. Returns matched
// and modified counts; modified is 0 when the status already had that value.
func (s *RedisStore) PatchStatus(ctx context.Context, id, status string) (matched, modified int64, err error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	if item.Status == status {
		return 1, 0, nil
	}
	item.Status = status
	data, err := json.Marshal(item)
	if err != nil {
		return 1, 0, err
	}
	if err := s.client.Set(ctx, itemKeyPrefix+id, data, 0).Err(); err != nil {
		return 1, 0, err
	}
	return 1, 1, nil
}

// DeleteItem removes an item by ID along with its index entries. Returns the
// number of deleted documents.
func (s *RedisStore) DeleteItem(ctx context.Context, id string) (int64, error) {
	pipe := s.client.Pipeline()
	del := pipe.Del(ctx, itemKeyPrefix+id)
	pipe.SRem(ctx, itemsSetKey, id)
	pipe.ZRem(ctx, itemsByDateKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return del.Val(), nil
}

// ListItems returns items from the store. sort "date_desc" orders by the
// date index, newest first; any other value yields storage order. limit 0
// means unbounded.
func (s *RedisStore) ListItems(ctx context.Context, sort string, limit int) ([]*Item, error) {
	var ids []string
	var err error
	if sort == "date_desc" {
		stop := int64(-1)
		if limit > 0 {
			stop = int64(limit) - 1
		}
		ids, err = s.client.ZRevRange(ctx, itemsByDateKey, 0, stop).Result()
	} else {
		ids, err = s.client.SMembers(ctx, itemsSetKey).Result()
		if err == nil && limit > 0 && len(ids) > limit {
			ids = ids[:limit]
		}
	}
	if err != nil {
		return nil, err
	}
	docs, err := s.fetchDocs(ctx, itemKeyPrefix, ids)
	if err != nil {
		return nil, err
	}
	items := make([]*Item, 0, len(ids))
	for _, data := range docs {
		var item Item
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

// InsertRecovered stores a recovery claim, enforcing at most one claim per
// original item via an atomic guard key. Returns ErrAlreadyRecovered when a
// claim for the item exists.
func (s *RedisStore) InsertRecovered(ctx context.Context, rec *RecoveredItem) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	ok, err := s.client.SetNX(ctx, recoveredItemKey+rec.OriginalItemID, rec.ID, 0).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrAlreadyRecovered
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, recoveredKeyPrefix+rec.ID, data, 0)
	pipe.SAdd(ctx, recoveredSetKey, rec.ID)
	pipe.SAdd(ctx, recoveredEmailKey+rec.Email, rec.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// ListRecoveredByEmail returns all claims recorded for the given email.
func (s *RedisStore) ListRecoveredByEmail(ctx context.Context, email string) ([]*RecoveredItem, error) {
	ids, err := s.client.SMembers(ctx, recoveredEmailKey+email).Result()
	if err != nil {
		return nil, err
	}
	docs, err := s.fetchDocs(ctx, recoveredKeyPrefix, ids)
	if err != nil {
		return nil, err
	}
	recs := make([]*RecoveredItem, 0, len(ids))
	for _, data := range docs {
		var rec RecoveredItem
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		recs = append(recs, &rec)
	}
	return recs, nil
}

// fetchDocs pipelines GETs for the given ids, skipping entries that vanished
// between the index read and the fetch.
func (s *RedisStore) fetchDocs(ctx context.Context, prefix string, ids []string) ([][]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf("%s%s", prefix, id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	docs := make([][]byte, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		docs = append(docs, []byte(data))
	}
	return docs, nil
}
