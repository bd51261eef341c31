package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/corpsite/corpsite/internal/rbac"
)

// ErrExpired is returned when a token is unknown or its TTL has elapsed.
var ErrExpired = errors.New("snapshot: expired or unknown token")

const keyPrefix = "corpsite:snapshot:"

// DefaultTTL bounds how long a stored snapshot stays readable.
const DefaultTTL = 30 * time.Minute

// Record is the serialized form of a snapshot.
type Record struct {
	PrincipalID int64     `json:"principal_id"`
	Roles       []string  `json:"roles"`
	Permissions []string  `json:"permissions"`
	Level       int       `json:"level"`
	TakenAt     time.Time `json:"taken_at"`
}

// RecordOf captures the current contents of s.
func RecordOf(s *Snapshot) Record {
	return Record{
		PrincipalID: s.PrincipalID(),
		Roles:       s.Roles(),
		Permissions: s.Permissions(),
		Level:       s.UserRoleLevel(),
		TakenAt:     time.Now().UTC(),
	}
}

// RedisStore keeps snapshots in Redis under opaque tokens so a rendering tier
// can pick them up without talking to the database.
type RedisStore struct {
	client    redis.Cmdable
	hierarchy *rbac.Hierarchy
	ttl       time.Duration
}

// NewRedisStore builds a store. A non-positive ttl selects DefaultTTL.
func NewRedisStore(client redis.Cmdable, h *rbac.Hierarchy, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if h == nil {
		h = rbac.DefaultHierarchy()
	}
	return &RedisStore{client: client, hierarchy: h, ttl: ttl}
}

// Save stores s and returns the token it can be fetched with.
func (r *RedisStore) Save(ctx context.Context, s *Snapshot) (string, error) {
	payload, err := json.Marshal(RecordOf(s))
	if err != nil {
		return "", fmt.Errorf("snapshot: encode: %w", err)
	}
	token := uuid.NewString()
	if err := r.client.Set(ctx, keyPrefix+token, payload, r.ttl).Err(); err != nil {
		return "", fmt.Errorf("snapshot: save: %w", err)
	}
	return token, nil
}

// Get rebuilds the snapshot stored under token.
func (r *RedisStore) Get(ctx context.Context, token string) (*Snapshot, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrExpired
	}
	payload, err := r.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: get: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	return New(r.hierarchy, rec.PrincipalID, rec.Roles, rec.Permissions), nil
}

// Delete drops the snapshot stored under token.
func (r *RedisStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("snapshot: delete: %w", err)
	}
	return nil
}
