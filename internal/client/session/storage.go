package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Persisted is everything the session keeps in durable storage.
type Persisted struct {
	Token    string          `json:"token"`
	Identity domain.Identity `json:"identity"`
}

// Storage is the durable side of the session. Load returns nil, nil when
// nothing is stored.
type Storage interface {
	Load(ctx context.Context) (*Persisted, error)
	Save(ctx context.Context, p Persisted) error
	Clear(ctx context.Context) error
}

// --- In-memory ---

// MemoryStorage keeps the session for the lifetime of the process.
type MemoryStorage struct {
	mu sync.Mutex
	p  *Persisted
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(context.Context) (*Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.p == nil {
		return nil, nil
	}
	cp := *m.p
	return &cp, nil
}

func (m *MemoryStorage) Save(_ context.Context, p Persisted) error {
	m.mu.Lock()
	m.p = &p
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Clear(context.Context) error {
	m.mu.Lock()
	m.p = nil
	m.mu.Unlock()
	return nil
}

// --- JSON file ---

// FileStorage keeps the session in a JSON file readable only by the owner.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultFilePath is the session file under the user's config directory.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "classifieds", "session.json")
}

func (f *FileStorage) Load(context.Context) (*Persisted, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var p Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return &p, nil
}

func (f *FileStorage) Save(_ context.Context, p Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (f *FileStorage) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// --- Redis ---

const redisKeyPrefix = "session:"

// RedisStorage keeps the session under one key, shared by every client
// using the same profile name.
type RedisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStorage stores the session under "session:<profile>". A zero ttl
// keeps it until logout.
func NewRedisStorage(client *redis.Client, profile string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, key: redisKeyPrefix + profile, ttl: ttl}
}

func (r *RedisStorage) Load(ctx context.Context) (*Persisted, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	var p Persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &p, nil
}

func (r *RedisStorage) Save(ctx context.Context, p Persisted) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}
