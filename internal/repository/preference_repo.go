package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"site-assistant/internal/domain"
)

// PreferenceRepository persiste la unica preferencia de la conversacion.
type PreferenceRepository interface {
	Load(ctx context.Context) (domain.LearningStyle, bool, error)
	Save(ctx context.Context, style domain.LearningStyle) error
}

// MemoryPreferenceRepository vive lo mismo que el proceso.
type MemoryPreferenceRepository struct {
	mu    sync.Mutex
	style domain.LearningStyle
	set   bool
}

func NewMemoryPreferenceRepository() *MemoryPreferenceRepository {
	return &MemoryPreferenceRepository{}
}

func (r *MemoryPreferenceRepository) Load(_ context.Context) (domain.LearningStyle, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.style, r.set, nil
}

func (r *MemoryPreferenceRepository) Save(_ context.Context, style domain.LearningStyle) error {
	if !style.Valid() {
		return domain.ErrInvalidPreference
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.style = style
	r.set = true
	return nil
}

const preferenceKeyPrefix = "assistant:preference:"

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisPreferenceRepository guarda la preferencia bajo una clave fija por sesion.
type RedisPreferenceRepository struct {
	client redisKV
	key    string
}

func NewRedisPreferenceRepository(client *redis.Client, sessionKey string) *RedisPreferenceRepository {
	return newRedisPreferenceRepository(client, sessionKey)
}

func newRedisPreferenceRepository(client redisKV, sessionKey string) *RedisPreferenceRepository {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" {
		sessionKey = "default"
	}
	return &RedisPreferenceRepository{client: client, key: preferenceKeyPrefix + sessionKey}
}

// Load ignora valores guardados que ya no son estilos validos.
func (r *RedisPreferenceRepository) Load(ctx context.Context) (domain.LearningStyle, bool, error) {
	raw, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	style, err := domain.ParseLearningStyle(raw)
	if err != nil {
		return "", false, nil
	}
	return style, true, nil
}

func (r *RedisPreferenceRepository) Save(ctx context.Context, style domain.LearningStyle) error {
	if !style.Valid() {
		return domain.ErrInvalidPreference
	}
	return r.client.Set(ctx, r.key, string(style), 0).Err()
}
