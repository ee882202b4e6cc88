package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists memoized translations in Redis.
//
// Each locale is stored as one hash at <prefix>locale:<locale>; the set at
// <prefix>locales lists the stored locales.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds configuration for the Redis store.
type RedisConfig struct {
	URL       string // Redis connection URL (e.g., "redis://localhost:6379")
	KeyPrefix string // Prefix for all keys (default: "ghostreader:")
}

// NewRedisStore creates a new Redis store with the given configuration.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisStoreFromClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreFromClient creates a RedisStore from an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "ghostreader:"
	}

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Save writes translations into Redis. Existing keys not present in
// translations are kept.
func (s *RedisStore) Save(ctx context.Context, translations Translations) error {
	for _, locale := range sortedLocales(translations) {
		entries := translations[locale]
		if len(entries) == 0 {
			continue
		}

		if err := s.client.HSet(ctx, s.localeKey(locale), hashArgs(entries)...).Err(); err != nil {
			return fmt.Errorf("saving locale %s: %w", locale, err)
		}
		if err := s.client.SAdd(ctx, s.localesKey(), locale).Err(); err != nil {
			return fmt.Errorf("registering locale %s: %w", locale, err)
		}
	}
	return nil
}

// Load reads all stored translations.
func (s *RedisStore) Load(ctx context.Context) (Translations, error) {
	locales, err := s.client.SMembers(ctx, s.localesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("listing locales: %w", err)
	}
	sort.Strings(locales)

	result := make(Translations, len(locales))
	for _, locale := range locales {
		entries, err := s.client.HGetAll(ctx, s.localeKey(locale)).Result()
		if err != nil {
			return nil, fmt.Errorf("loading locale %s: %w", locale, err)
		}
		result[locale] = entries
	}
	return result, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) localeKey(locale string) string {
	return s.keyPrefix + "locale:" + locale
}

func (s *RedisStore) localesKey() string {
	return s.keyPrefix + "locales"
}

// hashArgs flattens entries into sorted field/value pairs.
func hashArgs(entries map[string]string) []interface{} {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, 2*len(keys))
	for _, key := range keys {
		args = append(args, key, entries[key])
	}
	return args
}

func sortedLocales(translations Translations) []string {
	locales := make([]string, 0, len(translations))
	for locale := range translations {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}
