package config

import (
	"strings"
	"time"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Cache struct{}

var _ CacheConfig = Cache{}

func (Cache) GetTokenCacheBackend() string {
	return strings.ToLower(GetEnv("TOKEN_CACHE_BACKEND", CacheBackendMemory))
}

func (Cache) GetTokenCacheTTL() time.Duration {
	return GetEnvDuration("TOKEN_CACHE_TTL", 5*time.Minute)
}

func (Cache) GetTokenCacheMaxEntries() int {
	return GetEnvInt("TOKEN_CACHE_MAX_ENTRIES", 1000)
}

func (Cache) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Cache) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Cache) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Cache) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "dashboard:token_validation")
}
