package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	IdentityConfig
	SessionConfig
	CacheConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
	IsDev() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type IdentityConfig interface {
	GetIssuerURL() string
	GetTokenURL() string
	GetClientID() string
	GetClientSecret() string
	GetUserPoolID() string
	GetRegion() string
	GetIdentityTimeout() time.Duration
}

type SessionConfig interface {
	GetCookiePrefix() string
	GetCookieNamespace() string
	GetSessionMaxAge() time.Duration
	GetLoginPath() string
	GetLandingPath() string
	GetDefaultRole() string
	GetGroupRoleMapping() map[string]string
}

type CacheConfig interface {
	GetTokenCacheBackend() string
	GetTokenCacheTTL() time.Duration
	GetTokenCacheMaxEntries() int
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type mainConfig struct {
	EnvVars
	Cors
	Identity
	Session
	Cache
}

// New loads an optional .env file and returns the environment backed configuration.
// Variables already present in the environment win over the file.
func New(envFiles ...string) Config {
	_ = godotenv.Load(envFiles...)
	return mainConfig{}
}
