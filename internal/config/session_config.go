package config

import (
	"strings"
	"time"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetCookiePrefix() string {
	return GetEnv("COOKIE_PREFIX", "CognitoIdentityServiceProvider")
}

// GetCookieNamespace is "<prefix>.<clientId>", the root of every session cookie name.
func (s Session) GetCookieNamespace() string {
	return s.GetCookiePrefix() + "." + Identity{}.GetClientID()
}

// GetSessionMaxAge is the ceiling applied to refreshed cookie lifetimes.
func (Session) GetSessionMaxAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 24*time.Hour)
}

func (Session) GetLoginPath() string {
	return GetEnv("LOGIN_PATH", "/")
}

func (Session) GetLandingPath() string {
	return GetEnv("LANDING_PATH", "/dashboard")
}

func (Session) GetDefaultRole() string {
	return GetEnv("DEFAULT_ROLE", "employee")
}

// GetGroupRoleMapping reads ROLE_GROUP_MAPPING, a comma separated list of group=role pairs.
func (Session) GetGroupRoleMapping() map[string]string {
	mapping := map[string]string{}
	for _, pair := range strings.Split(GetEnv("ROLE_GROUP_MAPPING", ""), ",") {
		group, role, ok := strings.Cut(pair, "=")
		group, role = strings.TrimSpace(group), strings.TrimSpace(role)
		if !ok || group == "" || role == "" {
			continue
		}
		mapping[group] = role
	}
	return mapping
}
