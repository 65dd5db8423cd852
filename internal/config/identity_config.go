package config

import (
	"fmt"
	"time"
)

type Identity struct{}

var _ IdentityConfig = Identity{}

// GetIssuerURL returns the OIDC issuer. When unset it is derived from the Cognito user pool.
func (i Identity) GetIssuerURL() string {
	if issuer := GetEnv("OIDC_ISSUER_URL", ""); issuer != "" {
		return issuer
	}
	if pool := i.GetUserPoolID(); pool != "" {
		return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", i.GetRegion(), pool)
	}
	return ""
}

// GetTokenURL overrides the discovered token endpoint (hosted UI domains differ from the issuer host).
func (Identity) GetTokenURL() string {
	return GetEnv("OIDC_TOKEN_URL", "")
}

func (Identity) GetClientID() string {
	return GetEnv("OIDC_CLIENT_ID", "")
}

func (Identity) GetClientSecret() string {
	return GetEnv("OIDC_CLIENT_SECRET", "")
}

func (Identity) GetUserPoolID() string {
	return GetEnv("COGNITO_USER_POOL_ID", "")
}

func (Identity) GetRegion() string {
	return GetEnv("AWS_REGION", "eu-west-1")
}

// GetIdentityTimeout bounds every verify/refresh/group lookup against the identity provider.
func (Identity) GetIdentityTimeout() time.Duration {
	return GetEnvDuration("IDENTITY_TIMEOUT", 5*time.Second)
}
