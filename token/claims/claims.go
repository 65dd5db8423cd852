// Package claims turns a verified identity token into caller identity and roles.
package claims

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	autherrors "github.com/jrsteele09/dashboard-gateway/internal/errors"
	"github.com/jrsteele09/dashboard-gateway/internal/utils"
)

// Claims are the identity token fields consumed by the gateway.
type Claims struct {
	Subject   string
	Email     string
	Username  string
	ExpiresAt time.Time
	// Groups is the provider's group claim when present. Roles are always resolved remotely.
	Groups []string
}

// Decode reads the payload of raw without checking its signature. raw must be a token
// that was verified or issued by a refresh earlier in the same call path.
func Decode(raw string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return Claims{}, autherrors.Wrapf(autherrors.ErrInvalidToken, "decode claims: %v", err)
	}

	sub, _ := mc.GetSubject()
	if sub == "" {
		return Claims{}, fmt.Errorf("%w: sub", autherrors.ErrMissingClaim)
	}

	c := Claims{Subject: sub}
	c.Email, _ = mc["email"].(string)
	c.Username, _ = mc["cognito:username"].(string)
	if c.Username == "" {
		c.Username, _ = mc["username"].(string)
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if groups, ok := mc["cognito:groups"].([]any); ok {
		c.Groups = utils.ToStringSlice(groups)
	}
	return c, nil
}
