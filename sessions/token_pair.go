package sessions

import (
	"errors"
	"net/http"
)

// ErrNoLastAuthUser is returned when the request carries no LastAuthUser cookie.
var ErrNoLastAuthUser = errors.New("no last authenticated user cookie")

// TokenPair is the session read from request cookies. Any token may be empty.
type TokenPair struct {
	Username     string
	IDToken      string
	AccessToken  string
	RefreshToken string
}

// HasTokens reports whether both the ID and access token are present.
func (p TokenPair) HasTokens() bool {
	return p.IDToken != "" && p.AccessToken != ""
}

// Read resolves the username from LastAuthUser and loads that user's token cookies.
func (n CookieNames) Read(r *http.Request) (TokenPair, error) {
	user, err := r.Cookie(n.LastAuthUser())
	if err != nil || user.Value == "" {
		return TokenPair{}, ErrNoLastAuthUser
	}

	pair := TokenPair{Username: user.Value}
	pair.IDToken = cookieValue(r, n.IDToken(pair.Username))
	pair.AccessToken = cookieValue(r, n.AccessToken(pair.Username))
	pair.RefreshToken = cookieValue(r, n.RefreshToken(pair.Username))
	return pair, nil
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
