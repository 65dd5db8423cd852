// Package sessions reads and writes the cookie-resident session token pair.
package sessions

import (
	"net/http"
	"strings"
	"time"
)

// DefaultCookiePrefix is the namespace prefix used by the provider's browser SDK.
const DefaultCookiePrefix = "CognitoIdentityServiceProvider"

// MaxSessionAge caps the lifetime of any session cookie written by the gateway.
const MaxSessionAge = 24 * time.Hour

// CookieNames builds cookie names under "<prefix>.<clientId>".
type CookieNames struct {
	Namespace string
}

// NewCookieNames joins prefix and clientID into a namespace.
func NewCookieNames(prefix, clientID string) CookieNames {
	if prefix == "" {
		prefix = DefaultCookiePrefix
	}
	return CookieNames{Namespace: prefix + "." + clientID}
}

func (n CookieNames) LastAuthUser() string {
	return n.Namespace + ".LastAuthUser"
}

func (n CookieNames) IDToken(username string) string {
	return n.userCookie(username, "idToken")
}

func (n CookieNames) AccessToken(username string) string {
	return n.userCookie(username, "accessToken")
}

func (n CookieNames) RefreshToken(username string) string {
	return n.userCookie(username, "refreshToken")
}

func (n CookieNames) userCookie(username, name string) string {
	return strings.Join([]string{n.Namespace, username, name}, ".")
}

// CappedMaxAge returns min(expiresIn, ceiling) in whole seconds. A non-positive
// expiresIn means the provider reported no lifetime and the ceiling applies.
// The ceiling itself never exceeds MaxSessionAge.
func CappedMaxAge(expiresIn, ceiling time.Duration) int {
	if ceiling <= 0 || ceiling > MaxSessionAge {
		ceiling = MaxSessionAge
	}
	if expiresIn <= 0 || expiresIn > ceiling {
		expiresIn = ceiling
	}
	return int(expiresIn / time.Second)
}

// Writer writes and clears session cookies on responses.
type Writer struct {
	Names  CookieNames
	MaxAge time.Duration
	// Insecure drops the Secure attribute, for plain-http local development only.
	Insecure bool
}

func (cw Writer) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   !cw.Insecure,
		HttpOnly: false, // read by the browser SDK
		SameSite: http.SameSiteLaxMode,
	}
}

// WriteTokens sets the ID and access cookies of username to a refreshed pair.
func (cw Writer) WriteTokens(w http.ResponseWriter, username, idToken, accessToken string, expiresIn time.Duration) {
	maxAge := CappedMaxAge(expiresIn, cw.MaxAge)
	http.SetCookie(w, cw.cookie(cw.Names.IDToken(username), idToken, maxAge))
	http.SetCookie(w, cw.cookie(cw.Names.AccessToken(username), accessToken, maxAge))
}

// Clear expires LastAuthUser and, when username is known, the three session cookies.
func (cw Writer) Clear(w http.ResponseWriter, username string) {
	http.SetCookie(w, cw.cookie(cw.Names.LastAuthUser(), "", -1))
	if username == "" {
		return
	}
	for _, name := range []string{
		cw.Names.IDToken(username),
		cw.Names.AccessToken(username),
		cw.Names.RefreshToken(username),
	} {
		http.SetCookie(w, cw.cookie(name, "", -1))
	}
}

// ReplaceRequestCookies overwrites (or adds) the named cookies on r so that handlers
// further down the chain observe the new values.
func ReplaceRequestCookies(r *http.Request, values map[string]string) {
	kept := make([]string, 0, len(r.Cookies())+len(values))
	for _, c := range r.Cookies() {
		if _, replaced := values[c.Name]; replaced {
			continue
		}
		kept = append(kept, c.Name+"="+c.Value)
	}
	for name, value := range values {
		kept = append(kept, name+"="+value)
	}
	r.Header.Set("Cookie", strings.Join(kept, "; "))
}
