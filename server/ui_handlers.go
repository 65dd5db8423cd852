package server

import (
	"net/http"
)

// LoginPageHandler renders the sign-in page. Sign-in itself runs in the browser against
// the identity provider, which then sets the session cookies.
func (s *Server) LoginPageHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("login.html")
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		renderHTML(w, tmpl, map[string]any{
			"AppName":  s.config.GetAppName(),
			"ClientID": s.config.GetClientID(),
			"Landing":  s.config.GetLandingPath(),
		})
	}, nil
}

// DashboardHandler renders the landing page. The edge gate has already validated the
// session by the time it runs.
func (s *Server) DashboardHandler() (http.HandlerFunc, error) {
	tmpl, err := ParseTemplate("dashboard.html")
	if err != nil {
		return nil, err
	}

	return func(w http.ResponseWriter, r *http.Request) {
		username := ""
		if c, err := r.Cookie(s.cookies.Names.LastAuthUser()); err == nil {
			username = c.Value
		}
		renderHTML(w, tmpl, map[string]any{
			"AppName":  s.config.GetAppName(),
			"Username": username,
		})
	}, nil
}

// LogoutHandler clears every session cookie and returns to the login page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := ""
		if c, err := r.Cookie(s.cookies.Names.LastAuthUser()); err == nil {
			username = c.Value
		}
		s.cookies.Clear(w, username)
		http.Redirect(w, r, s.config.GetLoginPath(), http.StatusSeeOther)
	}
}
