package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jrsteele09/dashboard-gateway/server/gate"
	"github.com/jrsteele09/dashboard-gateway/server/timeentries"
)

// CreateTimeEntryRequest is the body of POST /api/time-entries.
type CreateTimeEntryRequest struct {
	Project string `json:"project"`
	Minutes int    `json:"minutes"`
	Note    string `json:"note"`
}

func (r *CreateTimeEntryRequest) Validate() error {
	r.Project = strings.TrimSpace(r.Project)
	switch {
	case r.Project == "":
		return errors.New("project is required")
	case r.Minutes <= 0:
		return errors.New("minutes must be greater than zero")
	case r.Minutes > 24*60:
		return errors.New("minutes cannot exceed one day")
	}
	return nil
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// caller returns the identity the endpoint gate attached to r.
func caller(r *http.Request) (gate.Caller, error) {
	c, ok := gate.CallerFromContext(r.Context())
	if !ok {
		return gate.Caller{}, errors.New("no caller in request context")
	}
	return c, nil
}

func (s *Server) MeHandler() gate.Handler {
	return func(r *http.Request, _ any) (*gate.Response, error) {
		c, err := caller(r)
		if err != nil {
			return nil, err
		}
		return gate.JSON(http.StatusOK, map[string]string{
			"username": c.Username,
			"email":    c.Email,
			"sub":      c.Subject,
		}), nil
	}
}

func (s *Server) RolesHandler() gate.Handler {
	return func(r *http.Request, _ any) (*gate.Response, error) {
		c, err := caller(r)
		if err != nil {
			return nil, err
		}
		roles, err := s.roles.Roles(r.Context(), c.Username)
		if err != nil {
			return nil, err
		}
		return gate.JSON(http.StatusOK, map[string]any{
			"username": c.Username,
			"roles":    roles,
		}), nil
	}
}

func (s *Server) CreateTimeEntryHandler() gate.Handler {
	return func(r *http.Request, body any) (*gate.Response, error) {
		c, err := caller(r)
		if err != nil {
			return nil, err
		}
		req := body.(*CreateTimeEntryRequest)
		entry, err := s.timeEntries.Create(c.Subject, timeentries.Entry{
			Project: req.Project,
			Minutes: req.Minutes,
			Note:    req.Note,
		})
		if err != nil {
			return nil, err
		}
		resp := gate.JSON(http.StatusCreated, entry)
		resp.Header = http.Header{"Location": []string{RouteAPITimeEntries + "/" + entry.ID}}
		return resp, nil
	}
}

func (s *Server) ListTimeEntriesHandler() gate.Handler {
	return func(r *http.Request, _ any) (*gate.Response, error) {
		c, err := caller(r)
		if err != nil {
			return nil, err
		}
		entries, err := s.timeEntries.List(c.Subject)
		if err != nil {
			return nil, err
		}
		return gate.JSON(http.StatusOK, entries), nil
	}
}

func (s *Server) GetTimeEntryHandler() gate.Handler {
	return func(r *http.Request, _ any) (*gate.Response, error) {
		c, err := caller(r)
		if err != nil {
			return nil, err
		}
		entry, err := s.timeEntries.Get(c.Subject, r.PathValue("id"))
		if err != nil {
			return nil, err
		}
		return gate.JSON(http.StatusOK, entry), nil
	}
}
