package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Pages (behind the edge gate). The login and landing paths come from config.
	RouteLogout = "/logout"

	// Operational
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"

	// API Routes (behind the endpoint gate)
	RouteAPIMe          = "/api/me"
	RouteAPIAdminRoles  = "/api/admin/roles"
	RouteAPITimeEntries = "/api/time-entries"
	RouteAPITimeEntry   = "/api/time-entries/{id}"

	// Static Asset Routes (patterns)
	RouteStatic = "/static/"

	// RoleAdmin gates the admin API.
	RoleAdmin = "admin"
)
