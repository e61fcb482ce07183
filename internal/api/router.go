package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/api/recovery"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
)

// RouterDeps are the services and cross-cutting collaborators behind the HTTP API.
type RouterDeps struct {
	Trips      *services.TripService
	Users      *services.UserService
	Health     ServiceHealth
	Authorizer auth.Authorizer
}

// NewRouter wires HTTP routes to handlers. Only /api/health skips the authorizer.
func NewRouter(deps RouterDeps, log zerolog.Logger) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware(log))
	root.Use(RequestLogger(log))

	healthHandler := NewHealthHandler(deps.Health)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods(http.MethodGet)

	authz := deps.Authorizer
	if authz == nil {
		authz = auth.NewNoopAuthorizer()
	}
	apiR := root.PathPrefix("/api").Subrouter()
	apiR.Use(Authenticate(authz, log))

	trips := NewTripHandler(deps.Trips, log)
	apiR.HandleFunc("/create-trip", trips.CreateTrip).Methods(http.MethodPost)
	apiR.HandleFunc("/trips", trips.ListTrips).Methods(http.MethodGet)
	apiR.HandleFunc("/trips/{tripId}", trips.GetTrip).Methods(http.MethodGet)
	apiR.HandleFunc("/trips/{tripId}/calendar.ics", trips.Calendar).Methods(http.MethodGet)

	users := NewUserHandler(deps.Users, log)
	apiR.HandleFunc("/users", users.UpsertUser).Methods(http.MethodPost)
	apiR.HandleFunc("/users/{userId}", users.GetUser).Methods(http.MethodGet)

	// Admin; literal paths are registered before {tripId}.
	apiR.HandleFunc("/admin/trips/export.csv", AdminOnly(trips.ExportCSV)).Methods(http.MethodGet)
	apiR.HandleFunc("/admin/trips/search", AdminOnly(trips.SearchTrips)).Methods(http.MethodGet)
	apiR.HandleFunc("/admin/trips/reindex", AdminOnly(trips.Reindex)).Methods(http.MethodPost)
	apiR.HandleFunc("/admin/trips/{tripId}", AdminOnly(trips.DeleteTrip)).Methods(http.MethodDelete)
	apiR.HandleFunc("/admin/users", AdminOnly(users.ListUsers)).Methods(http.MethodGet)

	return root
}
