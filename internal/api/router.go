package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/formloop/formloop/internal/middleware"
	"github.com/formloop/formloop/internal/services"
)

// Router wires the HTTP surface to the services. All handlers are
// stateless; the only shared state is the store behind the services.
type Router struct {
	auth      *services.AuthService
	forms     *services.FormService
	responses *services.ResponseService
	analytics *services.AnalyticsService
	export    *services.ExportService

	secureCookies bool
}

func NewRouter(store Store, authn *middleware.Authenticator, secureCookies bool) *Router {
	return &Router{
		auth:          services.NewAuthService(store, authn.SignToken),
		forms:         services.NewFormService(store),
		responses:     services.NewResponseService(store),
		analytics:     services.NewAnalyticsService(store),
		export:        services.NewExportService(store),
		secureCookies: secureCookies,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", rt.handleRegister)
	mux.HandleFunc("POST /auth/login", rt.handleLogin)
	mux.Handle("GET /auth/me", middleware.RequireAuth(http.HandlerFunc(rt.handleMe)))

	mux.Handle("POST /forms", middleware.RequireAuth(http.HandlerFunc(rt.handleCreateForm)))
	mux.Handle("GET /forms", middleware.RequireAuth(http.HandlerFunc(rt.handleListForms)))
	mux.HandleFunc("GET /forms/{id}", rt.handleGetForm)
	mux.Handle("PUT /forms/{id}", middleware.RequireAuth(http.HandlerFunc(rt.handleUpdateForm)))
	mux.Handle("DELETE /forms/{id}", middleware.RequireAuth(http.HandlerFunc(rt.handleDeleteForm)))

	mux.HandleFunc("POST /forms/{id}/responses", rt.handleSubmitResponse)
	mux.Handle("GET /forms/{id}/responses", middleware.RequireAuth(http.HandlerFunc(rt.handleResponsesOverview)))
	mux.Handle("GET /forms/{id}/export", middleware.RequireAuth(http.HandlerFunc(rt.handleExport)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps the service taxonomy onto HTTP statuses. Unexpected
// errors are logged and surfaced as a generic 500 so internals never
// leak to the caller.
func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid, services.ErrorFormInactive:
			status = http.StatusBadRequest
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		}
		writeErrorMsg(w, status, se.Message)
		return
	}
	log.Printf("api: internal error: %v", err)
	writeErrorMsg(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// callerID returns the authenticated user id, or "" for anonymous
// requests. Handlers behind RequireAuth always see a non-empty id.
func callerID(r *http.Request) string {
	if c, ok := middleware.UserFromContext(r.Context()); ok {
		return c.UserID
	}
	return ""
}
