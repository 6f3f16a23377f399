package api

import (
	"net/http"

	"github.com/formloop/formloop/internal/models"
	"github.com/formloop/formloop/internal/services"
)

// clientIP is best-effort request metadata for the dashboard: first
// non-empty of the forwarded-for and real-ip headers, else "unknown".
func clientIP(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		return v
	}
	if v := r.Header.Get("X-Real-IP"); v != "" {
		return v
	}
	return "unknown"
}

func (rt *Router) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers []models.Answer `json:"answers"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	_, err := rt.responses.Submit(services.SubmitRequest{
		FormID:    r.PathValue("id"),
		Answers:   req.Answers,
		IPAddress: clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Response submitted successfully"})
}

func (rt *Router) handleResponsesOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := rt.analytics.ResponsesOverview(callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := rt.export.ExportCSV(callerID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	_ = services.WriteCSV(w, res.Form, res.Responses)
}
