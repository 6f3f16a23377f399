package api

import (
	"net/http"

	"github.com/formloop/formloop/internal/services"
)

func (rt *Router) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	var in services.FormInput
	if !decodeBody(w, r, &in) {
		return
	}
	form, err := rt.forms.Create(callerID(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Form created successfully",
		"form":    form,
	})
}

func (rt *Router) handleListForms(w http.ResponseWriter, r *http.Request) {
	forms, err := rt.forms.List(callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"forms": forms})
}

// handleGetForm is public: the submission page fetches the form
// definition without a session.
func (rt *Router) handleGetForm(w http.ResponseWriter, r *http.Request) {
	form, err := rt.forms.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"form": form})
}

func (rt *Router) handleUpdateForm(w http.ResponseWriter, r *http.Request) {
	var in services.FormInput
	if !decodeBody(w, r, &in) {
		return
	}
	form, err := rt.forms.Update(callerID(r), r.PathValue("id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Form updated successfully",
		"form":    form,
	})
}

func (rt *Router) handleDeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := rt.forms.Delete(callerID(r), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Form deleted successfully"})
}
