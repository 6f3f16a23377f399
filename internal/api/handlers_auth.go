package api

import (
	"net/http"

	"github.com/formloop/formloop/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// userView is the caller-visible slice of a user record.
type userView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func viewOf(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// setSessionCookie mirrors the token's 7-day lifetime. Secure is only
// set in production so local development over plain HTTP keeps working.
func (rt *Router) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(rt.auth.TokenTTL().Seconds()),
		HttpOnly: true,
		Secure:   rt.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Registration successful",
		"user":    viewOf(res.User),
		"token":   res.Token,
	})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    viewOf(res.User),
		"token":   res.Token,
	})
}

func (rt *Router) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := rt.auth.CurrentUser(callerID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":        u.ID,
			"email":     u.Email,
			"name":      u.Name,
			"role":      u.Role,
			"createdAt": u.CreatedAt,
		},
	})
}
