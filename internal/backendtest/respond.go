package backendtest

import (
	"context"
	"encoding/json"
	"net/http"
)

type userJSON struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	GoogleAPIKey *string `json:"google_api_key"`
	GroqAPIKey   *string `json:"groq_api_key"`
}

func userView(u *User) userJSON {
	v := userJSON{ID: u.ID, Email: u.Email}
	if u.GoogleAPIKey != "" {
		k := u.GoogleAPIKey
		v.GoogleAPIKey = &k
	}
	if u.GroqAPIKey != "" {
		k := u.GroqAPIKey
		v.GroqAPIKey = &k
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	if detail == "" {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body", field}, "msg": msg, "type": "value_error"}},
	})
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func withEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, contextKey{}, email)
}

func emailFrom(ctx context.Context) string {
	email, _ := ctx.Value(contextKey{}).(string)
	return email
}
