package client

import "context"

// Client is the backend contract used by the credential flow.
type Client interface {
	Register(ctx context.Context, email, password string) error
	Login(ctx context.Context, email, password string) (*Token, error)
	GetCurrentUser(ctx context.Context, token string) (*User, error)
	StoreAPIKeys(ctx context.Context, token string, keys APIKeys) error
	Ping(ctx context.Context) error
}

// Token is the result of a successful token exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the profile returned by GET /users/me.
type User struct {
	Email        string `json:"email"`
	GoogleAPIKey string `json:"google_api_key"`
	GroqAPIKey   string `json:"groq_api_key"`
}

// APIKeys are the third-party credentials stored on the backend. Both
// fields are always sent; an empty string overwrites nothing on the current
// backend but the client does not rely on that.
type APIKeys struct {
	GoogleAPIKey string `json:"google_api_key"`
	GroqAPIKey   string `json:"groq_api_key"`
}

// Keys extracts the stored API keys from a user profile.
func (u *User) Keys() APIKeys {
	if u == nil {
		return APIKeys{}
	}
	return APIKeys{GoogleAPIKey: u.GoogleAPIKey, GroqAPIKey: u.GroqAPIKey}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Detail any `json:"detail"`
}
