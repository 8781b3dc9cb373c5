package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/scubelic/llmwatcher/internal/common"
	"github.com/scubelic/llmwatcher/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// Route paths of the backend contract.
const (
	RouteRoot     = "/"
	RouteRegister = "/register"
	RouteToken    = "/token"
	RouteMe       = "/users/me"
	RouteAPIKeys  = "/users/me/api_keys"
)

const (
	APIVersion     = "0.2.0"
	tokenValidity  = 30 * time.Minute
	bcryptMaxBytes = 72
)

// User is the fake backend's view of an account.
type User struct {
	ID           string
	Email        string
	GoogleAPIKey string
	GroqAPIKey   string

	passwordHash []byte
}

type failure struct {
	status int
	detail string
}

// Backend holds the fake's users and failure switches and serves the
// backend contract.
type Backend struct {
	secret []byte
	logger logging.Logger

	mu       sync.Mutex
	users    map[string]*User
	failures map[string]failure
	calls    map[string]int
	lastReq  map[string]*http.Request
}

// Server is a Backend listening on a random local port.
type Server struct {
	*httptest.Server
	*Backend
}

// New starts a fake backend on a random local port.
func New() *Server {
	b := NewBackend()
	return &Server{Server: httptest.NewServer(b.Handler()), Backend: b}
}

// NewBackend returns an empty backend with a fresh signing secret.
func NewBackend() *Backend {
	secret, err := common.MakeRandHexString(32)
	if err != nil {
		panic(err)
	}
	return &Backend{
		secret:   []byte(secret),
		logger:   logging.Nop(),
		users:    make(map[string]*User),
		failures: make(map[string]failure),
		calls:    make(map[string]int),
		lastReq:  make(map[string]*http.Request),
	}
}

// Handler returns the chi router serving the backend routes.
func (s *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.track)

	r.Get(RouteRoot, s.handleRoot)
	r.Post(RouteRegister, s.handleRegister)
	r.Post(RouteToken, s.handleToken)
	r.With(s.authenticate).Get(RouteMe, s.handleMe)
	r.With(s.authenticate).Post(RouteAPIKeys, s.handleStoreAPIKeys)
	return r
}

// SetLogger makes the backend log one line per request. Call it before
// serving.
func (s *Backend) SetLogger(l logging.Logger) {
	s.logger = l
}

func (s *Backend) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get(common.RequestIDHeader),
			"duration", time.Since(start),
		)
	})
}

// Fail makes every following request to route answer with status and
// detail until Recover is called.
func (s *Backend) Fail(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Recover removes a failure installed with Fail.
func (s *Backend) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Calls reports how many requests reached route.
func (s *Backend) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastRequest returns a clone of the most recent request to route, without
// its body, or nil.
func (s *Backend) LastRequest(route string) *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReq[route]
}

// Lookup returns a copy of the stored user.
func (s *Backend) Lookup(email string) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// IssueToken signs an access token for email without a password check.
func (s *Backend) IssueToken(email string, validity time.Duration) (string, error) {
	return generateToken(email, s.secret, validity)
}

func (s *Backend) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.lastReq[r.URL.Path] = r.Clone(r.Context())
		f, failing := s.failures[r.URL.Path]
		s.mu.Unlock()

		if failing {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type contextKey struct{}

func (s *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
		if !ok || raw == "" {
			unauthorized(w, "Not authenticated")
			return
		}
		email, err := emailFromToken(raw, s.secret)
		if err != nil {
			unauthorized(w, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		_, exists := s.users[email]
		s.mu.Unlock()
		if !exists {
			unauthorized(w, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(withEmail(r.Context(), email)))
	})
}

func (s *Backend) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "LLM Answer Watcher API", "version": APIVersion})
}

type registerBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeValidation(w, "body", "invalid JSON body")
		return
	}
	if !strings.Contains(body.Email, "@") {
		writeValidation(w, "email", "value is not a valid email address")
		return
	}

	pw := []byte(body.Password)
	if len(pw) > bcryptMaxBytes {
		pw = pw[:bcryptMaxBytes]
	}
	hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.MinCost)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	if _, dup := s.users[body.Email]; dup {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	u := &User{ID: uuid.NewString(), Email: body.Email, passwordHash: hash}
	s.users[body.Email] = u
	view := userView(u)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

func (s *Backend) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeValidation(w, "body", "invalid form body")
		return
	}
	email := r.PostForm.Get("username")
	pw := []byte(r.PostForm.Get("password"))
	if len(pw) > bcryptMaxBytes {
		pw = pw[:bcryptMaxBytes]
	}

	s.mu.Lock()
	u, ok := s.users[email]
	var hash []byte
	if ok {
		hash = u.passwordHash
	}
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(hash, pw) != nil {
		unauthorized(w, "Incorrect username or password")
		return
	}

	token, err := generateToken(email, s.secret, tokenValidity)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	email := emailFrom(r.Context())

	s.mu.Lock()
	view := userView(s.users[email])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

type apiKeysBody struct {
	GoogleAPIKey *string `json:"google_api_key"`
	GroqAPIKey   *string `json:"groq_api_key"`
}

// handleStoreAPIKeys follows the real backend: empty or missing values
// leave the stored key untouched.
func (s *Backend) handleStoreAPIKeys(w http.ResponseWriter, r *http.Request) {
	var body apiKeysBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeValidation(w, "body", "invalid JSON body")
		return
	}
	email := emailFrom(r.Context())

	s.mu.Lock()
	u := s.users[email]
	if body.GoogleAPIKey != nil && *body.GoogleAPIKey != "" {
		u.GoogleAPIKey = *body.GoogleAPIKey
	}
	if body.GroqAPIKey != nil && *body.GroqAPIKey != "" {
		u.GroqAPIKey = *body.GroqAPIKey
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"message": "API keys updated successfully"})
}
