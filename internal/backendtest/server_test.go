package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/scubelic/llmwatcher/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, srv *Server, path, contentType, body, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&m))
	return m
}

func login(t *testing.T, srv *Server, email, password string) *http.Response {
	form := url.Values{"username": {email}, "password": {password}}
	return post(t, srv, RouteToken, "application/x-www-form-urlencoded", form.Encode(), "")
}

func TestRoot(t *testing.T) {
	srv := New()
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + RouteRoot)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "LLM Answer Watcher API", body["message"])
	assert.Equal(t, APIVersion, body["version"])
}

func TestRegister(t *testing.T) {
	srv := New()
	defer srv.Close()

	resp := post(t, srv, RouteRegister, "application/json", `{"email":"a@b.co","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "a@b.co", body["email"])
	assert.Nil(t, body["google_api_key"])
	assert.NotEmpty(t, body["id"])

	resp = post(t, srv, RouteRegister, "application/json", `{"email":"a@b.co","password":"pw"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", decode(t, resp.Body)["detail"])

	resp = post(t, srv, RouteRegister, "application/json", `{"email":"nope","password":"pw"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestToken(t *testing.T) {
	srv := New()
	defer srv.Close()
	post(t, srv, RouteRegister, "application/json", `{"email":"a@b.co","password":"pw"}`, "")

	resp := login(t, srv, "a@b.co", "bad")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	assert.Equal(t, "Incorrect username or password", decode(t, resp.Body)["detail"])

	resp = login(t, srv, "ghost@b.co", "pw")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = login(t, srv, "a@b.co", "pw")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "bearer", body["token_type"])

	email, err := emailFromToken(body["access_token"].(string), srv.secret)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", email)
}

func TestLongPasswordTruncatedLikeBcrypt(t *testing.T) {
	srv := New()
	defer srv.Close()

	long := strings.Repeat("x", 80)
	post(t, srv, RouteRegister, "application/json", `{"email":"a@b.co","password":"`+long+`"}`, "")

	resp := login(t, srv, "a@b.co", strings.Repeat("x", 72)+"different")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIKeys(t *testing.T) {
	srv := New()
	defer srv.Close()
	post(t, srv, RouteRegister, "application/json", `{"email":"a@b.co","password":"pw"}`, "")
	token, err := srv.IssueToken("a@b.co", time.Minute)
	require.NoError(t, err)

	resp := post(t, srv, RouteAPIKeys, "application/json", `{"google_api_key":"g","groq_api_key":"q"}`, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "API keys updated successfully", decode(t, resp.Body)["message"])

	resp = post(t, srv, RouteAPIKeys, "application/json", `{"google_api_key":"","groq_api_key":"q2"}`, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	u, ok := srv.Lookup("a@b.co")
	require.True(t, ok)
	assert.Equal(t, "g", u.GoogleAPIKey, "empty value keeps the stored key")
	assert.Equal(t, "q2", u.GroqAPIKey)
}

func TestAuthentication(t *testing.T) {
	srv := New()
	defer srv.Close()
	post(t, srv, RouteRegister, "application/json", `{"email":"a@b.co","password":"pw"}`, "")

	get := func(token string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+RouteMe, nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
		}
		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusUnauthorized, get("").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get("garbage").StatusCode)

	expired, err := srv.IssueToken("a@b.co", -time.Minute)
	require.NoError(t, err)
	resp := get(expired)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Could not validate credentials", decode(t, resp.Body)["detail"])

	unknown, err := srv.IssueToken("ghost@b.co", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(unknown).StatusCode)

	valid, err := srv.IssueToken("a@b.co", time.Minute)
	require.NoError(t, err)
	resp = get(valid)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@b.co", decode(t, resp.Body)["email"])
}

func TestFailAndRecover(t *testing.T) {
	srv := New()
	defer srv.Close()

	srv.Fail(RouteRoot, http.StatusServiceUnavailable, "maintenance")
	resp, err := srv.Client().Get(srv.URL + RouteRoot)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	srv.Recover(RouteRoot)
	resp2, err := srv.Client().Get(srv.URL + RouteRoot)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, 2, srv.Calls(RouteRoot))
}
