package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillhub/quillhub/client/config"
	"github.com/quillhub/quillhub/client/credentials"
	"github.com/quillhub/quillhub/client/transport"
)

func envelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"statusCode": status,
		"message":    message,
		"data":       data,
	})
}

// setupTestEnv points the client at a test server with isolated config
// and credential storage.
func setupTestEnv(t *testing.T, handler http.Handler) *httptest.Server {
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	require.NoError(t, config.Init(filepath.Join(t.TempDir(), "config.toml")))
	require.NoError(t, config.SetString("api.base_url", ts.URL))
	transport.Init()

	return ts
}

func TestLoginStoresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice", body["username"])

		envelope(w, http.StatusOK, "Success", map[string]interface{}{
			"account":      map[string]string{"id": "acc-1", "username": "alice"},
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
		})
	})
	mux.HandleFunc("/api/accounts/profile/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		envelope(w, http.StatusOK, "Success", map[string]interface{}{
			"id": "acc-1", "username": "alice",
		})
	})
	setupTestEnv(t, mux)

	session, err := Login("alice", "password1234")
	require.NoError(t, err)
	assert.Equal(t, "access-1", session.AccessToken)

	creds, err := credentials.Load()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "acc-1", creds.AccountID)
	assert.Equal(t, "refresh-1", creds.RefreshToken)

	profile, err := GetMyProfile()
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusBadRequest, "UsernameExists", map[string]string{
			"username": "UsernameExists",
		})
	})
	setupTestEnv(t, mux)

	err := Register("taken", "taken@example.com", "password1234", "Taken")
	require.Error(t, err)
	assert.True(t, transport.IsMessage(err, "UsernameExists"))

	apiErr, ok := err.(*transport.APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "UsernameExists", apiErr.Fields["username"])
}

func TestSilentRefreshRetriesOnce(t *testing.T) {
	refreshes := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-new" {
			envelope(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		envelope(w, http.StatusOK, "Success", map[string]interface{}{
			"items":      []map[string]string{{"id": "post-1"}},
			"nextCursor": "",
			"hasMore":    false,
		})
	})
	mux.HandleFunc("/api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshes++
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "refresh-old", body["refreshToken"])

		envelope(w, http.StatusOK, "Success", map[string]string{
			"accessToken":  "access-new",
			"refreshToken": "refresh-new",
		})
	})
	setupTestEnv(t, mux)

	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "access-stale",
		RefreshToken: "refresh-old",
	}))
	transport.SetAuthToken("access-stale")

	page, err := GetMyPosts("", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 1, refreshes)

	// The rotated pair replaced the stored one
	creds, err := credentials.Load()
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "refresh-new", creds.RefreshToken)
}

func TestRefreshFailureDropsSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts/me", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusUnauthorized, "Unauthorized", nil)
	})
	mux.HandleFunc("/api/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusUnauthorized, "InvalidToken", nil)
	})
	setupTestEnv(t, mux)

	require.NoError(t, credentials.Save(&credentials.Credentials{
		AccessToken:  "access-stale",
		RefreshToken: "refresh-dead",
	}))
	transport.SetAuthToken("access-stale")

	_, err := GetMyPosts("", 10)
	assert.ErrorIs(t, err, transport.ErrSessionExpired)

	creds, err := credentials.Load()
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestNotFoundMessageKey(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts/link/gone", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusNotFound, "NoPost", nil)
	})
	setupTestEnv(t, mux)

	_, err := GetPostByLink("gone")
	require.Error(t, err)
	assert.True(t, transport.IsMessage(err, "NoPost"))
}
