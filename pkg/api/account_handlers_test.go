package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidora/vidora/pkg/auth"
	"github.com/vidora/vidora/pkg/media"
	"github.com/vidora/vidora/pkg/middleware"
	"github.com/vidora/vidora/pkg/observability"
	"github.com/vidora/vidora/pkg/session"
	"github.com/vidora/vidora/pkg/storage"
)

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, _ := newTestServerWithMedia(t)
	return srv
}

func newTestServerWithMedia(t *testing.T) (*Server, string) {
	t.Helper()

	directory := storage.NewMemoryDirectory()
	logger := observability.NewLogger(observability.ErrorLevel, io.Discard)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	issuer := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte("test-access-secret"),
		AccessExpiry:  time.Minute,
		RefreshSecret: []byte("test-refresh-secret"),
		RefreshExpiry: time.Hour,
	})

	cfg := storage.DefaultConfig()
	cfg.MediaRoot = t.TempDir()
	uploader, err := media.NewFilesystemUploader(cfg)
	require.NoError(t, err)

	srv := NewServer(Options{
		Sessions:      session.NewManager(directory, hasher, issuer, logger),
		Gate:          middleware.NewAuthGate(issuer, directory, logger),
		Uploader:      uploader,
		Health:        observability.NewHealthChecker(directory),
		Logger:        logger,
		CORSOrigins:   []string{"*"},
		MaxBodyBytes:  16 << 20,
		SecureCookies: false,
		StaticRoot:    uploader.Root(),
	})
	return srv, cfg.MediaRoot
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doRequest(srv *Server, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func registerAccount(t *testing.T, srv *Server, username string) envelope {
	t.Helper()

	body, contentType := multipartBody(t,
		map[string]string{
			"fullname": "Test Person",
			"email":    username + "@example.com",
			"username": username,
			"password": "passw0rd",
		},
		map[string]string{"avatar": "avatar.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec, env := doRequest(srv, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return env
}

func loginAccount(t *testing.T, srv *Server, username, password string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	payload := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(srv, req)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	env := registerAccount(t, srv, "creator")

	assert.True(t, env.Success)
	assert.Equal(t, http.StatusCreated, env.StatusCode)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "creator", user["username"])
	assert.NotEmpty(t, user["_id"])
	assert.NotEmpty(t, user["avatar"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "refreshToken")
}

func TestRegister_WithCoverImage(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t,
		map[string]string{
			"fullname": "Cover Person",
			"email":    "cover@example.com",
			"username": "cover",
			"password": "passw0rd",
		},
		map[string]string{"avatar": "avatar.png", "coverImg": "cover.jpg"},
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	rec, env := doRequest(srv, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.NotEmpty(t, user["coverImage"])
}

func TestRegister_Failures(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "taken")

	cases := []struct {
		name       string
		fields     map[string]string
		files      map[string]string
		wantStatus int
	}{
		{
			name: "missing avatar",
			fields: map[string]string{
				"fullname": "No Avatar", "email": "na@example.com",
				"username": "noavatar", "password": "passw0rd",
			},
			files:      nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "blank field",
			fields: map[string]string{
				"fullname": "", "email": "x@example.com",
				"username": "blank", "password": "passw0rd",
			},
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "uppercase username",
			fields: map[string]string{
				"fullname": "Shouty", "email": "shouty@example.com",
				"username": "Shouty", "password": "passw0rd",
			},
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "weak password",
			fields: map[string]string{
				"fullname": "Weak", "email": "weak@example.com",
				"username": "weak", "password": "abc",
			},
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			fields: map[string]string{
				"fullname": "Dup", "email": "other@example.com",
				"username": "taken", "password": "passw0rd",
			},
			files:      map[string]string{"avatar": "a.png"},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tc.fields, tc.files)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
			req.Header.Set("Content-Type", contentType)
			rec, env := doRequest(srv, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.False(t, env.Success)
			assert.NotNil(t, env.Errors)
		})
	}
}

// TestRegister_RejectedRequestStoresNoMedia ensures a failed registration
// never leaves uploaded files behind: validation and the duplicate check run
// before any file reaches the media store.
func TestRegister_RejectedRequestStoresNoMedia(t *testing.T) {
	srv, mediaRoot := newTestServerWithMedia(t)

	registerAccount(t, srv, "occupant")
	baseline, err := os.ReadDir(mediaRoot)
	require.NoError(t, err)
	require.Len(t, baseline, 1)

	cases := []struct {
		name       string
		fields     map[string]string
		wantStatus int
	}{
		{
			name: "uppercase username",
			fields: map[string]string{
				"fullname": "Shouty", "email": "shouty@example.com",
				"username": "BADUPPER", "password": "passw0rd",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "weak password",
			fields: map[string]string{
				"fullname": "Weak", "email": "weak@example.com",
				"username": "weak", "password": "x",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			fields: map[string]string{
				"fullname": "Dup", "email": "someone-else@example.com",
				"username": "occupant", "password": "passw0rd",
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tc.fields,
				map[string]string{"avatar": "a.png", "coverImg": "c.jpg"})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
			req.Header.Set("Content-Type", contentType)
			rec, _ := doRequest(srv, req)

			require.Equal(t, tc.wantStatus, rec.Code)

			entries, err := os.ReadDir(mediaRoot)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "rejected registration stored media")
		})
	}
}

func TestRegister_NonMultipartBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register",
		strings.NewReader(`{"username":"json"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, _ := doRequest(srv, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "watcher")

	rec, env := loginAccount(t, srv, "watcher", "passw0rd")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	var result struct {
		User         map[string]interface{} `json:"user"`
		AccessToken  string                 `json:"accessToken"`
		RefreshToken string                 `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, "watcher", result.User["username"])
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	access := cookieNamed(rec, middleware.AccessTokenCookie)
	refresh := cookieNamed(rec, RefreshTokenCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, result.AccessToken, access.Value)
	assert.Equal(t, result.RefreshToken, refresh.Value)
}

func TestLogin_Failures(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "watcher")

	t.Run("wrong password", func(t *testing.T) {
		rec, _ := loginAccount(t, srv, "watcher", "wr0ngpass")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		rec, _ := loginAccount(t, srv, "nobody", "passw0rd")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no identifier", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
			strings.NewReader(`{"password":"passw0rd"}`))
		rec, _ := doRequest(srv, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
			strings.NewReader(`{"username"`))
		rec, _ := doRequest(srv, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "viewer")
	rec, _ := loginAccount(t, srv, "viewer", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	req.AddCookie(access)
	rec2, env := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec2.Code)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "viewer", user["username"])
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/users/logout"},
		{http.MethodPost, "/api/v1/users/change-password"},
		{http.MethodGet, "/api/v1/users/current-user"},
		{http.MethodPatch, "/api/v1/users/update-account"},
		{http.MethodPatch, "/api/v1/users/avatar"},
		{http.MethodPatch, "/api/v1/users/cover-image"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			rec, env := doRequest(srv, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestRefreshToken_RotatesAndInvalidatesOld(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "rotator")
	rec, _ := loginAccount(t, srv, "rotator", "passw0rd")
	refresh := cookieNamed(rec, RefreshTokenCookie)

	// keep iat out of the same second so the rotated token differs
	time.Sleep(1100 * time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	req.AddCookie(refresh)
	rec2, env := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec2.Code)

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, refresh.Value, pair.RefreshToken)

	// new cookies are set
	require.NotNil(t, cookieNamed(rec2, middleware.AccessTokenCookie))
	require.NotNil(t, cookieNamed(rec2, RefreshTokenCookie))

	// replaying the pre-rotation token must fail
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(refresh)
	rec3, _ := doRequest(srv, replay)
	assert.Equal(t, http.StatusUnauthorized, rec3.Code)
}

func TestRefreshToken_FromBody(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "bodily")
	rec, env := loginAccount(t, srv, "bodily", "passw0rd")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token",
		strings.NewReader(`{"refreshToken":"`+result.RefreshToken+`"}`))
	rec2, _ := doRequest(srv, req)
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestRefreshToken_Missing(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	rec, _ := doRequest(srv, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "leaver")
	rec, _ := loginAccount(t, srv, "leaver", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)
	refresh := cookieNamed(rec, RefreshTokenCookie)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.AddCookie(access)
	rec2, env := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec2.Code)
	assert.True(t, env.Success)

	// both cookies expired
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := cookieNamed(rec2, name)
		require.NotNil(t, c, name)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}

	// the stored refresh token is gone
	replay := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	replay.AddCookie(refresh)
	rec3, _ := doRequest(srv, replay)
	assert.Equal(t, http.StatusUnauthorized, rec3.Code)

	// outstanding access tokens keep working until they expire on their own
	still := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	still.AddCookie(access)
	rec4, _ := doRequest(srv, still)
	assert.Equal(t, http.StatusOK, rec4.Code)
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "changer")
	rec, _ := loginAccount(t, srv, "changer", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)

	post := func(body string) (*httptest.ResponseRecorder, envelope) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/change-password",
			strings.NewReader(body))
		req.AddCookie(access)
		return doRequest(srv, req)
	}

	t.Run("wrong old password", func(t *testing.T) {
		rec, _ := post(`{"oldPassword":"wr0ng00","newPassword":"newpass1"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("weak new password", func(t *testing.T) {
		rec, _ := post(`{"oldPassword":"passw0rd","newPassword":"abc"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		rec, _ := post(`{"oldPassword":"passw0rd","newPassword":"newpass1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		recOld, _ := loginAccount(t, srv, "changer", "passw0rd")
		assert.Equal(t, http.StatusUnauthorized, recOld.Code)

		recNew, _ := loginAccount(t, srv, "changer", "newpass1")
		assert.Equal(t, http.StatusOK, recNew.Code)
	})
}

func TestUpdateAccount(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "editor")
	rec, _ := loginAccount(t, srv, "editor", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-account",
		strings.NewReader(`{"fullname":"Edited Name","email":"edited@example.com"}`))
	req.AddCookie(access)
	rec2, env := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec2.Code)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "Edited Name", user["fullname"])
	assert.Equal(t, "edited@example.com", user["email"])
}

func TestUpdateAvatar(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "shutterbug")
	rec, _ := loginAccount(t, srv, "shutterbug", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "new-avatar.png"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(access)
	rec2, env := doRequest(srv, req)

	require.Equal(t, http.StatusOK, rec2.Code)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	avatar, _ := user["avatar"].(string)
	assert.True(t, strings.HasSuffix(avatar, ".png"), avatar)

	t.Run("missing file", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"note": "no file"}, nil)
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
		req.Header.Set("Content-Type", contentType)
		req.AddCookie(access)
		rec3, _ := doRequest(srv, req)
		assert.Equal(t, http.StatusBadRequest, rec3.Code)
	})
}

func TestUpdateCoverImage(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "scenic")
	rec, _ := loginAccount(t, srv, "scenic", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)

	body, contentType := multipartBody(t, nil, map[string]string{"coverImage": "cover.jpg"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/cover-image", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(access)
	rec2, _ := doRequest(srv, req)

	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestStaticServing(t *testing.T) {
	srv := newTestServer(t)
	registerAccount(t, srv, "hoster")
	rec, _ := loginAccount(t, srv, "hoster", "passw0rd")
	access := cookieNamed(rec, middleware.AccessTokenCookie)

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "pic.png"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(access)
	rec2, env := doRequest(srv, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	url, _ := user["avatar"].(string)
	require.True(t, strings.HasPrefix(url, "/static/"), url)

	fetch := httptest.NewRequest(http.MethodGet, url, nil)
	rec3 := httptest.NewRecorder()
	srv.ServeHTTP(rec3, fetch)
	assert.Equal(t, http.StatusOK, rec3.Code)
	assert.Equal(t, "fake image bytes", rec3.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

// TestFullSessionLifecycle walks the happy path end to end: register, login,
// authenticated read, refresh, read with the refreshed token, logout.
func TestFullSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	registerAccount(t, srv, "lifecycle")

	rec, _ := loginAccount(t, srv, "lifecycle", "passw0rd")
	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieNamed(rec, middleware.AccessTokenCookie)
	refresh := cookieNamed(rec, RefreshTokenCookie)

	me := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	me.AddCookie(access)
	recMe, _ := doRequest(srv, me)
	require.Equal(t, http.StatusOK, recMe.Code)

	time.Sleep(1100 * time.Millisecond)

	refreshReq := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)
	refreshReq.AddCookie(refresh)
	recRefresh, _ := doRequest(srv, refreshReq)
	require.Equal(t, http.StatusOK, recRefresh.Code)
	newAccess := cookieNamed(recRefresh, middleware.AccessTokenCookie)

	me2 := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
	me2.AddCookie(newAccess)
	recMe2, _ := doRequest(srv, me2)
	require.Equal(t, http.StatusOK, recMe2.Code)

	logout := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	logout.AddCookie(newAccess)
	recOut, _ := doRequest(srv, logout)
	require.Equal(t, http.StatusOK, recOut.Code)
}
