package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/pkg/apperror"
)

func TestWriteEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteEnvelope(rec, http.StatusCreated, map[string]string{"id": "abc"}, "created")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(http.StatusCreated), body["statusCode"])
	assert.Equal(t, "created", body["message"])
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "errors")
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "apperror passes through",
			err:        apperror.NotFound("user does not exist"),
			wantStatus: http.StatusNotFound,
			wantMsg:    "user does not exist",
		},
		{
			name:       "unknown error becomes 500",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "something went wrong",
		},
		{
			name:       "wrapped apperror unwraps",
			err:        &wrapped{apperror.Unauthorized("invalid credentials")},
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body struct {
				StatusCode int      `json:"statusCode"`
				Message    string   `json:"message"`
				Success    bool     `json:"success"`
				Errors     []string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.False(t, body.Success)
			assert.NotNil(t, body.Errors)
		})
	}
}

type wrapped struct{ inner error }

func (w *wrapped) Error() string { return w.inner.Error() }
func (w *wrapped) Unwrap() error { return w.inner }

func TestParseJSONOrError(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
		rec := httptest.NewRecorder()

		var dest struct {
			Name string `json:"name"`
		}
		assert.True(t, ParseJSONOrError(rec, req, &dest))
		assert.Equal(t, "ok", dest.Name)
	})

	t.Run("malformed body writes 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name"`))
		rec := httptest.NewRecorder()

		var dest struct{}
		assert.False(t, ParseJSONOrError(rec, req, &dest))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "no header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic dXNlcg==", want: ""},
		{name: "bare prefix", header: "Bearer ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, BearerToken(req))
		})
	}
}

func TestCookieValue(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "tok"})

	assert.Equal(t, "tok", CookieValue(req, "accessToken"))
	assert.Equal(t, "", CookieValue(req, "refreshToken"))
}
