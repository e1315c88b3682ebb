package api

import (
	"net/http"

	"github.com/vidora/vidora/pkg/middleware"
)

func (h *AccountHandlers) setAuthCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, h.authCookie(middleware.AccessTokenCookie, accessToken, 0))
	http.SetCookie(w, h.authCookie(RefreshTokenCookie, refreshToken, 0))
}

func (h *AccountHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, h.authCookie(middleware.AccessTokenCookie, "", -1))
	http.SetCookie(w, h.authCookie(RefreshTokenCookie, "", -1))
}

// authCookie builds an HttpOnly cookie; maxAge -1 expires it immediately.
func (h *AccountHandlers) authCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
