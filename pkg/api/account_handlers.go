package api

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/vidora/vidora/pkg/accounts"
	"github.com/vidora/vidora/pkg/apperror"
	"github.com/vidora/vidora/pkg/contextkeys"
	"github.com/vidora/vidora/pkg/httputil"
	"github.com/vidora/vidora/pkg/media"
	"github.com/vidora/vidora/pkg/observability"
	"github.com/vidora/vidora/pkg/session"
)

// RefreshTokenCookie is the cookie carrying the refresh token between
// /login and /refresh-token.
const RefreshTokenCookie = "refreshToken"

// multipartMemory is how much of a multipart body is held in memory before
// spilling to disk.
const multipartMemory = 10 << 20

// AccountHandlers handles the account and session HTTP endpoints.
type AccountHandlers struct {
	sessions      *session.Manager
	uploader      media.Uploader
	logger        *observability.Logger
	secureCookies bool
}

// NewAccountHandlers creates the handler set over the given collaborators.
func NewAccountHandlers(sessions *session.Manager, uploader media.Uploader, logger *observability.Logger, secureCookies bool) *AccountHandlers {
	return &AccountHandlers{
		sessions:      sessions,
		uploader:      uploader,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// register handles POST /api/v1/users/register. The body is multipart: text
// fields plus an avatar file (required) and a coverImg file (optional).
func (h *AccountHandlers) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, apperror.BadRequest("multipart form data is required"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	input := session.RegisterInput{
		FullName: r.FormValue("fullname"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	// no file is stored until the credentials pass validation; a rejected
	// registration must not leave media behind
	if err := h.sessions.PrevalidateRegistration(r.Context(), input); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !hasFormFile(r, "avatar") {
		httputil.WriteError(w, apperror.BadRequest("avatar is required"))
		return
	}

	avatarURL, err := h.uploadFormFile(r, "avatar")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	coverURL, err := h.uploadFormFile(r, "coverImg")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	input.AvatarURL = avatarURL
	input.CoverImageURL = coverURL
	created, err := h.sessions.Register(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteEnvelope(w, http.StatusCreated, created, "user registered successfully")
}

// login handles POST /api/v1/users/login. On success both tokens are set as
// cookies and returned in the body for cookie-less clients.
func (h *AccountHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	result, err := h.sessions.Login(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.setAuthCookies(w, result.AccessToken, result.RefreshToken)
	httputil.WriteEnvelope(w, http.StatusOK, result, "user logged in successfully")
}

// refreshToken handles POST /api/v1/users/refresh-token. The presented token
// comes from the refreshToken cookie or a JSON body field.
func (h *AccountHandlers) refreshToken(w http.ResponseWriter, r *http.Request) {
	presented := httputil.CookieValue(r, RefreshTokenCookie)
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		// body is optional when the cookie is absent; ignore parse errors
		_ = httputil.ParseJSON(r, &req)
		presented = req.RefreshToken
	}

	pair, err := h.sessions.Refresh(r.Context(), presented)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.setAuthCookies(w, pair.AccessToken, pair.RefreshToken)
	httputil.WriteEnvelope(w, http.StatusOK, pair, "access token refreshed")
}

// logout handles POST /api/v1/users/logout. Runs behind the auth gate.
func (h *AccountHandlers) logout(w http.ResponseWriter, r *http.Request) {
	acct := contextkeys.AccountFrom(r.Context())
	if acct == nil {
		httputil.WriteUnauthorized(w, "unauthorized request")
		return
	}

	if err := h.sessions.Logout(r.Context(), acct.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.clearAuthCookies(w)
	httputil.WriteEnvelope(w, http.StatusOK, struct{}{}, "user logged out")
}

// changePassword handles POST /api/v1/users/change-password.
func (h *AccountHandlers) changePassword(w http.ResponseWriter, r *http.Request) {
	acct := contextkeys.AccountFrom(r.Context())
	if acct == nil {
		httputil.WriteUnauthorized(w, "unauthorized request")
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	if err := h.sessions.ChangePassword(r.Context(), acct.ID, req.OldPassword, req.NewPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteEnvelope(w, http.StatusOK, struct{}{}, "password changed successfully")
}

// currentUser handles GET /api/v1/users/current-user.
func (h *AccountHandlers) currentUser(w http.ResponseWriter, r *http.Request) {
	acct := contextkeys.AccountFrom(r.Context())
	if acct == nil {
		httputil.WriteUnauthorized(w, "unauthorized request")
		return
	}

	httputil.WriteEnvelope(w, http.StatusOK, acct, "current user fetched successfully")
}

// updateAccount handles PATCH /api/v1/users/update-account.
func (h *AccountHandlers) updateAccount(w http.ResponseWriter, r *http.Request) {
	acct := contextkeys.AccountFrom(r.Context())
	if acct == nil {
		httputil.WriteUnauthorized(w, "unauthorized request")
		return
	}

	var req struct {
		FullName string `json:"fullname"`
		Email    string `json:"email"`
	}
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	updated, err := h.sessions.UpdateProfile(r.Context(), acct.ID, req.FullName, req.Email)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteEnvelope(w, http.StatusOK, updated, "account details updated")
}

// updateAvatar handles PATCH /api/v1/users/avatar.
func (h *AccountHandlers) updateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.sessions.UpdateAvatar, "avatar updated")
}

// updateCoverImage handles PATCH /api/v1/users/cover-image.
func (h *AccountHandlers) updateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.sessions.UpdateCoverImage, "cover image updated")
}

func (h *AccountHandlers) updateImage(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	apply func(ctx context.Context, accountID, url string) (*accounts.Account, error),
	message string,
) {
	acct := contextkeys.AccountFrom(r.Context())
	if acct == nil {
		httputil.WriteUnauthorized(w, "unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		httputil.WriteError(w, apperror.BadRequest("multipart form data is required"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	url, err := h.uploadFormFile(r, field)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if url == "" {
		httputil.WriteError(w, apperror.BadRequest("file is required"))
		return
	}

	updated, err := apply(r.Context(), acct.ID, url)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteEnvelope(w, http.StatusOK, updated, message)
}

// uploadFormFile pushes one multipart file through the media uploader and
// returns its public URL. A missing file is not an error; the empty URL
// signals absence to the caller.
func (h *AccountHandlers) uploadFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", apperror.BadRequest(fmt.Sprintf("invalid %s upload", field))
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, file, contentTypeOf(header))
	if err != nil {
		h.logger.WithError(err).WithField("field", field).Error("media upload failed")
		return "", apperror.Internal(fmt.Sprintf("failed to store %s", field))
	}
	return url, nil
}

// hasFormFile reports whether the parsed multipart form carries at least one
// file under the field.
func hasFormFile(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}

func contentTypeOf(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
