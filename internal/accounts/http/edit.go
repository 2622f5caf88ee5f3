package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minhkq1998/SampleJWT/internal/accounts/service"
	"github.com/minhkq1998/SampleJWT/pkg/accountsdk"
	"github.com/minhkq1998/SampleJWT/pkg/httpx"
	"github.com/minhkq1998/SampleJWT/pkg/slogx"
)

type EditHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles POST /edit. The token comes from the "token" header,
// falling back to the body field. Its signature and expiry are checked but
// its subject is NOT matched against the target id; see DESIGN.md for why
// that stays as is. Invalid tokens share the not-found message so the
// response does not reveal whether the id exists.
func (h *EditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Invalid request body")
		return
	}

	if req.ID == nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Please enter id")
		return
	}
	if req.NewUsername != "" && !validUsername(req.NewUsername) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Username must be between 3 and 20 characters!")
		return
	}
	if req.Email != "" && !validEmail(req.Email) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Email must be a valid address of at most 50 characters!")
		return
	}

	token := r.Header.Get("token")
	if token == "" {
		token = req.Token
	}

	err := h.AccountService.Edit(ctx, *req.ID, token, req.NewUsername, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: User is not found!")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: User is not found!")
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: Username is already taken!")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: Email is already in use!")
		default:
			log.Error("edit failed", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Error: Internal server error")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "User updated successfully!")
}
