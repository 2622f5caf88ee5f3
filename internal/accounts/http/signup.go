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

type SignUpHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles POST /signup. Conflicts are reported in fixed precedence:
// id, then username, then email.
func (h *SignUpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Invalid request body")
		return
	}

	if req.ID == nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Please enter id")
		return
	}
	if !validUsername(req.Username) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Username must be between 3 and 20 characters!")
		return
	}
	if !validEmail(req.Email) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Email must be a valid address of at most 50 characters!")
		return
	}
	if !validPassword(req.Password) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Password must be between 6 and 40 characters!")
		return
	}

	err := h.AccountService.SignUp(ctx, *req.ID, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIDTaken):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: Id is already taken!")
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: Username is already taken!")
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: Email is already in use!")
		default:
			log.Error("sign-up failed", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, "Error: Internal server error")
		}
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "User registered successfully!")
}
