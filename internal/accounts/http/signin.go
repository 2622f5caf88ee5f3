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

type SignInHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles POST /signin. Unknown usernames and wrong passwords both
// get the same generic message so the endpoint cannot be used to enumerate
// accounts.
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Bad credentials")
		return
	}

	result, err := h.AccountService.SignIn(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: Bad credentials")
			return
		}
		log.Error("sign-in failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Error: Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.SignInResponse{
		Token:    result.Token,
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
	})
}
