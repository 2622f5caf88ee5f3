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

type DeleteHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP handles POST /delete. No token is required; the route is on the
// public allow-list and the operation itself asks for none. See DESIGN.md
// for why that asymmetry is preserved.
func (h *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req accountsdk.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Invalid request body")
		return
	}

	if req.ID == nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "Error: Please enter id")
		return
	}

	if err := h.AccountService.Delete(ctx, *req.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteMessage(w, http.StatusBadRequest, "Error: User is not found!")
			return
		}
		log.Error("delete failed", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Error: Internal server error")
		return
	}

	httpx.WriteMessage(w, http.StatusOK, "User has deleted!")
}
