package handlers

import (
	"net/http"

	"pm-backend/application/services"
	"pm-backend/pkg/common"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// AuthHandler handles authentication requests
type AuthHandler struct {
	accounts *services.AccountService
	logger   *zap.Logger
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(accounts *services.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.accounts.Login(r.Context(), input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
