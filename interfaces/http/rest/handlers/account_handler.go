package handlers

import (
	"net/http"

	"pm-backend/application/services"
	"pm-backend/pkg/auth"
	"pm-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AccountHandler handles account directory requests
type AccountHandler struct {
	accounts *services.AccountService
	logger   *zap.Logger
}

// NewAccountHandler creates an account handler
func NewAccountHandler(accounts *services.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// Create handles POST /api/accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.CreateAccountInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accounts.Create(r.Context(), caller, input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, account)
}

// List handles GET /api/accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	accounts, err := h.accounts.List(r.Context(), caller)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, accounts)
}

// Get handles GET /api/accounts/{accountID}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	account, err := h.accounts.Get(r.Context(), caller, chi.URLParam(r, "accountID"))
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, account)
}

// Update handles PUT /api/accounts/{accountID}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var input services.UpdateAccountInput
	if err := common.ParseJSONBody(r, &input, maxBodyBytes); err != nil {
		common.RespondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accounts.Update(r.Context(), caller, chi.URLParam(r, "accountID"), input)
	if err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/accounts/{accountID}
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := auth.GetCallerFromContext(r.Context())
	if err != nil {
		common.RespondMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.accounts.Delete(r.Context(), caller, chi.URLParam(r, "accountID")); err != nil {
		common.RespondError(w, h.logger, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "accountID")})
}
