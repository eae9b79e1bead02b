package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/toko-voucher/internal/common"
	"github.com/noah-isme/toko-voucher/internal/pricing"
)

type Handler struct {
	Svc *Service
}

// Summary prices the posted cart. Authentication is optional.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload Input
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	userID, _ := common.UserID(r.Context())
	out, err := h.Svc.Summary(r.Context(), userID, payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// DeliveryMethods lists the shipping options.
func (h *Handler) DeliveryMethods(w http.ResponseWriter, _ *http.Request) {
	methods := pricing.DefaultDeliveryMethods
	if h.Svc != nil && len(h.Svc.Methods) > 0 {
		methods = h.Svc.Methods
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": methods})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to price checkout", nil)
}
