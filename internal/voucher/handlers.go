package voucher

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/toko-voucher/internal/common"
)

// Handler exposes voucher evaluation and claim endpoints.
type Handler struct {
	Svc *Service
}

type validateRequest struct {
	Code      string  `json:"code"`
	CartTotal float64 `json:"cart_total"`
}

type claimRequest struct {
	Code string `json:"code"`
}

// Available lists vouchers that can currently be claimed.
func (h *Handler) Available(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	list, err := h.Svc.ListAvailable(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load vouchers", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}

// Get returns a voucher by code together with its expiry status.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	v, err := h.Svc.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBlankCode):
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", MsgBlankCode, nil)
		case errors.Is(err, ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", MsgInvalidCode, nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load voucher", nil)
		}
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{
		"voucher": v,
		"expiry":  h.Svc.ExpiryStatus(v),
	}})
}

// Validate evaluates a code against a cart total. Claim checks apply when the caller is signed in.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	userID, _ := common.UserID(r.Context())
	writeResult(w, http.StatusOK, h.Svc.Validate(r.Context(), req.Code, req.CartTotal, userID))
}

// Claim attaches a voucher to the signed-in user.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	writeResult(w, http.StatusCreated, h.Svc.Claim(r.Context(), req.Code, userID))
}

// Redeem validates and consumes the signed-in user's claim in one step.
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	writeResult(w, http.StatusOK, h.Svc.Redeem(r.Context(), req.Code, req.CartTotal, userID))
}

// MarkUsed consumes the signed-in user's claim on the voucher in the path.
func (h *Handler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	writeResult(w, http.StatusOK, h.Svc.MarkUsed(r.Context(), chi.URLParam(r, "voucherID"), userID))
}

// Mine lists the signed-in user's claimed vouchers filtered by ?status=.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tab, err := ParseTab(r.URL.Query().Get("status"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "status must be one of available, used, all", nil)
		return
	}
	list, err := h.Svc.ListClaimed(r.Context(), userID, tab)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load vouchers", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": list})
}

func (h *Handler) ready(w http.ResponseWriter) bool {
	if h == nil || h.Svc == nil || h.Svc.Store == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher service not configured", nil)
		return false
	}
	return true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := common.UserID(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return "", false
	}
	return userID, true
}

// writeResult renders a Result. Rejections use 422 and infrastructure failures use 500.
func writeResult(w http.ResponseWriter, okStatus int, res Result) {
	switch {
	case res.Valid:
		common.JSON(w, okStatus, map[string]any{"data": res})
	case res.Internal():
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", res.Message, nil)
	default:
		common.JSON(w, http.StatusUnprocessableEntity, map[string]any{"data": res})
	}
}

// AdminHandler exposes voucher management endpoints.
type AdminHandler struct {
	Admin *Admin
}

type activeRequest struct {
	IsActive *bool `json:"is_active"`
}

// List returns a page of vouchers with claim statistics.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	page, perPage := common.ParsePagination(r, 20)
	items, total, err := h.Admin.List(r.Context(), page, perPage)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if items == nil {
		items = []Stats{}
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       items,
		"pagination": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}

// Create inserts a new voucher.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	v, err := h.Admin.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": v})
}

// Update replaces the voucher identified by {id}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	v, err := h.Admin.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

// Delete removes the voucher identified by {id}.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetActive toggles the active flag of the voucher identified by {id}.
func (h *AdminHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "is_active is required", nil)
		return
	}
	v, err := h.Admin.SetActive(r.Context(), chi.URLParam(r, "id"), *req.IsActive)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": v})
}

func (h *AdminHandler) writeError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid voucher", verr.Fields)
	case errors.Is(err, ErrDuplicateCode):
		common.JSONError(w, http.StatusConflict, "CONFLICT", "voucher code already exists", nil)
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "voucher not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "voucher operation failed", nil)
	}
}
