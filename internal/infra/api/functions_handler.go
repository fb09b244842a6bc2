package api

import (
	"errors"
	"net/http"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/infra/logging"
	"consulting-portal/internal/infra/metrics"
	"consulting-portal/internal/infra/web"
	"consulting-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// FunctionsHandler serves the privileged back-office functions.
type FunctionsHandler struct {
	messaging usecase.MessagingUseCase
	admin     usecase.AdminUserUseCase
	storage   usecase.StorageUseCase
	auth      *web.AuthManager
	log       *zerolog.Logger
}

func NewFunctionsHandler(
	messaging usecase.MessagingUseCase,
	admin usecase.AdminUserUseCase,
	storage usecase.StorageUseCase,
	auth *web.AuthManager,
	logger *zerolog.Logger,
) *FunctionsHandler {
	return &FunctionsHandler{messaging: messaging, admin: admin, storage: storage, auth: auth, log: logger}
}

// Register mounts the functions; sendLimit guards the messaging route.
func (h *FunctionsHandler) Register(r chi.Router, sendLimit Middleware) {
	r.Route("/functions", func(r chi.Router) {
		if sendLimit != nil {
			r.With(sendLimit).Post("/send-whatsapp", h.sendWhatsApp)
		} else {
			r.Post("/send-whatsapp", h.sendWhatsApp)
		}
		r.Post("/admin-users", h.adminUsers)
		r.Post("/setup-storage", h.setupStorage)
	})
}

func (h *FunctionsHandler) sendWhatsApp(w http.ResponseWriter, r *http.Request) {
	var msg model.OutboundMessage
	if err := decodeJSON(r, &msg); err != nil {
		metrics.IncWhatsAppMessage("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.messaging.Send(r.Context(), msg)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			metrics.IncWhatsAppMessage("invalid")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var ge *domain.GatewayError
		if errors.As(err, &ge) {
			metrics.IncWhatsAppMessage("gateway_error")
		} else {
			metrics.IncWhatsAppMessage("error")
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.IncWhatsAppMessage("sent")
	writeJSON(w, http.StatusOK, res)
}

// authorizeAdmin verifies the bearer token and the caller's role. It writes
// the failure response itself and reports whether the request may go on.
func (h *FunctionsHandler) authorizeAdmin(w http.ResponseWriter, r *http.Request, action string) (*http.Request, bool) {
	claims, err := h.auth.ParseFromRequest(r)
	if err != nil {
		metrics.IncAdminAction(action, "unauthorized")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return r, false
	}
	ctx := logging.WithUserID(r.Context(), claims.Subject)
	r = r.WithContext(ctx)

	if err := h.admin.Authorize(ctx, claims.Subject); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			metrics.IncAdminAction(action, "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, domain.ErrUnauthorized):
			metrics.IncAdminAction(action, "unauthorized")
			writeError(w, http.StatusUnauthorized, "unauthorized")
		default:
			logging.With(ctx, h.log).Error().Err(err).Msg("admin: role lookup failed")
			metrics.IncAdminAction(action, "error")
			writeError(w, http.StatusInternalServerError, "failed to verify permissions")
		}
		return r, false
	}
	return r, true
}

func (h *FunctionsHandler) adminUsers(w http.ResponseWriter, r *http.Request) {
	r, ok := h.authorizeAdmin(w, r, "")
	if !ok {
		return
	}
	var req model.AdminUserRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.IncAdminAction("", "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	action := string(req.Action)

	res, err := h.admin.Execute(r.Context(), req)
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrInvalidArgument) {
			result = "invalid"
		}
		metrics.IncAdminAction(action, result)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.IncAdminAction(action, "ok")
	if req.Action == model.ActionDeleteUser {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "userId": res.UserID})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": res.User})
}

type setupStorageRequest struct {
	UserID string `json:"userId,omitempty"`
}

func (h *FunctionsHandler) setupStorage(w http.ResponseWriter, r *http.Request) {
	r, ok := h.authorizeAdmin(w, r, "setupStorage")
	if !ok {
		return
	}
	var req setupStorageRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		metrics.IncStorageProvision("invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.storage.Provision(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			metrics.IncStorageProvision("invalid")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metrics.IncStorageProvision("error")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.IncStorageProvision("ok")
	writeJSON(w, http.StatusOK, res)
}
