package api

import (
	"net/http"
	"strings"
	"time"

	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/format"
	"consulting-portal/internal/infra/logging"
	"consulting-portal/internal/infra/metrics"
	"consulting-portal/internal/infra/web"
	"consulting-portal/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	sessionCookie    = "checkout_session"
	sessionCookieTTL = 24 * time.Hour
)

// CheckoutHandler serves the plan catalog and the browser-facing checkout flow.
type CheckoutHandler struct {
	payments      usecase.PaymentUseCase
	recovery      usecase.RecoveryUseCase
	throttle      usecase.ThrottleUseCase
	messages      *usecase.ErrorMessages
	auth          *web.AuthManager
	secureCookies bool
	log           *zerolog.Logger
}

func NewCheckoutHandler(
	payments usecase.PaymentUseCase,
	recovery usecase.RecoveryUseCase,
	throttle usecase.ThrottleUseCase,
	messages *usecase.ErrorMessages,
	auth *web.AuthManager,
	secureCookies bool,
	logger *zerolog.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		payments:      payments,
		recovery:      recovery,
		throttle:      throttle,
		messages:      messages,
		auth:          auth,
		secureCookies: secureCookies,
		log:           logger,
	}
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Get("/api/plans", h.listPlans)
	r.Route("/api/checkout", func(r chi.Router) {
		r.Post("/process", h.process)
		r.Get("/recovery", h.getRecovery)
		r.Put("/recovery", h.saveRecovery)
		r.Delete("/recovery", h.clearRecovery)
		r.Get("/contact", h.getContact)
		r.Get("/payment-state", h.getPaymentState)
	})
}

// session returns the checkout session id, minting a cookie on first use.
func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && usecase.ValidSessionID(c.Value) {
		return c.Value
	}
	id := usecase.NewSessionID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sessionCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type planView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        string   `json:"price,omitempty"`
	TotalPrice   string   `json:"totalPrice,omitempty"`
	CashPrice    string   `json:"cashPrice,omitempty"`
	Installments int      `json:"installments,omitempty"`
	Features     []string `json:"features"`
	CustomPrice  bool     `json:"customPrice"`
}

func (h *CheckoutHandler) listPlans(w http.ResponseWriter, _ *http.Request) {
	plans := h.payments.Plans()
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		v := planView{ID: p.ID, Name: p.Name, Features: p.Features, CustomPrice: p.CustomPrice}
		if v.Features == nil {
			v.Features = []string{}
		}
		if !p.CustomPrice {
			v.Price = format.FormatCurrency(p.Price)
			v.TotalPrice = format.FormatCurrency(p.TotalPrice)
			v.CashPrice = format.FormatCurrency(p.CashPrice)
			v.Installments = p.Installments
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

// throttleKey is the verified bearer subject when the caller signed in, else
// the checkout session. Request bodies never pick the key.
func (h *CheckoutHandler) throttleKey(r *http.Request, sess string) (string, bool) {
	if h.auth == nil {
		return sess, false
	}
	claims, err := h.auth.ParseFromRequest(r)
	if err != nil {
		return sess, false
	}
	return claims.Subject, true
}

type processResponse struct {
	Success      bool              `json:"success"`
	URL          string            `json:"url,omitempty"`
	IsCustomPlan bool              `json:"isCustomPlan"`
	PaymentType  model.PaymentType `json:"paymentType,omitempty"`
	ProcessID    string            `json:"processId,omitempty"`
	Error        string            `json:"error,omitempty"`
	Message      string            `json:"message,omitempty"`
}

func (h *CheckoutHandler) process(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	ctx := logging.WithSessID(r.Context(), sess)

	var req model.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.PlanID) == "" {
		writeError(w, http.StatusBadRequest, "planId is required")
		return
	}
	who, signedIn := h.throttleKey(r, sess)
	if signedIn {
		ctx = logging.WithUserID(ctx, who)
	}
	log := logging.With(ctx, h.log)

	if req.FormData != nil {
		if err := h.payments.ValidateRegistration(req.FormData); err != nil {
			log.Info().Err(err).Msg("checkout: registration rejected")
			writeJSON(w, http.StatusBadRequest, processResponse{
				Error:   err.Error(),
				Message: h.messages.MapErrorToUserMessage(err),
			})
			return
		}
	}

	allowed := h.throttle.TrackAttempt(ctx, who, req.PlanID)
	metrics.IncCheckoutThrottle(allowed)
	if !allowed {
		writeJSON(w, http.StatusTooManyRequests, processResponse{
			Error:   "throttled",
			Message: h.messages.Throttled(),
		})
		return
	}

	if req.ProcessID == "" {
		req.ProcessID = usecase.NewProcessID()
	}
	h.recovery.Save(ctx, sess, recoverySnapshot(req))

	res := h.payments.ProcessPayment(ctx, sess, req)
	h.payments.StorePaymentState(ctx, sess, res, req)

	if !res.Success {
		writeJSON(w, http.StatusUnprocessableEntity, processResponse{
			ProcessID: res.ProcessID,
			Error:     res.Error,
			Message:   h.messages.ForResult(res),
		})
		return
	}
	h.recovery.Save(ctx, sess, &model.CheckoutRecoveryState{PaymentLink: res.URL})
	writeJSON(w, http.StatusOK, processResponse{
		Success:      true,
		URL:          res.URL,
		IsCustomPlan: res.IsCustomPlan,
		PaymentType:  res.PaymentType,
		ProcessID:    res.ProcessID,
	})
}

func recoverySnapshot(req model.PaymentRequest) *model.CheckoutRecoveryState {
	st := &model.CheckoutRecoveryState{
		PlanID:    req.PlanID,
		ProcessID: req.ProcessID,
		FormData:  req.FormData,
	}
	if req.Installments > 0 {
		n := req.Installments
		st.Installments = &n
	}
	if req.PaymentType != "" {
		pt := req.PaymentType
		st.PaymentType = &pt
	}
	return st
}

type recoveryResponse struct {
	State *model.CheckoutRecoveryState `json:"state"`
	Valid bool                         `json:"valid"`
}

func (h *CheckoutHandler) getRecovery(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	ctx := logging.WithSessID(r.Context(), sess)
	st := h.recovery.Get(ctx, sess)
	writeJSON(w, http.StatusOK, recoveryResponse{
		State: st,
		Valid: h.recovery.IsValid(st, r.URL.Query().Get("planId")),
	})
}

func (h *CheckoutHandler) saveRecovery(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	var partial model.CheckoutRecoveryState
	if err := decodeJSON(r, &partial); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved := h.recovery.Save(logging.WithSessID(r.Context(), sess), sess, &partial)
	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

func (h *CheckoutHandler) clearRecovery(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	h.recovery.Clear(logging.WithSessID(r.Context(), sess), sess)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CheckoutHandler) getContact(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"contact": h.payments.ContactCache(r.Context(), sess)})
}

func (h *CheckoutHandler) getPaymentState(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	writeJSON(w, http.StatusOK, map[string]any{"payment": h.payments.LastPaymentState(r.Context(), sess)})
}
