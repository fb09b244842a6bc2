// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/format"
	"consulting-portal/internal/infra/logging"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// ProcessPayment routes a plan selection to a payment or contact URL. It
	// never returns an error; failures come back in the result.
	ProcessPayment(ctx context.Context, session string, req model.PaymentRequest) model.PaymentResult
	// StorePaymentState keeps the last result and input for redirect recovery.
	StorePaymentState(ctx context.Context, session string, result model.PaymentResult, state model.PaymentRequest) bool
	LastPaymentState(ctx context.Context, session string) *model.StoredPaymentState
	// ContactCache returns the pre-fill copy saved by ProcessPayment.
	ContactCache(ctx context.Context, session string) *model.ContactCache
	ValidateRegistration(fd *model.FormData) error
	Plans() []*model.Plan
}

type paymentUC struct {
	catalog  repository.PlanCatalog
	store    repository.SessionStateRepository
	tracker  adapter.Tracker
	log      *zerolog.Logger
	now      func() time.Time
	stateTTL time.Duration
	validate *validator.Validate
}

func NewPaymentUseCase(catalog repository.PlanCatalog, store repository.SessionStateRepository, tracker adapter.Tracker, logger *zerolog.Logger) *paymentUC {
	return &paymentUC{
		catalog:  catalog,
		store:    store,
		tracker:  tracker,
		log:      logger,
		now:      time.Now,
		stateTTL: 24 * time.Hour,
		validate: validator.New(),
	}
}

func (u *paymentUC) Plans() []*model.Plan { return u.catalog.List() }

func (u *paymentUC) ProcessPayment(ctx context.Context, session string, req model.PaymentRequest) (res model.PaymentResult) {
	if req.ProcessID == "" {
		req.ProcessID = NewProcessID()
	}
	ctx = logging.WithProcessID(ctx, req.ProcessID)
	log := logging.With(ctx, u.log)
	defer logging.TraceDuration(log, "PaymentUC.ProcessPayment")()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("process payment panicked")
			res = u.fail(req, fmt.Errorf("%w: %v", domain.ErrOperationFailed, r))
		}
	}()

	if req.FormData != nil {
		u.saveContact(ctx, session, req.FormData)
	}

	plan, ok := u.catalog.Get(req.PlanID)
	if !ok {
		return u.fail(req, domain.NewCheckoutError(domain.KindPlanNotFound, "plan %q does not exist", req.PlanID))
	}

	if plan.IsCustom() {
		if plan.ContactOptions == nil || plan.ContactOptions.WhatsAppURL == "" {
			return u.fail(req, domain.NewCheckoutError(domain.KindInvalidPlanConfig, "custom plan %s has no contact url", plan.ID))
		}
		u.track(ctx, model.TrackingEvent{PlanID: plan.ID, Category: model.TrackingCategoryCorporate, ProcessID: req.ProcessID})
		log.Info().Str("plan", plan.ID).Msg("custom plan routed to sales")
		return model.PaymentResult{
			Success:      true,
			URL:          plan.ContactOptions.WhatsAppURL,
			IsCustomPlan: true,
			ProcessID:    req.ProcessID,
		}
	}

	if !plan.IsRegular() {
		return u.fail(req, domain.NewCheckoutError(domain.KindInvalidPlanConfig, "plan %s has no payment options", plan.ID))
	}

	pt := req.EffectivePaymentType()
	url := plan.PaymentOptions.CreditPaymentURL
	if pt == model.PaymentTypeCash {
		url = plan.PaymentOptions.CashPaymentURL
	}
	if strings.TrimSpace(url) == "" {
		return u.fail(req, domain.NewCheckoutError(domain.KindMissingPaymentLink, "no payment url for plan %s (%s)", plan.ID, pt))
	}

	u.track(ctx, model.TrackingEvent{PlanID: plan.ID, PaymentType: pt, ProcessID: req.ProcessID})
	log.Info().Str("plan", plan.ID).Str("payment_type", string(pt)).Msg("payment link resolved")
	return model.PaymentResult{
		Success:     true,
		URL:         url,
		PaymentType: pt,
		ProcessID:   req.ProcessID,
	}
}

func (u *paymentUC) fail(req model.PaymentRequest, err error) model.PaymentResult {
	return model.PaymentResult{
		Success:   false,
		ProcessID: req.ProcessID,
		Error:     err.Error(),
		Kind:      domain.KindOf(err),
	}
}

func (u *paymentUC) track(ctx context.Context, ev model.TrackingEvent) {
	if u.tracker == nil {
		return
	}
	ev.At = u.now()
	u.tracker.Track(ctx, ev)
}

func (u *paymentUC) saveContact(ctx context.Context, session string, fd *model.FormData) {
	if session == "" {
		return
	}
	cc := model.ContactCache{
		FullName: strings.TrimSpace(fd.FullName),
		Email:    strings.TrimSpace(fd.Email),
		Phone:    fd.Phone,
		TaxID:    fd.TaxID,
		SavedAt:  u.now(),
	}
	if err := u.putJSON(ctx, contactKey(session), cc); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("payment: contact cache not saved")
	}
}

func (u *paymentUC) ContactCache(ctx context.Context, session string) *model.ContactCache {
	var cc model.ContactCache
	if session == "" || !u.getJSON(ctx, contactKey(session), &cc) {
		return nil
	}
	return &cc
}

func (u *paymentUC) StorePaymentState(ctx context.Context, session string, result model.PaymentResult, state model.PaymentRequest) bool {
	if session == "" {
		return false
	}
	sp := model.StoredPaymentState{Result: result, State: state, StoredAt: u.now()}
	if err := u.putJSON(ctx, paymentStateKey(session), sp); err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Msg("payment: state not stored")
		return false
	}
	return true
}

func (u *paymentUC) LastPaymentState(ctx context.Context, session string) *model.StoredPaymentState {
	var sp model.StoredPaymentState
	if session == "" || !u.getJSON(ctx, paymentStateKey(session), &sp) {
		return nil
	}
	return &sp
}

func (u *paymentUC) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return u.store.Store(ctx, key, data, u.stateTTL)
}

func (u *paymentUC) getJSON(ctx context.Context, key string, v any) bool {
	data, err := u.store.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, u.log).Warn().Err(err).Str("key", key).Msg("payment: load state")
		}
		return false
	}
	return json.Unmarshal(data, v) == nil
}

var registrationFieldKinds = map[string]domain.ErrorKind{
	"FullName": domain.KindMissingFullName,
	"Email":    domain.KindInvalidEmail,
	"Phone":    domain.KindMissingPhone,
	"TaxID":    domain.KindMissingTaxID,
}

// ValidateRegistration checks the checkout form in display order and returns
// a tagged error for the first bad field.
func (u *paymentUC) ValidateRegistration(fd *model.FormData) error {
	if fd == nil {
		return domain.NewCheckoutError(domain.KindMissingFullName, "full name is required")
	}
	trimmed := *fd
	trimmed.FullName = strings.TrimSpace(fd.FullName)
	trimmed.Email = strings.TrimSpace(fd.Email)

	if err := u.validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, field := range []string{"FullName", "Email", "Phone", "TaxID"} {
				for _, fe := range verrs {
					if fe.StructField() == field {
						return domain.NewCheckoutError(registrationFieldKinds[field], "%s failed %s", strings.ToLower(field), fe.Tag())
					}
				}
			}
		}
		return domain.WrapCheckoutError(domain.KindUnknown, err, "invalid registration")
	}

	if len(strings.Fields(trimmed.FullName)) < 2 {
		return domain.NewCheckoutError(domain.KindMissingFullName, "full name must include a surname")
	}
	if !format.ValidatePhone(trimmed.Phone) {
		return domain.NewCheckoutError(domain.KindMissingPhone, "phone %q is not a valid number", format.OnlyDigits(trimmed.Phone))
	}
	if !format.ValidateCPF(trimmed.TaxID) && !format.ValidateCNPJ(trimmed.TaxID) {
		return domain.NewCheckoutError(domain.KindMissingTaxID, "tax id failed checksum")
	}
	return nil
}
