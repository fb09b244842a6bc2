//go:build !integration

package api_test

import (
	"context"
	"time"

	"consulting-portal/internal/domain/model"
)

type mockPayments struct {
	ProcessFunc  func(ctx context.Context, session string, req model.PaymentRequest) model.PaymentResult
	ValidateFunc func(fd *model.FormData) error
	plans        []*model.Plan

	stored  []model.StoredPaymentState
	contact *model.ContactCache
}

func (m *mockPayments) ProcessPayment(ctx context.Context, session string, req model.PaymentRequest) model.PaymentResult {
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, session, req)
	}
	return model.PaymentResult{Success: true, URL: "https://pay.example/x", ProcessID: req.ProcessID}
}

func (m *mockPayments) StorePaymentState(_ context.Context, _ string, res model.PaymentResult, st model.PaymentRequest) bool {
	m.stored = append(m.stored, model.StoredPaymentState{Result: res, State: st})
	return true
}

func (m *mockPayments) LastPaymentState(context.Context, string) *model.StoredPaymentState {
	if len(m.stored) == 0 {
		return nil
	}
	return &m.stored[len(m.stored)-1]
}

func (m *mockPayments) ContactCache(context.Context, string) *model.ContactCache { return m.contact }

func (m *mockPayments) ValidateRegistration(fd *model.FormData) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(fd)
	}
	return nil
}

func (m *mockPayments) Plans() []*model.Plan { return m.plans }

type mockRecovery struct {
	states  map[string]*model.CheckoutRecoveryState
	saves   []model.CheckoutRecoveryState
	cleared []string
	valid   bool
}

func newMockRecovery() *mockRecovery {
	return &mockRecovery{states: map[string]*model.CheckoutRecoveryState{}}
}

func (m *mockRecovery) Save(_ context.Context, session string, partial *model.CheckoutRecoveryState) bool {
	cur, ok := m.states[session]
	if !ok {
		cur = &model.CheckoutRecoveryState{}
		m.states[session] = cur
	}
	cur.Merge(partial)
	cur.Timestamp = time.Now()
	m.saves = append(m.saves, *partial)
	return true
}

func (m *mockRecovery) Get(_ context.Context, session string) *model.CheckoutRecoveryState {
	return m.states[session]
}

func (m *mockRecovery) Clear(_ context.Context, session string) {
	delete(m.states, session)
	m.cleared = append(m.cleared, session)
}

func (m *mockRecovery) IsValid(st *model.CheckoutRecoveryState, planID string) bool {
	return st != nil && m.valid && st.PlanID == planID
}

type mockThrottle struct {
	allow bool
	calls [][2]string
}

func (m *mockThrottle) TrackAttempt(_ context.Context, userID, planID string) bool {
	m.calls = append(m.calls, [2]string{userID, planID})
	return m.allow
}

type mockWebhookUC struct {
	HandleFunc func(ctx context.Context, ev *model.GatewayEvent) (*model.WebhookOutcome, error)
}

func (m *mockWebhookUC) Handle(ctx context.Context, ev *model.GatewayEvent) (*model.WebhookOutcome, error) {
	return m.HandleFunc(ctx, ev)
}

type mockMessaging struct {
	SendFunc func(ctx context.Context, msg model.OutboundMessage) (*model.SendResult, error)
}

func (m *mockMessaging) Send(ctx context.Context, msg model.OutboundMessage) (*model.SendResult, error) {
	return m.SendFunc(ctx, msg)
}

type mockAdmin struct {
	AuthorizeFunc func(ctx context.Context, userID string) error
	ExecuteFunc   func(ctx context.Context, req model.AdminUserRequest) (*model.AdminUserResult, error)
}

func (m *mockAdmin) Authorize(ctx context.Context, userID string) error {
	if m.AuthorizeFunc != nil {
		return m.AuthorizeFunc(ctx, userID)
	}
	return nil
}

func (m *mockAdmin) Execute(ctx context.Context, req model.AdminUserRequest) (*model.AdminUserResult, error) {
	return m.ExecuteFunc(ctx, req)
}

type mockStorage struct {
	ProvisionFunc func(ctx context.Context, userID string) (*model.StorageProvisionResult, error)
}

func (m *mockStorage) Provision(ctx context.Context, userID string) (*model.StorageProvisionResult, error) {
	return m.ProvisionFunc(ctx, userID)
}

type mockLimiter struct {
	allow bool
	err   error
	keys  []string
}

func (m *mockLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	m.keys = append(m.keys, key)
	return m.allow, m.err
}
