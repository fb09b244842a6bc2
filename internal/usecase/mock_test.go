//go:build !integration

package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"consulting-portal/internal/domain"
	"consulting-portal/internal/domain/model"
	"consulting-portal/internal/domain/ports/adapter"
	"consulting-portal/internal/domain/ports/repository"
	"consulting-portal/internal/infra/i18n"
)

var errBoom = errors.New("boom")

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator { return i18n.MustDefault() }

// fixedClock returns a settable clock for injection into use cases.
type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

// -----------------------------
// Session store
// -----------------------------

type MockSessionStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	LoadFunc  func(ctx context.Context, key string) ([]byte, error)
	StoreFunc func(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

var _ repository.SessionStateRepository = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{data: map[string][]byte{}}
}

func (m *MockSessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (m *MockSessionStore) Store(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, key, data, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MockSessionStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// -----------------------------
// Attempt store
// -----------------------------

type MockAttemptStore struct {
	m       map[string]repository.AttemptCounter
	GetErr  error
	PutErr  error
	PutCall int
}

func NewMockAttemptStore() *MockAttemptStore {
	return &MockAttemptStore{m: map[string]repository.AttemptCounter{}}
}

func (s *MockAttemptStore) Get(ctx context.Context, key string) (repository.AttemptCounter, error) {
	if s.GetErr != nil {
		return repository.AttemptCounter{}, s.GetErr
	}
	return s.m[key], nil
}

func (s *MockAttemptStore) Put(ctx context.Context, key string, c repository.AttemptCounter) error {
	s.PutCall++
	if s.PutErr != nil {
		return s.PutErr
	}
	s.m[key] = c
	return nil
}

// -----------------------------
// Tracker
// -----------------------------

type MockTracker struct {
	Events []model.TrackingEvent
}

func (t *MockTracker) Track(ctx context.Context, ev model.TrackingEvent) {
	t.Events = append(t.Events, ev)
}

// -----------------------------
// Transactions
// -----------------------------

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	Calls      int
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately without a real transaction unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// -----------------------------
// Webhook repositories
// -----------------------------

type MockWebhookEventRepo struct {
	seen      map[string]bool
	RecordErr error
}

func NewMockWebhookEventRepo() *MockWebhookEventRepo {
	return &MockWebhookEventRepo{seen: map[string]bool{}}
}

func (r *MockWebhookEventRepo) Record(ctx context.Context, tx repository.Tx, key string, event model.GatewayEventType, paymentID string) (bool, error) {
	if r.RecordErr != nil {
		return false, r.RecordErr
	}
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	return true, nil
}

func (r *MockWebhookEventRepo) PruneBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) (int64, error) {
	n := int64(len(r.seen))
	r.seen = map[string]bool{}
	return n, nil
}

type MockInvoiceRepo struct {
	byPayment map[string]*model.Invoice
	Upserts   int
	UpsertErr error
	// FindFunc overrides the lookup, e.g. to model a read that missed a
	// row another transaction was inserting.
	FindFunc func(id string) (*model.Invoice, error)
}

func NewMockInvoiceRepo() *MockInvoiceRepo {
	return &MockInvoiceRepo{byPayment: map[string]*model.Invoice{}}
}

func (r *MockInvoiceRepo) FindByGatewayPaymentID(ctx context.Context, tx repository.Tx, id string) (*model.Invoice, error) {
	if r.FindFunc != nil {
		return r.FindFunc(id)
	}
	inv, ok := r.byPayment[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

// Upsert applies the same transition guard as the SQL statement.
func (r *MockInvoiceRepo) Upsert(ctx context.Context, tx repository.Tx, inv *model.Invoice) (bool, error) {
	if r.UpsertErr != nil {
		return false, r.UpsertErr
	}
	if cur, ok := r.byPayment[inv.GatewayPaymentID]; ok && !cur.Status.CanAdvance(inv.Status) {
		return false, nil
	}
	r.Upserts++
	cp := *inv
	r.byPayment[inv.GatewayPaymentID] = &cp
	return true, nil
}

type MockSubscriptionRepo struct {
	byID        map[string]*model.Subscription
	Transitions []model.SubscriptionStatus
}

var _ repository.SubscriptionRepository = (*MockSubscriptionRepo)(nil)

func NewMockSubscriptionRepo(subs ...*model.Subscription) *MockSubscriptionRepo {
	r := &MockSubscriptionRepo{byID: map[string]*model.Subscription{}}
	for _, s := range subs {
		r.byID[s.ID] = s
	}
	return r
}

func (r *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	cp := *s
	r.byID[s.ID] = &cp
	return nil
}

func (r *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *MockSubscriptionRepo) FindByGatewayID(ctx context.Context, tx repository.Tx, gid string) (*model.Subscription, error) {
	for _, s := range r.byID {
		if s.GatewaySubscriptionID != nil && *s.GatewaySubscriptionID == gid {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriptionRepo) UpdateStatusIfChanged(ctx context.Context, tx repository.Tx, id string, upd model.SubscriptionUpdate) (bool, error) {
	s, ok := r.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	periodSame := upd.CurrentPeriodEnd == nil || (s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Equal(*upd.CurrentPeriodEnd))
	if s.Status == upd.Status && periodSame {
		return false, nil
	}
	if s.Status != upd.Status {
		r.Transitions = append(r.Transitions, upd.Status)
	}
	s.Status = upd.Status
	if upd.CurrentPeriodEnd != nil {
		end := *upd.CurrentPeriodEnd
		s.CurrentPeriodEnd = &end
	}
	return true, nil
}

// -----------------------------
// Lock and notifications
// -----------------------------

type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string) (string, bool, error)
	Unlocked    []string
}

var _ adapter.Locker = (*MockLocker)(nil)

func (l *MockLocker) TryLock(ctx context.Context, key string) (string, bool, error) {
	if l.TryLockFunc != nil {
		return l.TryLockFunc(ctx, key)
	}
	return "tok", true, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.Unlocked = append(l.Unlocked, key)
	return nil
}

type MockNotifier struct {
	Texts []string
	Err   error
}

func (n *MockNotifier) Notify(ctx context.Context, text string) error {
	n.Texts = append(n.Texts, text)
	return n.Err
}

// -----------------------------
// Messaging
// -----------------------------

type MockWhatsAppGateway struct {
	SendTextFunc func(ctx context.Context, number, text string) (string, error)
	Sent         []string
}

func (g *MockWhatsAppGateway) Name() string { return "mock" }

func (g *MockWhatsAppGateway) SendText(ctx context.Context, number, text string) (string, error) {
	g.Sent = append(g.Sent, number)
	if g.SendTextFunc != nil {
		return g.SendTextFunc(ctx, number, text)
	}
	return "wamid.1", nil
}

type MockConversationRepo struct {
	byID    map[string]*model.WhatsAppConversation
	Touched []string
}

func NewMockConversationRepo() *MockConversationRepo {
	return &MockConversationRepo{byID: map[string]*model.WhatsAppConversation{}}
}

func (r *MockConversationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.WhatsAppConversation, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *MockConversationRepo) UpsertByPhone(ctx context.Context, tx repository.Tx, c *model.WhatsAppConversation) (*model.WhatsAppConversation, error) {
	for _, existing := range r.byID {
		if existing.Phone == c.Phone {
			return existing, nil
		}
	}
	cp := *c
	r.byID[c.ID] = &cp
	return &cp, nil
}

func (r *MockConversationRepo) TouchLastMessage(ctx context.Context, tx repository.Tx, id string) error {
	r.Touched = append(r.Touched, id)
	return nil
}

type MockMessageRepo struct {
	Saved   []*model.WhatsAppMessage
	SaveErr error
}

func (r *MockMessageRepo) Save(ctx context.Context, tx repository.Tx, m *model.WhatsAppMessage) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.Saved = append(r.Saved, m)
	return nil
}

// -----------------------------
// Admin
// -----------------------------

type MockRoleRepo struct {
	Roles map[string][]model.Role
	Err   error
}

func (r *MockRoleRepo) RolesForUser(ctx context.Context, tx repository.Tx, userID string) ([]model.Role, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Roles[userID], nil
}

type MockAuthAdmin struct {
	CreateUserFunc func(ctx context.Context, attrs model.AuthUserAttributes) (*model.AuthUser, error)
	UpdateUserFunc func(ctx context.Context, userID string, attrs model.AuthUserAttributes) (*model.AuthUser, error)
	DeleteUserFunc func(ctx context.Context, userID string) error
}

func (a *MockAuthAdmin) CreateUser(ctx context.Context, attrs model.AuthUserAttributes) (*model.AuthUser, error) {
	if a.CreateUserFunc != nil {
		return a.CreateUserFunc(ctx, attrs)
	}
	return &model.AuthUser{ID: "new-user", Email: attrs.Email}, nil
}

func (a *MockAuthAdmin) UpdateUser(ctx context.Context, userID string, attrs model.AuthUserAttributes) (*model.AuthUser, error) {
	if a.UpdateUserFunc != nil {
		return a.UpdateUserFunc(ctx, userID, attrs)
	}
	return &model.AuthUser{ID: userID, Email: attrs.Email}, nil
}

func (a *MockAuthAdmin) DeleteUser(ctx context.Context, userID string) error {
	if a.DeleteUserFunc != nil {
		return a.DeleteUserFunc(ctx, userID)
	}
	return nil
}

type MockObjectStorage struct {
	existing map[string]bool
	Folders  []string
	Err      error
}

func (s *MockObjectStorage) EnsureBucket(ctx context.Context, bucket string) (bool, error) {
	if s.Err != nil {
		return false, s.Err
	}
	if s.existing == nil {
		s.existing = map[string]bool{}
	}
	if s.existing[bucket] {
		return false, nil
	}
	s.existing[bucket] = true
	return true, nil
}

func (s *MockObjectStorage) EnsureFolder(ctx context.Context, bucket, prefix string) error {
	if s.Err != nil {
		return s.Err
	}
	s.Folders = append(s.Folders, bucket+"/"+prefix)
	return nil
}
