package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avelez/boxkeep/core"
)

// FakeStorage is a test-only in-memory implementation of core.Storage.
// It enforces the same uniqueness rules the real schema does and exposes
// error fields for behavior injection.
type FakeStorage struct {
	mu            sync.RWMutex
	users         map[string]*core.User
	sessions      map[string]*core.Session
	collaborators map[string]*core.Collaborator
	orders        map[string]*core.Order
	addresses     map[string]*core.Address
	events        map[string]bool

	createErr error
	getErr    error
	updateErr error
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		users:         make(map[string]*core.User),
		sessions:      make(map[string]*core.Session),
		collaborators: make(map[string]*core.Collaborator),
		orders:        make(map[string]*core.Order),
		addresses:     make(map[string]*core.Address),
		events:        make(map[string]bool),
	}
}

// UserStorage implementation

func (f *FakeStorage) CreateUser(ctx context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	return f.insertUser(u)
}

func (f *FakeStorage) insertUser(u *core.User) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.ErrEmailTaken
		}
	}
	f.users[u.ID] = u
	return nil
}

func (f *FakeStorage) CreateUserWithCollaborators(ctx context.Context, u *core.User, collaborators []core.Collaborator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if err := f.insertUser(u); err != nil {
		return err
	}
	for i := range collaborators {
		c := collaborators[i]
		f.collaborators[c.ID] = &c
	}
	return nil
}

func (f *FakeStorage) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) GetUserByProvider(ctx context.Context, providerID string, method core.AuthMethod) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, u := range f.users {
		if u.AuthMethod == method && u.ProviderID != nil && *u.ProviderID == providerID {
			return u, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) FindUsersByEmails(ctx context.Context, emails []string) ([]*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	wanted := make(map[string]bool, len(emails))
	for _, e := range emails {
		wanted[e] = true
	}
	var found []*core.User
	for _, u := range f.users {
		if wanted[u.Email] {
			found = append(found, u)
		}
	}
	return found, nil
}

func (f *FakeStorage) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[userID]
	if !ok {
		return core.ErrUserNotFound
	}
	u.StripeCustomerID = &customerID
	return nil
}

// SessionStorage implementation

func (f *FakeStorage) CreateSession(ctx context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *FakeStorage) GetSessionByRefreshToken(ctx context.Context, refreshToken, userID string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sessions {
		if s.RefreshToken == refreshToken && s.UserID == userID {
			return s, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (f *FakeStorage) UpdateSessionTokens(ctx context.Context, sessionID, token, refreshToken string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	s, ok := f.sessions[sessionID]
	if !ok {
		return core.ErrSessionNotFound
	}
	s.Token = token
	s.RefreshToken = refreshToken
	s.ExpiresAt = expiresAt
	s.UpdatedAt = time.Now()
	return nil
}

func (f *FakeStorage) DeleteSessionsByToken(ctx context.Context, token string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for id, s := range f.sessions {
		if s.Token == token {
			delete(f.sessions, id)
			count++
		}
	}
	return count, nil
}

func (f *FakeStorage) DeleteExpiredSessions(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	count := 0
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(now) {
			delete(f.sessions, id)
			count++
		}
	}
	return count, nil
}

// CollaboratorStorage implementation

func (f *FakeStorage) CreateCollaborator(ctx context.Context, c *core.Collaborator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.collaborators[c.ID] = c
	return nil
}

func (f *FakeStorage) GetCollaboratorsByUser(ctx context.Context, userID string) ([]*core.Collaborator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.Collaborator
	for _, c := range f.collaborators {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// OrderStorage implementation

func (f *FakeStorage) CreateOrderFromEvent(ctx context.Context, eventID string, o *core.Order, collaboratorIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if f.events[eventID] {
		return core.ErrEventProcessed
	}
	f.events[eventID] = true
	o.CollaboratorIDs = collaboratorIDs
	f.orders[o.ID] = o
	return nil
}

func (f *FakeStorage) GetOrderByID(ctx context.Context, id string) (*core.Order, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, core.ErrOrderNotFound
}

func (f *FakeStorage) GetOrdersByUser(ctx context.Context, userID string) ([]*core.Order, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *FakeStorage) ListOrders(ctx context.Context, filter core.OrderFilter) ([]*core.Order, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.Order
	for _, o := range f.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *FakeStorage) UpdateOrderStatus(ctx context.Context, id string, status core.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	o, ok := f.orders[id]
	if !ok {
		return core.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	return nil
}

// AddressStorage implementation

func (f *FakeStorage) CreateAddress(ctx context.Context, a *core.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.addresses[a.ID] = a
	return nil
}

func (f *FakeStorage) GetAddressByID(ctx context.Context, id string) (*core.Address, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if a, ok := f.addresses[id]; ok {
		return a, nil
	}
	return nil, core.ErrAddressNotFound
}

func (f *FakeStorage) GetAddressesByUser(ctx context.Context, userID string) ([]*core.Address, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*core.Address
	for _, a := range f.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeStorage) UpdateAddress(ctx context.Context, a *core.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.addresses[a.ID]; !ok {
		return core.ErrAddressNotFound
	}
	f.addresses[a.ID] = a
	return nil
}

func (f *FakeStorage) DeleteAddress(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.addresses[id]; !ok {
		return core.ErrAddressNotFound
	}
	delete(f.addresses, id)
	return nil
}

// Test helpers

func (f *FakeStorage) UserCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.users)
}

func (f *FakeStorage) SessionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

func (f *FakeStorage) CollaboratorCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.collaborators)
}

func (f *FakeStorage) OrderCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.orders)
}

func (f *FakeStorage) SetCreateError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

// FakeGateway is a test-only implementation of core.PaymentGateway.
// VerifyWebhook accepts any payload carrying the literal signature "valid"
// and returns the injected Event.
type FakeGateway struct {
	mu sync.Mutex

	customersCreated int
	sessions         []core.CheckoutParams

	customerErr error
	sessionErr  error

	// Event returned by VerifyWebhook when the signature matches.
	Event *core.WebhookEvent
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (f *FakeGateway) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.customerErr != nil {
		return "", f.customerErr
	}
	f.customersCreated++
	return fmt.Sprintf("cus_fake_%d", f.customersCreated), nil
}

func (f *FakeGateway) CreateCheckoutSession(ctx context.Context, params core.CheckoutParams) (*core.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	f.sessions = append(f.sessions, params)
	return &core.CheckoutSession{
		ID:  fmt.Sprintf("cs_fake_%d", len(f.sessions)),
		URL: "https://checkout.example.com/pay",
	}, nil
}

func (f *FakeGateway) VerifyWebhook(payload []byte, signature string) (*core.WebhookEvent, error) {
	if signature != "valid" || f.Event == nil {
		return nil, core.ErrWebhookSignature
	}
	return f.Event, nil
}

func (f *FakeGateway) CustomersCreated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customersCreated
}

func (f *FakeGateway) LastCheckout() *core.CheckoutParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sessions) == 0 {
		return nil
	}
	return &f.sessions[len(f.sessions)-1]
}

var errFakeStore = errors.New("store unavailable")
