package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// STORAGE PORTS (Database operations)
// ============================================

// UserStorage defines user-related database operations
type UserStorage interface {
	// CreateUserWithCollaborators writes the user row and every collaborator
	// row inside a single transaction. A unique-constraint violation on any
	// email surfaces as ErrEmailTaken so a lost duplicate-check race still
	// ends in a conflict, not a partial write.
	CreateUserWithCollaborators(ctx context.Context, u *User, collaborators []Collaborator) error
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByProvider(ctx context.Context, providerID string, method AuthMethod) (*User, error)
	// FindUsersByEmails is the batched duplicate lookup used at registration.
	FindUsersByEmails(ctx context.Context, emails []string) ([]*User, error)
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
}

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(ctx context.Context, s *Session) error
	// GetSessionByRefreshToken matches both the refresh token value and the
	// owning user, guarding against a token presented with a foreign session.
	GetSessionByRefreshToken(ctx context.Context, refreshToken, userID string) (*Session, error)
	// UpdateSessionTokens rotates the pair in place on the same row.
	UpdateSessionTokens(ctx context.Context, sessionID, token, refreshToken string, expiresAt time.Time) error
	// DeleteSessionsByToken removes every session holding the given access
	// token. Deleting an unknown token is a no-op.
	DeleteSessionsByToken(ctx context.Context, token string) (int, error)
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// CollaboratorStorage defines collaborator-related database operations
type CollaboratorStorage interface {
	CreateCollaborator(ctx context.Context, c *Collaborator) error
	GetCollaboratorsByUser(ctx context.Context, userID string) ([]*Collaborator, error)
}

// OrderStorage defines order-related database operations
type OrderStorage interface {
	// CreateOrderFromEvent records the gateway event id, the order row and
	// the collaborator links in one transaction. A previously recorded event
	// id surfaces as ErrEventProcessed and writes nothing.
	CreateOrderFromEvent(ctx context.Context, eventID string, o *Order, collaboratorIDs []string) error
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]*Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) error
}

// OrderFilter narrows admin order listings. Zero values match everything.
type OrderFilter struct {
	UserID string
	Status OrderStatus
}

// AddressStorage defines address-book database operations
type AddressStorage interface {
	CreateAddress(ctx context.Context, a *Address) error
	GetAddressByID(ctx context.Context, id string) (*Address, error)
	GetAddressesByUser(ctx context.Context, userID string) ([]*Address, error)
	UpdateAddress(ctx context.Context, a *Address) error
	DeleteAddress(ctx context.Context, id string) error
}

type Storage interface {
	UserStorage
	SessionStorage
	CollaboratorStorage
	OrderStorage
	AddressStorage
}

// ============================================
// TOKEN PORT
// ============================================

// AccessClaims is what an access token proves without a database round trip.
type AccessClaims struct {
	UserID string
	Email  string
	Role   Role
}

// TokenIssuer signs and verifies the two token kinds. Access tokens embed
// identity and role; refresh tokens embed only the user id. Expiry and
// signature failures map to ErrTokenExpired and ErrInvalidToken.
type TokenIssuer interface {
	AccessToken(claims AccessClaims) (string, error)
	RefreshToken(userID string) (string, error)
	VerifyAccess(token string) (*AccessClaims, error)
	VerifyRefresh(token string) (string, error)
}

// ============================================
// PAYMENT GATEWAY PORT
// ============================================

// CheckoutParams describes one checkout session to create.
type CheckoutParams struct {
	PriceID    string
	CustomerID string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the gateway's handle for a created checkout.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WebhookEvent is a signature-verified gateway notification.
type WebhookEvent struct {
	ID       string
	Type     string
	Metadata map[string]string
}

// PaymentGateway wraps the third-party billing provider.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// VerifyWebhook checks the signature over the exact raw request body.
	// Any failure returns ErrWebhookSignature; unverified payloads are
	// never processed.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
