// Package boxkeep wires the storage-service marketplace backend: local and
// Google authentication with revocable sessions, Stripe-backed checkout,
// and webhook-driven order materialization.
package boxkeep

import (
	"errors"
	"log/slog"

	"github.com/avelez/boxkeep/core"
	"github.com/avelez/boxkeep/pkg/crypto"
	"github.com/avelez/boxkeep/services"
)

// interfaces
type (
	Storage        = core.Storage
	PaymentGateway = core.PaymentGateway
	TokenIssuer    = core.TokenIssuer

	PasswordHandler = crypto.PasswordHandler
)

// domain types
type (
	User         = core.User
	Profile      = core.Profile
	Collaborator = core.Collaborator
	Session      = core.Session
	Order        = core.Order
	Address      = core.Address

	Role       = core.Role
	AuthMethod = core.AuthMethod

	RegisterInput      = core.RegisterInput
	AdminRegisterInput = core.AdminRegisterInput
	LoginInput         = core.LoginInput
	GoogleProfile      = core.GoogleProfile
	OrderInitData      = core.OrderInitData
	AddressInput       = core.AddressInput
	AuthResult         = core.AuthResult
	TokenPair          = core.TokenPair
)

const (
	RoleUser  = core.RoleUser
	RoleAdmin = core.RoleAdmin
)

// Constructors (convenience re-exports)
var (
	NewArgon2    = crypto.NewArgon2
	NewJWTIssuer = crypto.NewJWTIssuer
)

var (
	ErrEmailTaken         = core.ErrEmailTaken
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrInvalidRefresh     = core.ErrInvalidRefresh
	ErrAdminOnly          = core.ErrAdminOnly
	ErrUserNotFound       = core.ErrUserNotFound
	ErrOrderNotFound      = core.ErrOrderNotFound
	ErrEventProcessed     = core.ErrEventProcessed
)

var (
	ErrStorageRequired = errors.New("boxkeep: storage adapter is required")
	ErrIssuerRequired  = errors.New("boxkeep: token issuer is required")
	ErrGatewayRequired = errors.New("boxkeep: payment gateway is required")
)

// Config collects the adapters and knobs New wires together. Storage,
// Issuer and Gateway have no defaults; everything else does.
type Config struct {
	Storage Storage
	Issuer  TokenIssuer
	Gateway PaymentGateway

	// PasswordHasher defaults to argon2id.
	PasswordHasher PasswordHandler

	Payment services.PaymentConfig
	Logger  *slog.Logger

	RejectSelfCollaborator bool
}

// App is the assembled service layer. Transport adapters sit on top of it.
type App struct {
	Auth      *services.AuthService
	Sessions  *services.SessionManager
	Payments  *services.PaymentService
	Orders    *services.OrderService
	Directory *services.DirectoryService
}

func New(config Config) (*App, error) {
	if config.Storage == nil {
		return nil, ErrStorageRequired
	}
	if config.Issuer == nil {
		return nil, ErrIssuerRequired
	}
	if config.Gateway == nil {
		return nil, ErrGatewayRequired
	}

	hasher := config.PasswordHasher
	if hasher == nil {
		hasher = crypto.NewArgon2()
	}

	sessions := services.NewSessionManager(config.Storage, config.Storage, config.Issuer)
	auth := services.NewAuthService(config.Storage, hasher, sessions)
	auth.RejectSelfCollaborator = config.RejectSelfCollaborator

	return &App{
		Auth:      auth,
		Sessions:  sessions,
		Payments:  services.NewPaymentService(config.Storage, config.Gateway, config.Payment, config.Logger),
		Orders:    services.NewOrderService(config.Storage),
		Directory: services.NewDirectoryService(config.Storage),
	}, nil
}
