package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avelez/boxkeep/core"
	"github.com/avelez/boxkeep/pkg/crypto"
)

// AuthService drives the registration, login, OAuth and token flows.
type AuthService struct {
	db        core.Storage
	passwords crypto.PasswordHandler
	sessions  *SessionManager

	// RejectSelfCollaborator rejects registrations where a collaborator
	// shares the registrant's own email. Off by default: the historical
	// behavior only checks submitted emails against stored users.
	RejectSelfCollaborator bool
}

func NewAuthService(db core.Storage, passwords crypto.PasswordHandler, sessions *SessionManager) *AuthService {
	return &AuthService{
		db:        db,
		passwords: passwords,
		sessions:  sessions,
	}
}

// Register creates a local account with its collaborators and signs it in.
func (s *AuthService) Register(ctx context.Context, input core.RegisterInput) (*core.AuthResult, error) {
	// Step 1: Validate terms and collaborator presence
	if !input.AgreedTerms {
		return nil, core.ErrTermsNotAgreed
	}
	if len(input.Collaborators) == 0 {
		return nil, core.ErrCollaboratorsRequired
	}
	if s.RejectSelfCollaborator {
		for _, c := range input.Collaborators {
			if strings.EqualFold(c.Email, input.Email) {
				return nil, core.ErrSelfCollaborator
			}
		}
	}

	// Step 2: Check the main email and every collaborator email against
	// existing users in one batched lookup
	emails := make([]string, 0, len(input.Collaborators)+1)
	emails = append(emails, input.Email)
	for _, c := range input.Collaborators {
		emails = append(emails, c.Email)
	}

	existing, err := s.db.FindUsersByEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(existing) > 0 {
		taken := make(map[string]bool, len(existing))
		for _, u := range existing {
			taken[u.Email] = true
		}
		if taken[input.Email] {
			return nil, core.ErrEmailTaken
		}
		// Name the first colliding collaborator in input order, not lookup order.
		for _, c := range input.Collaborators {
			if taken[c.Email] {
				return nil, fmt.Errorf("%w: %s", core.ErrCollaboratorEmailTaken, c.Email)
			}
		}
		return nil, core.ErrEmailTaken
	}

	// Step 3: Hash the password
	hashed, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 4: Create the user and all collaborators in one transaction.
	// The pre-check above is not covered by the transaction's isolation;
	// a concurrent duplicate loses at the unique constraint instead.
	user := &core.User{
		ID:               uuid.NewString(),
		Email:            input.Email,
		Password:         &hashed,
		Name:             input.Name,
		LastName:         input.LastName,
		Phone:            input.Phone,
		Role:             core.RoleUser,
		AuthMethod:       core.AuthLocal,
		AgreedTerms:      input.AgreedTerms,
		MarketingConsent: input.MarketingConsent,
	}

	collaborators := make([]core.Collaborator, 0, len(input.Collaborators))
	for _, c := range input.Collaborators {
		collaborators = append(collaborators, core.Collaborator{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Phone:     c.Phone, // empty string when omitted
		})
	}

	if err := s.db.CreateUserWithCollaborators(ctx, user, collaborators); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 5: Issue the first session
	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &core.AuthResult{User: core.ProfileOf(user), TokenPair: *pair}, nil
}

// Login authenticates a local account by email and password.
//
// Unknown email, OAuth-only account and wrong password all collapse into
// the same generic error to avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, input core.LoginInput) (*core.AuthResult, error) {
	user, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Password == nil || user.AuthMethod != core.AuthLocal {
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwords.Verify(input.Password, *user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &core.AuthResult{User: core.ProfileOf(user), TokenPair: *pair}, nil
}

// GoogleSignInOrUp fetches or creates the account for a Google identity and
// signs it in. Keyed by (providerId, GOOGLE), so repeated calls with the
// same provider id land on the same user.
func (s *AuthService) GoogleSignInOrUp(ctx context.Context, profile core.GoogleProfile) (*core.AuthResult, error) {
	user, err := s.db.GetUserByProvider(ctx, profile.ProviderID, core.AuthGoogle)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user by provider: %w", err)
	}

	if user == nil {
		// No Google account yet. A LOCAL account under the same email must
		// not be silently taken over.
		byEmail, err := s.db.GetUserByEmail(ctx, profile.Email)
		if err != nil && !errors.Is(err, core.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
		if byEmail != nil && byEmail.AuthMethod == core.AuthLocal {
			return nil, core.ErrLocalAccountExists
		}

		providerID := profile.ProviderID
		user = &core.User{
			ID:         uuid.NewString(),
			Email:      profile.Email,
			Name:       profile.Name,
			LastName:   profile.LastName,
			Phone:      profile.Phone,
			Role:       core.RoleUser,
			AuthMethod: core.AuthGoogle,
			ProviderID: &providerID,
			// Onboarding is deferred; the user agrees to terms later.
			AgreedTerms:      false,
			MarketingConsent: false,
		}
		if err := s.db.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	pair, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &core.AuthResult{User: core.ProfileOf(user), TokenPair: *pair}, nil
}

// Refresh exchanges a refresh token for a rotated pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	return s.sessions.Rotate(ctx, refreshToken)
}

// Logout invalidates the session holding the given access token.
// Idempotent: an unknown token is a no-op.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.sessions.Destroy(ctx, accessToken)
}

// Me returns the profile snapshot for a user id.
func (s *AuthService) Me(ctx context.Context, userID string) (*core.Profile, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return core.ProfileOf(user), nil
}

// AdminRegister creates a user with an explicit role. Only admins may call
// it, and it issues no session.
func (s *AuthService) AdminRegister(ctx context.Context, actingUserID string, input core.AdminRegisterInput) (*core.Profile, error) {
	acting, err := s.db.GetUserByID(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrAdminOnly
		}
		return nil, fmt.Errorf("failed to load acting user: %w", err)
	}
	if acting.Role != core.RoleAdmin {
		return nil, core.ErrAdminOnly
	}

	existing, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrEmailTaken
	}

	hashed, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = core.RoleUser
	}

	user := &core.User{
		ID:               uuid.NewString(),
		Email:            input.Email,
		Password:         &hashed,
		Name:             input.Name,
		LastName:         input.LastName,
		Phone:            input.Phone,
		Role:             role,
		AuthMethod:       core.AuthLocal,
		AgreedTerms:      input.AgreedTerms,
		MarketingConsent: input.MarketingConsent,
	}

	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return core.ProfileOf(user), nil
}
