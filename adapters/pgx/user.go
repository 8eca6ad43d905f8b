package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avelez/boxkeep/core"
)

const userColumns = `id, email, password, name, last_name, phone, role, auth_method,
	provider_id, agreed_terms, marketing_consent, stripe_customer_id, created_at, updated_at`

func scanUser(row pgx.Row) (*core.User, error) {
	u := &core.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Name, &u.LastName, &u.Phone, &u.Role, &u.AuthMethod,
		&u.ProviderID, &u.AgreedTerms, &u.MarketingConsent, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (a *Adapter) CreateUser(ctx context.Context, u *core.User) error {
	query := `INSERT INTO users (id, email, password, name, last_name, phone, role, auth_method,
	              provider_id, agreed_terms, marketing_consent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING created_at, updated_at`

	err := a.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.Password, u.Name, u.LastName, u.Phone, u.Role, u.AuthMethod,
		u.ProviderID, u.AgreedTerms, u.MarketingConsent,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrEmailTaken
		}
		return err
	}
	return nil
}

// CreateUserWithCollaborators writes the user and all collaborator rows in
// one transaction. The duplicate pre-check happens outside this call, so a
// racing insert is converted by the email unique constraint into
// core.ErrEmailTaken here and nothing is persisted.
func (a *Adapter) CreateUserWithCollaborators(ctx context.Context, u *core.User, collaborators []core.Collaborator) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO users (id, email, password, name, last_name, phone, role, auth_method,
	              provider_id, agreed_terms, marketing_consent)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		u.ID, u.Email, u.Password, u.Name, u.LastName, u.Phone, u.Role, u.AuthMethod,
		u.ProviderID, u.AgreedTerms, u.MarketingConsent,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrEmailTaken
		}
		return err
	}

	for i := range collaborators {
		c := &collaborators[i]
		_, err := tx.Exec(ctx,
			`INSERT INTO collaborators (id, user_id, first_name, last_name, email, phone)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (a *Adapter) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(a.pool.QueryRow(ctx, q, email))
}

func (a *Adapter) GetUserByProvider(ctx context.Context, providerID string, method core.AuthMethod) (*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE provider_id = $1 AND auth_method = $2`
	return scanUser(a.pool.QueryRow(ctx, q, providerID, method))
}

func (a *Adapter) FindUsersByEmails(ctx context.Context, emails []string) ([]*core.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = ANY($1)`

	rows, err := a.pool.Query(ctx, q, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (a *Adapter) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE users SET stripe_customer_id = $1, updated_at = now() WHERE id = $2`,
		customerID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrUserNotFound
	}
	return nil
}
