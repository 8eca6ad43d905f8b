package pgx

import (
	"context"
	"fmt"

	"github.com/avelez/boxkeep/core"
)

func (a *Adapter) CreateCollaborator(ctx context.Context, c *core.Collaborator) error {
	query := `INSERT INTO collaborators (id, user_id, first_name, last_name, email, phone)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`

	err := a.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.FirstName, c.LastName, c.Email, c.Phone,
	).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create collaborator: %w", err)
	}
	return nil
}

func (a *Adapter) GetCollaboratorsByUser(ctx context.Context, userID string) ([]*core.Collaborator, error) {
	query := `SELECT id, user_id, first_name, last_name, email, phone, created_at
	          FROM collaborators WHERE user_id = $1 ORDER BY created_at`

	rows, err := a.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collaborators []*core.Collaborator
	for rows.Next() {
		c := &core.Collaborator{}
		err := rows.Scan(&c.ID, &c.UserID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		collaborators = append(collaborators, c)
	}
	return collaborators, rows.Err()
}
