package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/avelez/boxkeep/core"
)

const addressColumns = `id, user_id, label, street1, street2, city, province,
	zip_code, country, created_at, updated_at`

func scanAddress(row pgx.Row) (*core.Address, error) {
	addr := &core.Address{}
	err := row.Scan(
		&addr.ID, &addr.UserID, &addr.Label, &addr.Street1, &addr.Street2,
		&addr.City, &addr.Province, &addr.ZipCode, &addr.Country,
		&addr.CreatedAt, &addr.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrAddressNotFound
		}
		return nil, err
	}
	return addr, nil
}

func (a *Adapter) CreateAddress(ctx context.Context, addr *core.Address) error {
	query := `INSERT INTO addresses (id, user_id, label, street1, street2, city,
	              province, zip_code, country)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`

	return a.pool.QueryRow(ctx, query,
		addr.ID, addr.UserID, addr.Label, addr.Street1, addr.Street2,
		addr.City, addr.Province, addr.ZipCode, addr.Country,
	).Scan(&addr.CreatedAt, &addr.UpdatedAt)
}

func (a *Adapter) GetAddressByID(ctx context.Context, id string) (*core.Address, error) {
	q := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	return scanAddress(a.pool.QueryRow(ctx, q, id))
}

func (a *Adapter) GetAddressesByUser(ctx context.Context, userID string) ([]*core.Address, error) {
	q := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY created_at`

	rows, err := a.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []*core.Address
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}
	return addresses, rows.Err()
}

func (a *Adapter) UpdateAddress(ctx context.Context, addr *core.Address) error {
	query := `UPDATE addresses
	          SET label = $1, street1 = $2, street2 = $3, city = $4,
	              province = $5, zip_code = $6, country = $7, updated_at = now()
	          WHERE id = $8
	          RETURNING updated_at`

	err := a.pool.QueryRow(ctx, query,
		addr.Label, addr.Street1, addr.Street2, addr.City,
		addr.Province, addr.ZipCode, addr.Country, addr.ID,
	).Scan(&addr.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return core.ErrAddressNotFound
		}
		return err
	}
	return nil
}

func (a *Adapter) DeleteAddress(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAddressNotFound
	}
	return nil
}
