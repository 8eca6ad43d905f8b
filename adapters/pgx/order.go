package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avelez/boxkeep/core"
)

// CreateOrderFromEvent records the webhook event id, the order and its
// collaborator links in one transaction. The primary key on
// webhook_events(event_id) makes redelivery of the same event fail the
// first insert, which surfaces as core.ErrEventProcessed before any order
// row is written.
func (a *Adapter) CreateOrderFromEvent(ctx context.Context, eventID string, o *core.Order, collaboratorIDs []string) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `INSERT INTO webhook_events (event_id) VALUES ($1)`, eventID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrEventProcessed
		}
		return err
	}

	query := `INSERT INTO orders (id, user_id, protection_plan, packing_kit_quantity,
	              kit_shipping_date, kit_shipping_address_id, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		o.ID, o.UserID, o.ProtectionPlan, o.PackingKitQuantity,
		o.KitShippingDate, o.KitShippingAddressID, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for _, collaboratorID := range collaboratorIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_collaborators (order_id, collaborator_id) VALUES ($1, $2)`,
			o.ID, collaboratorID,
		)
		if err != nil {
			return err
		}
	}
	o.CollaboratorIDs = collaboratorIDs

	return tx.Commit(ctx)
}

const orderColumns = `id, user_id, protection_plan, packing_kit_quantity,
	kit_shipping_date, kit_shipping_address_id, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*core.Order, error) {
	o := &core.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.ProtectionPlan, &o.PackingKitQuantity,
		&o.KitShippingDate, &o.KitShippingAddressID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (a *Adapter) GetOrderByID(ctx context.Context, id string) (*core.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}

	rows, err := a.pool.Query(ctx,
		`SELECT collaborator_id FROM order_collaborators WHERE order_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var collaboratorID string
		if err := rows.Scan(&collaboratorID); err != nil {
			return nil, err
		}
		order.CollaboratorIDs = append(order.CollaboratorIDs, collaboratorID)
	}
	return order, rows.Err()
}

func (a *Adapter) GetOrdersByUser(ctx context.Context, userID string) ([]*core.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return a.queryOrders(ctx, q, userID)
}

func (a *Adapter) ListOrders(ctx context.Context, filter core.OrderFilter) ([]*core.Order, error) {
	// NULL-able filter arguments keep this one statement.
	q := `SELECT ` + orderColumns + ` FROM orders
	      WHERE ($1 = '' OR user_id = $1)
	        AND ($2 = '' OR status = $2)
	      ORDER BY created_at DESC`
	return a.queryOrders(ctx, q, filter.UserID, string(filter.Status))
}

func (a *Adapter) UpdateOrderStatus(ctx context.Context, id string, status core.OrderStatus) error {
	tag, err := a.pool.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrOrderNotFound
	}
	return nil
}

func (a *Adapter) queryOrders(ctx context.Context, query string, args ...any) ([]*core.Order, error) {
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*core.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
