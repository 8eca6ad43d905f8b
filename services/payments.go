package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avelez/boxkeep/core"
)

// Metadata keys carried through the checkout session and back on the webhook.
const (
	metaUserID        = "userId"
	metaOrderInitData = "orderInitData"
)

// EventCheckoutCompleted is the only event type this service materializes
// orders from. Everything else is acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// PaymentConfig is the gateway-side configuration the service needs.
type PaymentConfig struct {
	InitFeePriceID string
	SuccessURL     string
	CancelURL      string
}

// PaymentService starts checkouts and converts confirmed payment events
// into orders.
type PaymentService struct {
	db      core.Storage
	gateway core.PaymentGateway
	config  PaymentConfig
	log     *slog.Logger
}

func NewPaymentService(db core.Storage, gateway core.PaymentGateway, config PaymentConfig, log *slog.Logger) *PaymentService {
	if log == nil {
		log = slog.Default()
	}
	return &PaymentService{
		db:      db,
		gateway: gateway,
		config:  config,
		log:     log,
	}
}

// InitOrder opens a checkout session for the user. No order row exists
// until the gateway confirms payment through the webhook.
func (s *PaymentService) InitOrder(ctx context.Context, userID string, init core.OrderInitData) (*core.CheckoutSession, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Create the gateway customer on first use and persist the reference,
	// so this step is idempotent across checkouts.
	customerID := ""
	if user.StripeCustomerID != nil {
		customerID = *user.StripeCustomerID
	}
	if customerID == "" {
		customerID, err = s.gateway.CreateCustomer(ctx, user.Email, user.Name, map[string]string{metaUserID: userID})
		if err != nil {
			return nil, fmt.Errorf("failed to create gateway customer: %w", err)
		}
		if err := s.db.SetStripeCustomerID(ctx, userID, customerID); err != nil {
			return nil, fmt.Errorf("failed to store gateway customer: %w", err)
		}
	}

	if s.config.InitFeePriceID == "" {
		return nil, core.ErrPriceNotConfigured
	}

	initJSON, err := json.Marshal(init)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order init data: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, core.CheckoutParams{
		PriceID:    s.config.InitFeePriceID,
		CustomerID: customerID,
		SuccessURL: s.config.SuccessURL,
		CancelURL:  s.config.CancelURL,
		Metadata: map[string]string{
			metaUserID:        userID,
			metaOrderInitData: string(initJSON),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session, nil
}

// HandleWebhook verifies and processes one gateway delivery.
//
// Deliveries are at-least-once and may be concurrent; the event id is
// recorded in the same transaction as the order, so a retry of an already
// processed event creates nothing.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventCheckoutCompleted:
		return s.checkoutCompleted(ctx, event)
	default:
		// Forward-compatible no-op; the gateway only needs a 2xx.
		s.log.Info("ignoring webhook event", "type", event.Type, "id", event.ID)
		return nil
	}
}

func (s *PaymentService) checkoutCompleted(ctx context.Context, event *core.WebhookEvent) error {
	userID := event.Metadata[metaUserID]
	rawInit := event.Metadata[metaOrderInitData]
	if userID == "" || rawInit == "" {
		// Without metadata the event cannot be correlated to a pending
		// order, and a retry would carry the same payload. Log and drop.
		s.log.Error("checkout event missing order metadata", "event", event.ID)
		return nil
	}

	var init core.OrderInitData
	if err := json.Unmarshal([]byte(rawInit), &init); err != nil {
		s.log.Error("checkout event carries malformed order metadata", "event", event.ID, "error", err)
		return nil
	}

	order := &core.Order{
		ID:     uuid.NewString(),
		UserID: userID,
		Status: core.StatusAwaitingPickupScheduling,
	}
	order.ProtectionPlan = init.ProtectionPlan
	if init.WithKit {
		order.Status = core.StatusAwaitingKitShipment
		order.PackingKitQuantity = init.PackingKitQuantity
		order.KitShippingDate = init.KitShippingDate
		order.KitShippingAddressID = init.KitShippingAddressID
	}

	err := s.db.CreateOrderFromEvent(ctx, event.ID, order, init.Collaborators)
	if errors.Is(err, core.ErrEventProcessed) {
		s.log.Info("duplicate webhook delivery, order already created", "event", event.ID)
		return nil
	}
	if err != nil {
		// Non-2xx so the gateway retries a transient store failure.
		return fmt.Errorf("failed to create order for event %s: %w", event.ID, err)
	}

	s.log.Info("order created", "order", order.ID, "user", userID, "status", order.Status)
	return nil
}
