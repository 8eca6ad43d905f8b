package core

import "time"

// Role is the authorization level attached to a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// AuthMethod records how an account proves its identity.
type AuthMethod string

const (
	AuthLocal  AuthMethod = "LOCAL"
	AuthGoogle AuthMethod = "GOOGLE"
)

// User represents a customer account.
//
// Password is nil for OAuth-only accounts. ProviderID is set only when
// AuthMethod is not LOCAL, and (ProviderID, AuthMethod) is unique then.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Password         *string    `json:"-"` // Never expose in JSON
	Name             string     `json:"name"`
	LastName         string     `json:"lastName"`
	Phone            string     `json:"phone"`
	Role             Role       `json:"role"`
	AuthMethod       AuthMethod `json:"-"`
	ProviderID       *string    `json:"-"`
	AgreedTerms      bool       `json:"-"`
	MarketingConsent bool       `json:"-"`
	StripeCustomerID *string    `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Profile is the snapshot of a user returned to clients.
// Consent flags and credentials never leave the service.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role"`
}

// ProfileOf maps a stored user to its client-facing snapshot.
func ProfileOf(u *User) *Profile {
	return &Profile{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		LastName: u.LastName,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}

// Collaborator is a contact attached to exactly one owning user.
type Collaborator struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session binds one issued token pair to a user.
//
// Exactly one live row exists per issued refresh token; refreshing
// overwrites the token fields on the same row instead of appending.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Token        string    `json:"-"` // access token
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// OrderStatus is the lifecycle state of an order. Only the two initial
// states are reachable here; later transitions are driven by fulfillment.
type OrderStatus string

const (
	StatusAwaitingKitShipment      OrderStatus = "AWAITING_FOR_KIT_SHIPMENT"
	StatusAwaitingPickupScheduling OrderStatus = "AWAITING_FOR_PICKUP_SCHEDULING"
)

// Order represents one confirmed purchase, created only by the payment
// webhook flow.
type Order struct {
	ID                   string      `json:"id"`
	UserID               string      `json:"userId"`
	ProtectionPlan       string      `json:"protectionPlan"`
	PackingKitQuantity   int         `json:"packingKitQuantity"`
	KitShippingDate      *time.Time  `json:"kitShippingDate,omitempty"`
	KitShippingAddressID *string     `json:"kitShippingAddressId,omitempty"`
	Status               OrderStatus `json:"status"`
	CollaboratorIDs      []string    `json:"collaboratorIds,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// OrderInitData is what the client asks for at checkout time. It rides
// inside the checkout session metadata and comes back on the webhook.
type OrderInitData struct {
	ProtectionPlan       string     `json:"protectionPlan"`
	WithKit              bool       `json:"withKit"`
	PackingKitQuantity   int        `json:"packingKitQuantity"`
	KitShippingDate      *time.Time `json:"kitShippingDate,omitempty"`
	KitShippingAddressID *string    `json:"kitShippingAddressId,omitempty"`
	Collaborators        []string   `json:"collaborators,omitempty"`
}

// Address is a user's saved shipping address.
type Address struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Label     string    `json:"label"`
	Street1   string    `json:"street1"`
	Street2   string    `json:"street2,omitempty"`
	City      string    `json:"city"`
	Province  string    `json:"province"`
	ZipCode   string    `json:"zipCode"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
