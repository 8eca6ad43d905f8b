package core

// CollaboratorInput is one collaborator submitted at registration time.
type CollaboratorInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// RegisterInput contains the data needed to register a new local account.
type RegisterInput struct {
	Email            string              `json:"email"`
	Password         string              `json:"password"`
	Name             string              `json:"name"`
	LastName         string              `json:"lastName"`
	Phone            string              `json:"phone"`
	AgreedTerms      bool                `json:"agreedTerms"`
	MarketingConsent bool                `json:"marketingConsent"`
	Collaborators    []CollaboratorInput `json:"collaborators"`
}

// AdminRegisterInput creates a user directly with an explicit role.
// No collaborators, no session.
type AdminRegisterInput struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	LastName         string `json:"lastName"`
	Phone            string `json:"phone"`
	Role             Role   `json:"role"`
	AgreedTerms      bool   `json:"agreedTerms"`
	MarketingConsent bool   `json:"marketingConsent"`
}

// LoginInput contains the credentials for local authentication.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleProfile is the identity asserted by Google after OAuth.
type GoogleProfile struct {
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	LastName   string `json:"lastName"`
	Phone      string `json:"phone"`
}

// TokenPair is one issued access/refresh pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned by every flow that ends with a signed-in user.
type AuthResult struct {
	User *Profile `json:"user"`
	TokenPair
}

// AddressInput is the mutable part of an address.
type AddressInput struct {
	Label    string `json:"label"`
	Street1  string `json:"street1"`
	Street2  string `json:"street2"`
	City     string `json:"city"`
	Province string `json:"province"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
}
