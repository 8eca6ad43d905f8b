package boxkeep

import (
	"context"
	"errors"
	"testing"

	"github.com/avelez/boxkeep/core"
	"github.com/avelez/boxkeep/pkg/crypto"
	"github.com/avelez/boxkeep/services"
)

func testConfig() Config {
	return Config{
		Storage: services.NewFakeStorage(),
		Issuer:  crypto.NewJWTIssuer("access-secret", "refresh-secret", 0, 0),
		Gateway: services.NewFakeGateway(),
	}
}

func TestNew_RequiredAdapters(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing storage",
			mutate:  func(c *Config) { c.Storage = nil },
			wantErr: ErrStorageRequired,
		},
		{
			name:    "missing issuer",
			mutate:  func(c *Config) { c.Issuer = nil },
			wantErr: ErrIssuerRequired,
		},
		{
			name:    "missing gateway",
			mutate:  func(c *Config) { c.Gateway = nil },
			wantErr: ErrGatewayRequired,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := testConfig()
			test.mutate(&config)

			_, err := New(config)
			if !errors.Is(err, test.wantErr) {
				t.Errorf("New() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestNew_WiresWorkingAuthFlow(t *testing.T) {
	app, err := New(testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := app.Auth.Register(context.Background(), RegisterInput{
		Email:       "alice@example.com",
		Password:    "correct-horse",
		AgreedTerms: true,
		Collaborators: []core.CollaboratorInput{
			{FirstName: "Bob", Email: "bob@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User.Role != RoleUser {
		t.Errorf("role = %q, want %q", result.User.Role, RoleUser)
	}

	pair, err := app.Auth.Refresh(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("rotated pair incomplete")
	}
}
