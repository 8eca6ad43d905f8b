package fiber

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/avelez/boxkeep/core"
	"github.com/avelez/boxkeep/pkg/crypto"
	"github.com/avelez/boxkeep/services"
)

type testEnv struct {
	app     *fiber.App
	store   *services.FakeStorage
	gateway *services.FakeGateway
	auth    *services.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := services.NewFakeStorage()
	gateway := services.NewFakeGateway()
	issuer := crypto.NewJWTIssuer("access-secret", "refresh-secret", 0, 0)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := services.NewSessionManager(store, store, issuer)
	auth := services.NewAuthService(store, crypto.NewArgon2(), sessions)
	payments := services.NewPaymentService(store, gateway, services.PaymentConfig{
		InitFeePriceID: "price_test",
		SuccessURL:     "https://front.example.com/success",
		CancelURL:      "https://front.example.com/cancel",
	}, log)
	orders := services.NewOrderService(store)
	directory := services.NewDirectoryService(store)

	adapter := New(auth, payments, orders, directory, issuer, log, Config{})

	app := fiber.New()
	adapter.RegisterRoutes(app)

	return &testEnv{app: app, store: store, gateway: gateway, auth: auth}
}

func (e *testEnv) registerUser(t *testing.T, email string) *core.AuthResult {
	t.Helper()
	result, err := e.auth.Register(context.Background(), core.RegisterInput{
		Email:       email,
		Password:    "correct-horse",
		Name:        "Alice",
		AgreedTerms: true,
		Collaborators: []core.CollaboratorInput{
			{FirstName: "Bob", Email: "bob+" + email},
		},
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return result
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestRegisterEndpoint_SetsAuthCookies(t *testing.T) {
	env := newTestEnv(t)

	req := jsonRequest(http.MethodPost, "/api/auth/register", core.RegisterInput{
		Email:       "alice@example.com",
		Password:    "correct-horse",
		Name:        "Alice",
		AgreedTerms: true,
		Collaborators: []core.CollaboratorInput{
			{FirstName: "Bob", Email: "bob@example.com"},
		},
	})

	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var body struct {
		User        *core.Profile `json:"user"`
		AccessToken string        `json:"accessToken"`
	}
	decodeBody(t, resp, &body)
	if body.User == nil || body.User.Email != "alice@example.com" {
		t.Errorf("user = %+v, want alice@example.com", body.User)
	}
	if body.AccessToken == "" {
		t.Error("accessToken missing from response body")
	}

	cookies := resp.Cookies()
	var gotAccess, gotRefresh bool
	for _, cookie := range cookies {
		switch cookie.Name {
		case accessCookie:
			gotAccess = true
			if cookie.Path != "/" {
				t.Errorf("access cookie path = %q, want /", cookie.Path)
			}
			if !cookie.HttpOnly {
				t.Error("access cookie not HttpOnly")
			}
		case refreshCookie:
			gotRefresh = true
			if cookie.Path != refreshCookiePath {
				t.Errorf("refresh cookie path = %q, want %q", cookie.Path, refreshCookiePath)
			}
		}
	}
	if !gotAccess || !gotRefresh {
		t.Errorf("cookies set: access=%v refresh=%v, want both", gotAccess, gotRefresh)
	}
}

func TestRegisterEndpoint_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input core.RegisterInput
	}{
		{
			name: "terms not agreed",
			input: core.RegisterInput{
				Email:    "a@example.com",
				Password: "pw",
				Collaborators: []core.CollaboratorInput{
					{Email: "b@example.com"},
				},
			},
		},
		{
			name: "no collaborators",
			input: core.RegisterInput{
				Email:       "a@example.com",
				Password:    "pw",
				AgreedTerms: true,
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/auth/register", test.input))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice@example.com")

	req := jsonRequest(http.MethodPost, "/api/auth/login", core.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestMeEndpoint_AuthFlow(t *testing.T) {
	env := newTestEnv(t)
	result := env.registerUser(t, "alice@example.com")

	// No token.
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	// Bearer token.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("with token: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var profile core.Profile
	decodeBody(t, resp, &profile)
	if profile.Email != "alice@example.com" {
		t.Errorf("profile email = %q, want alice@example.com", profile.Email)
	}

	// Cookie fallback.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: accessCookie, Value: result.AccessToken})
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("with cookie: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestRefreshEndpoint_RotatesViaCookie(t *testing.T) {
	env := newTestEnv(t)
	result := env.registerUser(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: result.RefreshToken})
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	decodeBody(t, resp, &body)
	if body.AccessToken == "" {
		t.Error("rotated accessToken missing")
	}

	// Old refresh token is dead after rotation.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookie, Value: result.RefreshToken})
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("reused token: status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestLogoutEndpoint_ClearsCookies(t *testing.T) {
	env := newTestEnv(t)
	result := env.registerUser(t, "alice@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+result.AccessToken)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == accessCookie || cookie.Name == refreshCookie {
			if cookie.Value != "" && cookie.MaxAge >= 0 {
				t.Errorf("cookie %s not cleared: value=%q maxAge=%d", cookie.Name, cookie.Value, cookie.MaxAge)
			}
		}
	}
	if env.store.SessionCount() != 0 {
		t.Errorf("sessions remaining = %d, want 0", env.store.SessionCount())
	}
}

func TestAdminEndpoints_RoleEnforcement(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	req := jsonRequest(http.MethodPost, "/api/admin/register", core.AdminRegisterInput{
		Email:    "new-admin@example.com",
		Password: "pw",
		Role:     core.RoleAdmin,
	})
	req.Header.Set("Authorization", "Bearer "+user.AccessToken)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}

	// Promote via the store and retry through a fresh login.
	stored, err := env.store.GetUserByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	stored.Role = core.RoleAdmin
	admin, err := env.auth.Login(context.Background(), core.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	req = jsonRequest(http.MethodPost, "/api/admin/register", core.AdminRegisterInput{
		Email:    "new-admin@example.com",
		Password: "pw",
		Role:     core.RoleAdmin,
	})
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("admin: status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
}

func TestWebhookEndpoint_BadSignature(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "garbage")
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if env.store.OrderCount() != 0 {
		t.Errorf("orders = %d, want 0", env.store.OrderCount())
	}
}

func TestWebhookEndpoint_MaterializesOrder(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	initData, err := json.Marshal(core.OrderInitData{ProtectionPlan: "basic"})
	if err != nil {
		t.Fatal(err)
	}
	env.gateway.Event = &core.WebhookEvent{
		ID:   "evt_1",
		Type: services.EventCheckoutCompleted,
		Metadata: map[string]string{
			"userId":        user.User.ID,
			"orderInitData": string(initData),
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "valid")
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if env.store.OrderCount() != 1 {
		t.Errorf("orders = %d, want 1", env.store.OrderCount())
	}

	// Redelivery is acknowledged without a second order.
	req = httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "valid")
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("redelivery: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if env.store.OrderCount() != 1 {
		t.Errorf("orders after redelivery = %d, want 1", env.store.OrderCount())
	}
}

func TestInitOrderEndpoint_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/stripe/initOrder", core.OrderInitData{}))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestInitOrderEndpoint_ReturnsCheckoutURL(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	req := jsonRequest(http.MethodPost, "/api/stripe/initOrder", core.OrderInitData{ProtectionPlan: "basic"})
	req.Header.Set("Authorization", "Bearer "+user.AccessToken)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var checkout core.CheckoutSession
	decodeBody(t, resp, &checkout)
	if checkout.URL == "" {
		t.Error("checkout URL missing")
	}
}

func TestChangeOrderStatusEndpoint_RejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")

	req := jsonRequest(http.MethodPut, "/api/orders/ord-1/status", map[string]string{
		"status": "SHIPPED_TO_MARS",
	})
	req.Header.Set("Authorization", "Bearer "+user.AccessToken)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAddressEndpoints_CRUD(t *testing.T) {
	env := newTestEnv(t)
	user := env.registerUser(t, "alice@example.com")
	authz := "Bearer " + user.AccessToken

	req := jsonRequest(http.MethodPost, "/api/address/", core.AddressInput{
		Street1: "Calle Mayor 1",
		City:    "Madrid",
	})
	req.Header.Set("Authorization", authz)
	resp, err := env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created core.Address
	decodeBody(t, resp, &created)
	if created.Country != "Spain" {
		t.Errorf("country = %q, want Spain", created.Country)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/address/"+created.ID, nil)
	req.Header.Set("Authorization", authz)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/address/"+created.ID, nil)
	req.Header.Set("Authorization", authz)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete: status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/address/"+created.ID, nil)
	req.Header.Set("Authorization", authz)
	resp, err = env.app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
