package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	accessToken, _, userID := app.registerUser(t, "auth@test.com", "password123")
	if userID == "" {
		t.Fatal("expected a user id after registration")
	}

	// Access token works against a protected route
	rec := app.request("GET", "/api/v1/profile", "", accessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on profile, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" {
		t.Errorf("expected email auth@test.com, got %v", user["email"])
	}

	// Fresh login issues a working pair
	rec = app.request("POST", "/api/v1/auth/login",
		`{"email":"auth@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on login, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_WrongPasswordRejected(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "wrongpw@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"wrongpw@test.com","password":"not-the-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_DuplicateEmailRejected(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dupe@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"dupe@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_RefreshRotation(t *testing.T) {
	app := setupApp(t)
	_, refreshToken, _ := app.registerUser(t, "rotate@test.com", "password123")

	// Exchange the refresh token for a new pair
	rec := app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on refresh, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	newAccess := result["access_token"].(string)
	if newAccess == "" {
		t.Fatal("expected a new access token")
	}

	// The old refresh token was rotated out and must be rejected
	rec = app.request("POST", "/api/v1/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, refreshToken), "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 reusing rotated refresh token, got %d", rec.Code)
	}

	// The new access token works
	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with refreshed access token, got %d", rec.Code)
	}
}

func TestAuth_RefreshTokenRejectedAsAccessToken(t *testing.T) {
	app := setupApp(t)
	_, refreshToken, _ := app.registerUser(t, "tokentype@test.com", "password123")

	rec := app.request("GET", "/api/v1/profile", "", refreshToken)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 using refresh token as access token, got %d", rec.Code)
	}
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/accounts", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
}
