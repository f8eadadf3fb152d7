package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/skyhaventravel/skyhaven-backend/pkg/config"
	"github.com/skyhaventravel/skyhaven-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "skyhaven-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	cfg := testJWTConfig()
	userID := uuid.New()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID:      userID,
		Role:        enums.ActorRoleAdmin,
		Permissions: []enums.Permission{enums.PermissionPaymentsVerify, enums.PermissionPaymentsRefund},
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != userID {
		t.Fatal("user id mismatch")
	}
	if claims.Role != enums.ActorRoleAdmin {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if !claims.HasPermission(enums.PermissionPaymentsVerify) {
		t.Fatal("expected verify permission")
	}
	if claims.HasPermission(enums.PermissionPaymentsExport) {
		t.Fatal("did not expect export permission")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.ActorRole("ghost"),
	}); err == nil {
		t.Fatal("expected role validation error")
	}
}
