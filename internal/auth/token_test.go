package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestStaticTokenSource(t *testing.T) {
	ctx := context.Background()

	if _, err := StaticTokenSource("").Token(ctx); !errors.Is(err, ErrNoCredential) {
		t.Errorf("empty source error = %v, want ErrNoCredential", err)
	}

	got, err := StaticTokenSource("abc").Token(ctx)
	if err != nil || got != "abc" {
		t.Errorf("Token() = %q, %v, want \"abc\", nil", got, err)
	}
}

func TestExpiryCheckSource(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:  "valid JWT passes through",
			token: signedToken(t, time.Now().Add(time.Hour)),
		},
		{
			name:    "expired JWT rejected",
			token:   signedToken(t, time.Now().Add(-time.Hour)),
			wantErr: ErrCredentialExpired,
		},
		{
			name:  "opaque token passes through",
			token: "not-a-jwt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &ExpiryCheckSource{Source: StaticTokenSource(tt.token)}
			got, err := src.Token(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.token {
				t.Errorf("Token() = %q, want %q", got, tt.token)
			}
		})
	}
}
