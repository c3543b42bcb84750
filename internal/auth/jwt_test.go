package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"mealbook/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-0123456789"

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	token, err := m.Generate("alice", core.RoleAdmin)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != core.RoleAdmin {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestJWTManager_Generate_Invalid(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)

	if _, err := m.Generate("  ", core.RoleMember); err == nil {
		t.Error("expected error for empty subject")
	}
	if _, err := m.Generate("bob", core.Role("owner")); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestJWTManager_Validate_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	token, err := m.Generate("bob", core.RoleMember)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("another-secret-9876543210", time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager(testSecret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := later.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			Role:             core.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory"},
		})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.Validate(s); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			Role: core.Role("owner"),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "mallory",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		s, err := forged.SignedString([]byte(testSecret))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := m.Validate(s); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}

func TestRequireRole(t *testing.T) {
	admin := WithClaims(context.Background(), &Claims{Role: core.RoleAdmin})
	member := WithClaims(context.Background(), &Claims{Role: core.RoleMember})
	guest := WithClaims(context.Background(), &Claims{Role: core.Role("guest")})

	tests := []struct {
		name string
		ctx  context.Context
		role core.Role
		want error
	}{
		{"anonymous", context.Background(), core.RoleMember, ErrMissingToken},
		{"member reads", member, core.RoleMember, nil},
		{"member writes", member, core.RoleAdmin, core.ErrUnauthorized},
		{"admin reads", admin, core.RoleMember, nil},
		{"admin writes", admin, core.RoleAdmin, nil},
		{"unknown role reads", guest, core.RoleMember, ErrInvalidToken},
		{"unknown role writes", guest, core.RoleAdmin, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := RequireRole(tt.ctx, tt.role); !errors.Is(err, tt.want) {
				t.Errorf("RequireRole() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", ErrMissingToken},
		{"Bearer abc", "abc", nil},
		{"bearer abc", "abc", nil},
		{"Basic abc", "", ErrInvalidToken},
		{"Bearer", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		token, err := BearerToken(r)
		if token != tt.token || !errors.Is(err, tt.err) {
			t.Errorf("BearerToken(%q) = %q, %v", tt.header, token, err)
		}
	}
}
