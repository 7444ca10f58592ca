package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhil/teamtasks/internal/apperror"
	"github.com/nikhil/teamtasks/internal/models"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	return m
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	m := newManager(t)

	token, err := m.Issue("user-1", models.RoleAdmin)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	p, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if p.UserID != "user-1" || p.Role != models.RoleAdmin || !p.IsAdmin() {
		t.Errorf("principal = %+v", p)
	}
}

func TestVerifyRejects(t *testing.T) {
	m := newManager(t)
	good, err := m.Issue("user-1", models.RoleMember)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other, _ := NewTokenManager("another-secret", time.Hour)
	foreign, _ := other.Issue("user-1", models.RoleMember)

	expired := newManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _ := expired.Issue("user-1", models.RoleMember)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	wrongAlg, _ := hs512.SignedString([]byte("test-secret"))

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	missingRole, _ := noRole.SignedString([]byte("test-secret"))

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             models.RoleMember,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})
	missingExp, _ := noExp.SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered", good + "x"},
		{"foreign secret", foreign},
		{"expired", stale},
		{"alg none", unsigned},
		{"other algorithm", wrongAlg},
		{"missing role", missingRole},
		{"missing expiry", missingExp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			if !apperror.Is(err, apperror.KindUnauthenticated) {
				t.Errorf("Verify() error = %v, want unauthenticated", err)
			}
		})
	}
}

func TestNewTokenManagerValidation(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err != ErrEmptySecret {
		t.Errorf("empty secret error = %v", err)
	}
	if _, err := NewTokenManager("s", 0); err == nil {
		t.Error("expected error for zero lifetime")
	}
}
