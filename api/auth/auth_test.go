package auth

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	userID := primitive.NewObjectID()

	token, err := issuer.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != userID {
		t.Errorf("Verify returned %s, want %s", got.Hex(), userID.Hex())
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuerA := NewIssuer("secret-a", time.Hour)
	issuerB := NewIssuer("secret-b", time.Hour)

	token, err := issuerA.Issue(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuerB.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := &Issuer{secret: []byte("test-secret"), ttl: -time.Hour}
	token, err := issuer.Issue(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	if _, err := issuer.Verify("not.a.token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
