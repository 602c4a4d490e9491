package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/assessd/internal/config"
)

func testAuthService() *AuthService {
	return NewAuthService(&config.Config{
		TokenSecret:      "test-secret",
		EntryTokenExpiry: time.Hour,
		RecruiterJWTAge:  time.Hour,
		BcryptCost:       4, // min cost, keeps the test fast
	})
}

func TestEntryTokenRoundTrip(t *testing.T) {
	svc := testAuthService()
	testID, candidateID := uuid.New(), uuid.New()

	token, err := svc.IssueEntryToken(testID, candidateID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := svc.ValidateEntryToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.TestID != testID || claims.CandidateID != candidateID {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.TokenType != TokenTypeEntry {
		t.Fatalf("expected entry token type, got %s", claims.TokenType)
	}
}

func TestRecruiterTokenRejectedAsEntryToken(t *testing.T) {
	svc := testAuthService()

	token, err := svc.IssueRecruiterToken(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.ValidateEntryToken(token); err == nil {
		t.Fatal("recruiter token must not pass the entry gate")
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.RecruiterID != 42 {
		t.Fatalf("expected recruiter ID 42, got %d", claims.RecruiterID)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	svc := testAuthService()

	token, err := svc.IssueEntryToken(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := svc.ValidateToken(token + "x"); err == nil {
		t.Fatal("tampered token must be rejected")
	}

	other := NewAuthService(&config.Config{TokenSecret: "other-secret", EntryTokenExpiry: time.Hour})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := testAuthService()

	hash, err := svc.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := svc.CheckPassword(hash, "hunter22"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("wrong password must be rejected")
	}
}
