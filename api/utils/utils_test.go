package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("alice@example.com") {
		t.Error("expected valid address to pass")
	}
	if ValidateEmail("not-an-address") {
		t.Error("expected invalid address to fail")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("expected matching password to check out")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestParseMessageID(t *testing.T) {
	oid, uid, err := ParseMessageID("507f1f77bcf86cd799439011:42")
	if err != nil {
		t.Fatalf("ParseMessageID: %v", err)
	}
	if oid.Hex() != "507f1f77bcf86cd799439011" || uid != 42 {
		t.Errorf("got oid=%s uid=%d", oid.Hex(), uid)
	}

	if _, _, err := ParseMessageID("not-valid"); err == nil {
		t.Error("expected malformed message ID to error")
	}
}

func TestValidateUsername(t *testing.T) {
	if !ValidateUsername("alice123") {
		t.Error("expected alphanumeric username to pass")
	}
	if ValidateUsername("al") {
		t.Error("expected too-short username to fail")
	}
	if ValidateUsername("alice!") {
		t.Error("expected username with punctuation to fail")
	}
}

func TestParseIntParamDefault(t *testing.T) {
	if got := ParseIntParam("", 20); got != 20 {
		t.Errorf("ParseIntParam empty = %d", got)
	}
	if got := ParseIntParam("7", 20); got != 7 {
		t.Errorf("ParseIntParam = %d", got)
	}
}

func TestFormatMessageIDRoundTrips(t *testing.T) {
	oid, _, _ := ParseMessageID("507f1f77bcf86cd799439011:42")
	if got := FormatMessageID(oid, 42); got != "507f1f77bcf86cd799439011:42" {
		t.Errorf("FormatMessageID = %q", got)
	}
}
