package domain

import (
	"testing"
	"time"
)

func TestCallSession_Other(t *testing.T) {
	s := NewCallSession("a", "b", time.Unix(0, 0))
	if s.Other("a") != "b" || s.Other("b") != "a" {
		t.Fatalf("Other is not symmetric: %+v", s)
	}
}

func TestCallSession_StatusFor(t *testing.T) {
	s := NewCallSession("a", "b", time.Unix(0, 0))
	if s.StatusFor("a") != CallOffering {
		t.Errorf("caller view = %s, want offering", s.StatusFor("a"))
	}
	if s.StatusFor("b") != CallReceiving {
		t.Errorf("callee view = %s, want receiving", s.StatusFor("b"))
	}

	s.Status = CallConnected
	if s.StatusFor("a") != CallConnected || s.StatusFor("b") != CallConnected {
		t.Errorf("connected must look the same from both sides")
	}
}

func TestValidateUserID(t *testing.T) {
	if _, err := ValidateUserID(""); err != ErrUserIDEmpty {
		t.Errorf("empty id: %v", err)
	}
	long := make([]byte, MaxUserIDLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := ValidateUserID(string(long)); err != ErrUserIDTooLong {
		t.Errorf("long id: %v", err)
	}
	if uid, err := ValidateUserID("665f2e0a"); err != nil || uid != "665f2e0a" {
		t.Errorf("valid id rejected: %v", err)
	}
}
