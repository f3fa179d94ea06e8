package app

import (
	"errors"
	"testing"
	"time"

	"github.com/kavinsood/instaclone-signal/internal/domain"
)

func TestCallTable_BeginOfferBusy(t *testing.T) {
	tbl := NewCallTable()
	now := time.Unix(1000, 0)

	if _, err := tbl.BeginOffer("a", "b", now); err != nil {
		t.Fatalf("first offer: %v", err)
	}

	cases := []struct {
		name           string
		caller, callee domain.UserID
	}{
		{"caller busy", "a", "c"},
		{"callee busy", "c", "b"},
		{"both busy reversed", "b", "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tbl.BeginOffer(tc.caller, tc.callee, now); !errors.Is(err, ErrBusy) {
				t.Fatalf("BeginOffer(%s,%s) = %v, want ErrBusy", tc.caller, tc.callee, err)
			}
		})
	}

	if tbl.Count() != 1 {
		t.Fatalf("failed offers must not create sessions, got %d", tbl.Count())
	}
}

func TestCallTable_GetDerivesParticipantView(t *testing.T) {
	tbl := NewCallTable()
	if _, err := tbl.BeginOffer("a", "b", time.Unix(1000, 0)); err != nil {
		t.Fatal(err)
	}

	sa, ok := tbl.Get("a")
	if !ok || sa.Status != domain.CallOffering {
		t.Fatalf("caller view = %+v, want offering", sa)
	}
	sb, ok := tbl.Get("b")
	if !ok || sb.Status != domain.CallReceiving {
		t.Fatalf("callee view = %+v, want receiving", sb)
	}
	if sa.ID != sb.ID {
		t.Fatalf("both lookups must land on the same session")
	}
}

func TestCallTable_AcceptAnswer(t *testing.T) {
	tbl := NewCallTable()
	if _, err := tbl.BeginOffer("a", "b", time.Unix(1000, 0)); err != nil {
		t.Fatal(err)
	}

	s, err := tbl.AcceptAnswer("b", "a")
	if err != nil {
		t.Fatalf("AcceptAnswer: %v", err)
	}
	if s.Status != domain.CallConnected {
		t.Fatalf("status = %s, want connected", s.Status)
	}
	for _, uid := range []domain.UserID{"a", "b"} {
		got, ok := tbl.Get(uid)
		if !ok || got.Status != domain.CallConnected {
			t.Fatalf("view for %s = %+v, want connected", uid, got)
		}
	}
}

func TestCallTable_AcceptAnswerNotFound(t *testing.T) {
	tbl := NewCallTable()
	if _, err := tbl.AcceptAnswer("b", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a late answer, got %v", err)
	}

	// A session with the wrong counterpart does not match either.
	if _, err := tbl.BeginOffer("a", "b", time.Unix(1000, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.AcceptAnswer("b", "c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for mismatched peer, got %v", err)
	}
}

func TestCallTable_TerminateByEitherParticipant(t *testing.T) {
	for _, by := range []domain.UserID{"a", "b"} {
		tbl := NewCallTable()
		if _, err := tbl.BeginOffer("a", "b", time.Unix(1000, 0)); err != nil {
			t.Fatal(err)
		}

		s, ok := tbl.Terminate(by)
		if !ok {
			t.Fatalf("Terminate(%s) reported no session", by)
		}
		want := domain.UserID("b")
		if by == "b" {
			want = "a"
		}
		if other := s.Other(by); other != want {
			t.Fatalf("Other(%s) = %s, want %s", by, other, want)
		}
		if tbl.IsBusy("a") || tbl.IsBusy("b") {
			t.Fatalf("termination via %s must clear both participants", by)
		}
		if _, ok := tbl.Get("a"); ok {
			t.Fatalf("lookup by a should be empty")
		}
		if _, ok := tbl.Get("b"); ok {
			t.Fatalf("lookup by b should be empty")
		}
	}
}

func TestCallTable_TerminateNoSession(t *testing.T) {
	tbl := NewCallTable()
	if _, ok := tbl.Terminate("ghost"); ok {
		t.Fatalf("expected no session for ghost")
	}
}

func TestCallTable_ExpireOnlyWhileOffering(t *testing.T) {
	tbl := NewCallTable()
	s, err := tbl.BeginOffer("a", "b", time.Unix(1000, 0))
	if err != nil {
		t.Fatal(err)
	}

	// Answer lands before the timer fires: expiry must become a no-op.
	if _, err := tbl.AcceptAnswer("b", "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.Expire(s.ID); ok {
		t.Fatalf("expire must not fire on a connected session")
	}
	if !tbl.IsBusy("a") {
		t.Fatalf("connected session must survive the timer")
	}

	tbl.Terminate("a")
	if _, ok := tbl.Expire(s.ID); ok {
		t.Fatalf("expire must not fire on a removed session")
	}
}

func TestCallTable_ExpirePendingOffer(t *testing.T) {
	tbl := NewCallTable()
	s, err := tbl.BeginOffer("a", "b", time.Unix(1000, 0))
	if err != nil {
		t.Fatal(err)
	}

	got, ok := tbl.Expire(s.ID)
	if !ok {
		t.Fatalf("expected pending offer to expire")
	}
	if got.Caller != "a" || got.Callee != "b" {
		t.Fatalf("expired session = %+v", got)
	}
	if tbl.IsBusy("a") || tbl.IsBusy("b") {
		t.Fatalf("expiry must clear both participants")
	}
}

func TestCallTable_ExpireStale(t *testing.T) {
	tbl := NewCallTable()
	old := time.Unix(1000, 0)
	if _, err := tbl.BeginOffer("a", "b", old); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.BeginOffer("c", "d", old.Add(10*time.Minute)); err != nil {
		t.Fatal(err)
	}
	// Stale connected sessions are swept too.
	if _, err := tbl.AcceptAnswer("b", "a"); err != nil {
		t.Fatal(err)
	}

	swept := tbl.ExpireStale(old.Add(5 * time.Minute))
	if len(swept) != 1 {
		t.Fatalf("swept %d sessions, want 1", len(swept))
	}
	if swept[0].Caller != "a" {
		t.Fatalf("swept the wrong session: %+v", swept[0])
	}
	if tbl.IsBusy("a") || tbl.IsBusy("b") {
		t.Fatalf("stale session participants must be cleared")
	}
	if !tbl.IsBusy("c") || !tbl.IsBusy("d") {
		t.Fatalf("fresh session must survive the sweep")
	}
}
