package accounts

import (
	"testing"
	"time"

	"github.com/jonwraymond/analyticsresolve/platform"
)

func TestSnapshot(t *testing.T) {
	built := time.Date(2025, 9, 30, 17, 30, 0, 0, time.UTC)
	records := Flatten(platform.WebAnalytics, ga4Tree())
	records = append(records, platform.AccountRecord{ID: "accounts/1001", DisplayName: "duplicate"})

	s := NewSnapshot(platform.WebAnalytics, records, built)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (duplicate id dropped)", s.Len())
	}
	if s.Platform() != platform.WebAnalytics || !s.BuiltAt().Equal(built) {
		t.Errorf("Platform/BuiltAt = %q/%v", s.Platform(), s.BuiltAt())
	}

	acct, ok := s.Lookup("accounts/1001")
	if !ok || acct.DisplayName != "GateDepot Inc" {
		t.Errorf("Lookup(accounts/1001) = %+v, %v; first occurrence should win", acct, ok)
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup(missing) should return ok=false")
	}

	prop, _ := s.Lookup("properties/341922028")
	parent, ok := s.Parent(prop)
	if !ok || parent.ID != "accounts/1001" {
		t.Errorf("Parent() = %+v, %v", parent, ok)
	}
	if _, ok := s.Parent(acct); ok {
		t.Error("top-level record should have no parent")
	}

	kinds := s.CountByKind()
	if kinds[platform.KindAccount] != 1 || kinds[platform.KindProperty] != 1 {
		t.Errorf("CountByKind() = %v", kinds)
	}

	recs := s.Records()
	recs[0].ID = "mutated"
	if _, ok := s.Lookup("accounts/1001"); !ok || s.Records()[0].ID != "accounts/1001" {
		t.Error("Records() must return a copy")
	}
}
