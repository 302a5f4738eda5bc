package resolve

import (
	"reflect"
	"testing"

	"github.com/jonwraymond/analyticsresolve/platform"
)

func rec(id string, hints ...string) platform.AccountRecord {
	return platform.AccountRecord{
		Platform:    platform.WebAnalytics,
		ID:          id,
		DisplayName: id,
		Hints:       hints,
	}
}

func ids(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Record.ID)
	}
	return out
}

func TestMatchRecords_ExactDominance(t *testing.T) {
	records := []platform.AccountRecord{
		rec("456", "example.com.fake.io"),
		rec("123", "example.com"),
	}

	got := MatchRecords(Normalize("example.com"), records, Config{})
	if len(got) == 0 {
		t.Fatal("expected a match")
	}
	if got[0].Record.ID != "123" || got[0].Type != MatchExactDomain || got[0].Score != 1 {
		t.Errorf("top = %+v, want 123 exact-domain 1.0", got[0])
	}
	for _, m := range got[1:] {
		if m.Record.ID == "456" {
			t.Errorf("456 should be suppressed by the exact match, got %+v", m)
		}
	}

	kept := MatchRecords(Normalize("example.com"), records, Config{KeepWeakerTiers: true})
	if !reflect.DeepEqual(ids(kept), []string{"123", "456"}) {
		t.Fatalf("KeepWeakerTiers ids = %v, want [123 456]", ids(kept))
	}
	if kept[1].Type.Exact() {
		t.Errorf("456 should rank strictly lower, got %+v", kept[1])
	}
}

func TestMatchRecords_DomainSuffixBoundary(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		hint      string
		wantMatch bool
		wantType  MatchType
		wantScore float64
	}{
		{name: "partial label", query: "depot.com", hint: "gatedepot.com"},
		{name: "subdomain", query: "gatedepot.com", hint: "shop.gatedepot.com", wantMatch: true, wantType: MatchDomainSuffix, wantScore: 2.0 / 3},
		{name: "deep subdomain", query: "gatedepot.com", hint: "eu.shop.gatedepot.com", wantMatch: true, wantType: MatchDomainSuffix, wantScore: 0.5},
		{name: "url hint", query: "gatedepot.com", hint: "https://shop.gatedepot.com/", wantMatch: true, wantType: MatchDomainSuffix, wantScore: 2.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchRecords(Normalize(tt.query), []platform.AccountRecord{rec("1", tt.hint)}, Config{})
			if !tt.wantMatch {
				for _, m := range got {
					if m.Type == MatchDomainSuffix {
						t.Errorf("unexpected domain-suffix match %+v", m)
					}
				}
				if len(got) != 0 {
					t.Errorf("expected no match, got %+v", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("got %d matches, want 1", len(got))
			}
			if got[0].Type != tt.wantType || got[0].Score != tt.wantScore {
				t.Errorf("match = %v %v, want %v %v", got[0].Type, got[0].Score, tt.wantType, tt.wantScore)
			}
		})
	}
}

func TestMatchRecords_Tiers(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		record   platform.AccountRecord
		wantType MatchType
	}{
		{name: "raw id", query: "properties/341922028", record: rec("properties/341922028", "gatedepot.com"), wantType: MatchExactID},
		{name: "id last segment", query: "341922028", record: rec("properties/341922028", "gatedepot.com"), wantType: MatchExactID},
		{name: "merchant id", query: " 123456 ", record: rec("123456", "gatedepot"), wantType: MatchExactID},
		{name: "url query", query: "https://www.gatedepot.com/", record: rec("p1", "gatedepot.com"), wantType: MatchExactDomain},
		{name: "display name", query: "GateDepot  Inc", record: rec("p1", "GateDepot Inc"), wantType: MatchExactDomain},
		{name: "token overlap", query: "gatedepot store", record: rec("p1", "gatedepot inc"), wantType: MatchTokenOverlap},
		{name: "typo", query: "gatedepto.com", record: rec("p1", "gatedepot.com"), wantType: MatchFuzzy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchRecords(Normalize(tt.query), []platform.AccountRecord{tt.record}, Config{})
			if len(got) != 1 {
				t.Fatalf("got %d matches, want 1: %+v", len(got), got)
			}
			if got[0].Type != tt.wantType {
				t.Errorf("Type = %v, want %v", got[0].Type, tt.wantType)
			}
			if got[0].Score <= 0 || got[0].Score > 1 {
				t.Errorf("Score = %v out of (0, 1]", got[0].Score)
			}
		})
	}
}

func TestMatchRecords_Thresholds(t *testing.T) {
	records := []platform.AccountRecord{rec("p1", "gate depot north america retail")}

	// 1 shared token out of 5: 0.2
	q := Normalize("gate")
	if got := MatchRecords(q, records, Config{}); len(got) != 0 {
		t.Errorf("default threshold should reject a 0.2 overlap, got %+v", got)
	}
	if got := MatchRecords(q, records, Config{TokenThreshold: 0.2}); len(got) != 1 || got[0].Type != MatchTokenOverlap {
		t.Errorf("overlap equal to the threshold should match, got %+v", got)
	}

	fuzzy := []platform.AccountRecord{rec("p1", "abcdefgh")}
	// one edit in eight: 0.875
	if got := MatchRecords(Normalize("abcdefgx"), fuzzy, Config{FuzzyThreshold: 0.9}); len(got) != 0 {
		t.Errorf("stricter fuzzy threshold should reject, got %+v", got)
	}
	if got := MatchRecords(Normalize("abcdefgx"), fuzzy, Config{}); len(got) != 1 || got[0].Score != 0.875 {
		t.Errorf("default fuzzy threshold should accept 0.875, got %+v", got)
	}
}

func TestMatchRecords_FuzzyOnlyWithoutTokenCandidates(t *testing.T) {
	records := []platform.AccountRecord{
		rec("a", "gatedepot inc"),
		rec("b", "gatedepo"),
	}
	got := MatchRecords(Normalize("gatedepot"), records, Config{})
	if len(got) != 1 || got[0].Record.ID != "a" || got[0].Type != MatchTokenOverlap {
		t.Errorf("fuzzy tier should be skipped once a token candidate exists, got %+v", got)
	}
}

func TestMatchRecords_OneMatchPerRecord(t *testing.T) {
	r := rec("p1", "gatedepot.com", "shop.gatedepot.com", "gatedepot inc")
	got := MatchRecords(Normalize("gatedepot.com"), []platform.AccountRecord{r}, Config{KeepWeakerTiers: true})
	if len(got) != 1 || got[0].Type != MatchExactDomain {
		t.Errorf("got %+v, want a single exact-domain match", got)
	}
}

func TestMatchRecords_Ordering(t *testing.T) {
	records := []platform.AccountRecord{
		{Platform: platform.SearchConsole, ID: "z", DisplayName: "Beta", Hints: []string{"gatedepot beta"}},
		{Platform: platform.WebAnalytics, ID: "y", DisplayName: "alpha", Hints: []string{"gatedepot alpha"}},
		{Platform: platform.WebAnalytics, ID: "x", DisplayName: "Gamma", Hints: []string{"gatedepot"}},
		{Platform: platform.MerchantCenter, ID: "w", DisplayName: "alpha", Hints: []string{"gatedepot alpha"}},
	}

	got := MatchRecords(Normalize("gatedepot shop"), records, Config{})
	// x has the highest overlap; y and w tie on name and split on platform order.
	want := []string{"x", "y", "w", "z"}
	if !reflect.DeepEqual(ids(got), want) {
		t.Errorf("order = %v, want %v", ids(got), want)
	}
}

func TestMatchRecords_Idempotent(t *testing.T) {
	records := []platform.AccountRecord{
		rec("1", "gatedepot.com"),
		rec("2", "shop.gatedepot.com"),
		rec("3", "gatedepot outlet"),
	}
	q := Normalize("gatedepot.com")
	cfg := Config{KeepWeakerTiers: true}

	first := MatchRecords(q, records, cfg)
	second := MatchRecords(q, records, cfg)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestMatchRecords_NoMatch(t *testing.T) {
	got := MatchRecords(Normalize("acme widgets"), []platform.AccountRecord{rec("1", "gatedepot.com")}, Config{})
	if len(got) != 0 {
		t.Errorf("got %+v, want no matches", got)
	}
}

func TestMatchType_Text(t *testing.T) {
	for mt := MatchExactID; mt <= MatchFuzzy; mt++ {
		b, err := mt.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error = %v", mt, err)
		}
		var back MatchType
		if err := back.UnmarshalText(b); err != nil || back != mt {
			t.Errorf("UnmarshalText(%q) = %v, %v; want %v", b, back, err, mt)
		}
	}
	var bad MatchType
	if err := bad.UnmarshalText([]byte("nope")); err == nil {
		t.Error("UnmarshalText should reject unknown names")
	}
}
