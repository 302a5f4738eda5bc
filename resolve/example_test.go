package resolve_test

import (
	"fmt"

	"github.com/jonwraymond/analyticsresolve/platform"
	"github.com/jonwraymond/analyticsresolve/resolve"
)

func ExampleMatchRecords() {
	records := []platform.AccountRecord{
		{Platform: platform.WebAnalytics, ID: "properties/341922028", DisplayName: "GateDepot Inc", Hints: []string{"gatedepot inc", "gatedepot.com"}},
		{Platform: platform.WebAnalytics, ID: "properties/5550001", DisplayName: "GateDepot Shop", Hints: []string{"shop.gatedepot.com"}},
	}

	q := resolve.Normalize("https://www.GateDepot.com/")
	for _, m := range resolve.MatchRecords(q, records, resolve.Config{KeepWeakerTiers: true}) {
		fmt.Printf("%s %s %.2f\n", m.Record.ID, m.Type, m.Score)
	}
	// Output:
	// properties/341922028 exact-domain 1.00
	// properties/5550001 domain-suffix 0.67
}

func ExampleNormalize() {
	q := resolve.Normalize("  sc-domain:GateDepot.com/ ")
	fmt.Println(q.Normalized)
	fmt.Println(q.Host)
	// Output:
	// gatedepot.com
	// gatedepot.com
}
