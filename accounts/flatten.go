package accounts

import (
	"strings"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// Flatten walks raw hierarchies depth-first and returns one record per node.
// A node's ParentID is the id of the node above it. Nodes without an id are
// skipped together with their subtree.
func Flatten(p platform.Platform, raws []platform.RawAccount) []platform.AccountRecord {
	var out []platform.AccountRecord
	var walk func(nodes []platform.RawAccount, parentID string)
	walk = func(nodes []platform.RawAccount, parentID string) {
		for _, n := range nodes {
			id := strings.TrimSpace(n.ID)
			if id == "" {
				continue
			}
			name := strings.TrimSpace(n.DisplayName)
			if name == "" {
				name = id
			}
			out = append(out, platform.AccountRecord{
				Platform:    p,
				ID:          id,
				DisplayName: name,
				Kind:        n.Kind,
				ParentID:    parentID,
				Hints:       platform.BuildHints(id, name, n.URLs),
			})
			walk(n.Children, id)
		}
	}
	walk(raws, "")
	return out
}
