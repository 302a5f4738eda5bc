package accounts

import (
	"time"

	"github.com/jonwraymond/analyticsresolve/platform"
)

// Snapshot is the flattened inventory of one platform at one point in
// time. A Snapshot is never modified after construction and is safe to
// share between goroutines.
type Snapshot struct {
	platform platform.Platform
	records  []platform.AccountRecord
	byID     map[string]int
	builtAt  time.Time
}

// NewSnapshot builds a snapshot from records. Records with a duplicate id
// are dropped; the first occurrence wins.
func NewSnapshot(p platform.Platform, records []platform.AccountRecord, builtAt time.Time) *Snapshot {
	s := &Snapshot{
		platform: p,
		records:  make([]platform.AccountRecord, 0, len(records)),
		byID:     make(map[string]int, len(records)),
		builtAt:  builtAt,
	}
	for _, r := range records {
		if _, dup := s.byID[r.ID]; dup {
			continue
		}
		s.byID[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
	return s
}

// Platform returns the platform the snapshot was built for.
func (s *Snapshot) Platform() platform.Platform { return s.platform }

// BuiltAt returns the time the discovery that produced s finished.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Records returns the records in discovery order. The returned slice is a
// copy; the records' Hints slices are shared and must not be modified.
func (s *Snapshot) Records() []platform.AccountRecord {
	out := make([]platform.AccountRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Lookup returns the record with the given id.
func (s *Snapshot) Lookup(id string) (platform.AccountRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return platform.AccountRecord{}, false
	}
	return s.records[i], true
}

// Parent returns the record that contains r, if it is in the snapshot.
func (s *Snapshot) Parent(r platform.AccountRecord) (platform.AccountRecord, bool) {
	if r.ParentID == "" {
		return platform.AccountRecord{}, false
	}
	return s.Lookup(r.ParentID)
}

// CountByKind returns the number of records of each kind.
func (s *Snapshot) CountByKind() map[platform.Kind]int {
	counts := make(map[platform.Kind]int)
	for _, r := range s.records {
		counts[r.Kind]++
	}
	return counts
}
