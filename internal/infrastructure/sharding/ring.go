// Package sharding decides which scheduler replica owns a recurring definition.
package sharding

import (
	"strings"

	"github.com/buraksezer/consistent"
	"github.com/cespare/xxhash/v2"
)

type member string

func (m member) String() string { return string(m) }

type hasher struct{}

func (hasher) Sum64(data []byte) uint64 { return xxhash.Sum64(data) }

// Ring maps definition ids onto scheduler members with consistent hashing.
// An empty member list means a single replica that owns everything.
type Ring struct {
	self string
	ring *consistent.Consistent
}

func NewRing(members []string, self string) *Ring {
	self = strings.TrimSpace(self)
	seen := map[string]bool{}
	var list []consistent.Member
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		list = append(list, member(m))
	}
	if len(list) == 0 {
		return &Ring{self: self}
	}
	cfg := consistent.Config{
		PartitionCount:    271,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            hasher{},
	}
	return &Ring{self: self, ring: consistent.New(list, cfg)}
}

// Owner returns the member responsible for key, or self when the ring is empty.
func (r *Ring) Owner(key string) string {
	if r.ring == nil {
		return r.self
	}
	return r.ring.LocateKey([]byte(key)).String()
}

func (r *Ring) Owns(key string) bool {
	return r.Owner(key) == r.self
}

func (r *Ring) Members() []string {
	if r.ring == nil {
		return []string{r.self}
	}
	ms := r.ring.GetMembers()
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.String())
	}
	return out
}
