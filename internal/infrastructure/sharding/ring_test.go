package sharding

import (
	"fmt"
	"testing"
)

func TestRing_Owns(t *testing.T) {
	t.Run("empty ring owns everything", func(t *testing.T) {
		r := NewRing(nil, "scheduler-0")
		if !r.Owns("rwo-1") || r.Owner("rwo-1") != "scheduler-0" {
			t.Fatalf("single replica must own every key")
		}
	})

	t.Run("every key has exactly one owner", func(t *testing.T) {
		members := []string{"scheduler-0", "scheduler-1", "scheduler-2"}
		rings := make([]*Ring, len(members))
		for i, m := range members {
			rings[i] = NewRing(members, m)
		}
		perMember := map[string]int{}
		for k := 0; k < 500; k++ {
			key := fmt.Sprintf("rwo-%d", k)
			owners := 0
			for _, r := range rings {
				if r.Owns(key) {
					owners++
				}
			}
			if owners != 1 {
				t.Fatalf("key %s owned by %d replicas", key, owners)
			}
			perMember[rings[0].Owner(key)]++
		}
		for _, m := range members {
			if perMember[m] == 0 {
				t.Fatalf("member %s owns nothing: %v", m, perMember)
			}
		}
	})

	t.Run("ownership is stable and ignores blanks and duplicates", func(t *testing.T) {
		a := NewRing([]string{"a", "b", " ", "a"}, "a")
		b := NewRing([]string{"b", "a"}, "b")
		if len(a.Members()) != 2 {
			t.Fatalf("unexpected members %v", a.Members())
		}
		for k := 0; k < 50; k++ {
			key := fmt.Sprintf("def-%d", k)
			if a.Owner(key) != b.Owner(key) {
				t.Fatalf("member order must not change ownership of %s", key)
			}
		}
	})

	t.Run("self outside the ring owns nothing", func(t *testing.T) {
		r := NewRing([]string{"a", "b"}, "c")
		for k := 0; k < 50; k++ {
			if r.Owns(fmt.Sprintf("def-%d", k)) {
				t.Fatalf("non-member must not own keys")
			}
		}
	})
}
