package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// LikeSet is the set of user ids (hex) that like a post. It is stored as a
// BSON array and rendered in JSON as {"<userId>": true}.
type LikeSet []string

func (s LikeSet) Has(userID string) bool {
	for _, id := range s {
		if id == userID {
			return true
		}
	}
	return false
}

func (s LikeSet) Count() int { return len(s) }

// Toggle returns the set with userID flipped and whether it is now present.
func (s LikeSet) Toggle(userID string) (LikeSet, bool) {
	for i, id := range s {
		if id == userID {
			out := make(LikeSet, 0, len(s)-1)
			out = append(out, s[:i]...)
			return append(out, s[i+1:]...), false
		}
	}
	out := make(LikeSet, 0, len(s)+1)
	out = append(out, s...)
	return append(out, userID), true
}

func (s LikeSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]bool, len(s))
	for _, id := range s {
		m[id] = true
	}
	return json.Marshal(m)
}

// UnmarshalJSON accepts the object form. Entries set to false are dropped
// rather than kept as explicit "not liked" markers.
func (s *LikeSet) UnmarshalJSON(data []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("likes: %w", err)
	}
	out := make(LikeSet, 0, len(m))
	for id, liked := range m {
		if liked {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	*s = out
	return nil
}
