package core

import (
	"encoding/json"
	"sort"
)

// IDSet is a set of rule ids that marshals as a sorted JSON array so the
// persisted unlock state is deterministic.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string)    { s[id] = struct{}{} }
func (s IDSet) Remove(id string) { delete(s, id) }
func (s IDSet) Len() int         { return len(s) }

// Sorted returns the ids in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

func (s IDSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *IDSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewIDSet(ids...)
	return nil
}

// UnlockState records which achievements have ever been unlocked and
// which challenges are active or completed. Achievements is append-only;
// CompletedChallenges is terminal. An id never appears in both challenge
// sets at once.
type UnlockState struct {
	Achievements        IDSet `json:"achievements"`
	ActiveChallenges    IDSet `json:"activeChallenges"`
	CompletedChallenges IDSet `json:"completedChallenges"`
}

func NewUnlockState() UnlockState {
	return UnlockState{
		Achievements:        NewIDSet(),
		ActiveChallenges:    NewIDSet(),
		CompletedChallenges: NewIDSet(),
	}
}

func (u UnlockState) Clone() UnlockState {
	return UnlockState{
		Achievements:        u.Achievements.Clone(),
		ActiveChallenges:    u.ActiveChallenges.Clone(),
		CompletedChallenges: u.CompletedChallenges.Clone(),
	}
}

// normalize re-creates nil sets after JSON decoding of a partial object.
func (u *UnlockState) Normalize() {
	if u.Achievements == nil {
		u.Achievements = NewIDSet()
	}
	if u.ActiveChallenges == nil {
		u.ActiveChallenges = NewIDSet()
	}
	if u.CompletedChallenges == nil {
		u.CompletedChallenges = NewIDSet()
	}
}
