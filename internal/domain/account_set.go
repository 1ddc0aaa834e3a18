package domain

import "encoding/json"

// AccountSet is an insertion-ordered set of account ids. The zero value is ready to use.
type AccountSet struct {
	order []AccountID
	index map[AccountID]struct{}
}

func NewAccountSet(ids ...AccountID) AccountSet {
	var s AccountSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add reports whether id was newly inserted.
func (s *AccountSet) Add(id AccountID) bool {
	if s.index == nil {
		s.index = map[AccountID]struct{}{}
	}
	if _, ok := s.index[id]; ok {
		return false
	}

	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Remove reports whether id was present.
func (s *AccountSet) Remove(id AccountID) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}

	delete(s.index, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s AccountSet) Has(id AccountID) bool {
	_, ok := s.index[id]
	return ok
}

func (s AccountSet) Len() int {
	return len(s.order)
}

func (s AccountSet) Empty() bool {
	return len(s.order) == 0
}

// First returns the oldest member, or "" when the set is empty.
func (s AccountSet) First() AccountID {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

func (s AccountSet) Items() []AccountID {
	out := make([]AccountID, len(s.order))
	copy(out, s.order)
	return out
}

func (s AccountSet) Clone() AccountSet {
	return NewAccountSet(s.order...)
}

func (s AccountSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

func (s *AccountSet) UnmarshalJSON(data []byte) error {
	var ids []AccountID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewAccountSet(ids...)
	return nil
}
