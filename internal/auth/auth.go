package auth

import "sort"

// Service classifies actors as administrators or employees. The admin set is
// fixed at construction and read-only afterwards, so it is safe for
// concurrent use without locking.
type Service struct {
	admins map[int64]struct{}
}

func New(adminIDs []int64) *Service {
	s := &Service{admins: make(map[int64]struct{}, len(adminIDs))}
	for _, id := range adminIDs {
		s.admins[id] = struct{}{}
	}
	return s
}

func (s *Service) IsAdmin(userID int64) bool {
	if s == nil {
		return false
	}
	_, ok := s.admins[userID]
	return ok
}

// Admins returns the admin identities in ascending order.
func (s *Service) Admins() []int64 {
	if s == nil {
		return nil
	}
	out := make([]int64, 0, len(s.admins))
	for id := range s.admins {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
