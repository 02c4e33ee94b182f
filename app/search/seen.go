package search

import "github.com/Semior001/newsharvest/app/store"

// Seen keeps titles and links already accepted within one query.
type Seen map[string]struct{}

// Accept reports whether the item is new. An item is rejected when either
// its link or its title was seen before, accepted items are remembered
// by both.
func (s Seen) Accept(item store.SearchResultItem) bool {
	_, linkSeen := s[item.Link]
	_, titleSeen := s[item.Title]
	if linkSeen || titleSeen {
		return false
	}

	s[item.Link] = struct{}{}
	s[item.Title] = struct{}{}
	return true
}
