package catalog

import "sort"

// Selection is the multi-select set used for bulk actions.
type Selection struct {
	ids map[string]struct{}
}

// Toggle flips id and reports whether it is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if s.ids == nil {
		s.ids = make(map[string]struct{})
	}
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// ToggleAll is scoped to the current page: when every page id is already
// selected the whole selection is cleared, otherwise the selection becomes
// exactly the page ids.
func (s *Selection) ToggleAll(pageIDs []string) {
	if s.AllSelected(pageIDs) {
		s.Clear()
		return
	}
	s.ids = make(map[string]struct{}, len(pageIDs))
	for _, id := range pageIDs {
		s.ids[id] = struct{}{}
	}
}

// AllSelected reports whether every id in pageIDs is selected.
func (s Selection) AllSelected(pageIDs []string) bool {
	for _, id := range pageIDs {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Retain drops selected ids not present in live.
func (s *Selection) Retain(live []string) {
	if len(s.ids) == 0 {
		return
	}
	keep := make(map[string]struct{}, len(live))
	for _, id := range live {
		keep[id] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := keep[id]; !ok {
			delete(s.ids, id)
		}
	}
}

func (s *Selection) Clear() {
	s.ids = nil
}

func (s Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
