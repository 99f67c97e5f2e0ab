// package view derives filtered, paginated, and selected views over a
// session's result set.
//
// Everything here is a pure function of its inputs: the view layer never
// mutates session state, it only reads item copies handed to it.
package view

import (
	"fmt"

	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
)

// MembershipBucket selects items by join state. JoinedBucket covers Joined
// and Monitoring; NotJoinedBucket covers everything else.
type MembershipBucket int

const (
	AnyMembership MembershipBucket = iota
	JoinedBucket
	NotJoinedBucket
)

// Filters compose by logical AND. Zero values mean "ignore this predicate".
type Filters struct {
	Kind          *models.ItemKind
	MinMembers    int
	MaxMembers    int
	Source        string
	Membership    MembershipBucket
	HasExternalID bool
}

// Matches reports whether one item passes every active predicate.
func (f Filters) Matches(item models.DiscoveredItem) bool {
	if f.Kind != nil && item.Kind != *f.Kind {
		return false
	}
	if f.MinMembers > 0 && item.MemberCount < f.MinMembers {
		return false
	}
	if f.MaxMembers > 0 && item.MemberCount > f.MaxMembers {
		return false
	}
	if f.Source != "" && item.Source != f.Source {
		return false
	}
	switch f.Membership {
	case JoinedBucket:
		if !item.Membership.IsMember() {
			return false
		}
	case NotJoinedBucket:
		if item.Membership.IsMember() {
			return false
		}
	}
	if f.HasExternalID && item.ExternalID == "" {
		return false
	}
	return true
}

// Apply returns the items passing the filter set, preserving arrival order.
func Apply(items []models.DiscoveredItem, f Filters) []models.DiscoveredItem {
	filtered := make([]models.DiscoveredItem, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Pager tracks 1-indexed pagination over a filtered view. Page sizes come
// from a fixed allowed set; changing the size resets to page 1.
type Pager struct {
	page    int
	size    int
	allowed []int
}

// NewPager creates a pager on page 1 with the given allowed sizes. The
// default size must be a member of the allowed set.
func NewPager(allowed []int, defaultSize int) (Pager, error) {
	p := Pager{page: 1, allowed: append([]int(nil), allowed...)}
	if err := p.SetPageSize(defaultSize); err != nil {
		return Pager{}, err
	}
	return p, nil
}

// Page returns the current 1-indexed page.
func (p Pager) Page() int { return p.page }

// PageSize returns the current page size.
func (p Pager) PageSize() int { return p.size }

// Sizes returns a copy of the allowed page sizes.
func (p Pager) Sizes() []int { return append([]int(nil), p.allowed...) }

// TotalPages computes the page count for the given filtered item count.
// Never less than 1, so an empty view still has a valid current page.
func (p Pager) TotalPages(filteredCount int) int {
	pages := (filteredCount + p.size - 1) / p.size
	if pages < 1 {
		return 1
	}
	return pages
}

// SetPage moves to the requested page. Out-of-range requests are rejected
// and the current page is unchanged.
func (p *Pager) SetPage(page, filteredCount int) error {
	if page < 1 || page > p.TotalPages(filteredCount) {
		return fmt.Errorf("%w: page %d of %d", shared.ErrInvalidPage, page, p.TotalPages(filteredCount))
	}
	p.page = page
	return nil
}

// SetPageSize switches to a new size from the allowed set and resets to
// page 1.
func (p *Pager) SetPageSize(size int) error {
	for _, allowed := range p.allowed {
		if size == allowed {
			p.size = size
			p.page = 1
			return nil
		}
	}
	return fmt.Errorf("%w: %d", shared.ErrInvalidPageSize, size)
}

// Clamp pulls the current page back into range after the filtered count
// shrinks (e.g. a stricter filter). The page is preserved when still valid.
func (p *Pager) Clamp(filteredCount int) {
	if total := p.TotalPages(filteredCount); p.page > total {
		p.page = total
	}
}

// Reset returns to page 1.
func (p *Pager) Reset() { p.page = 1 }

// Slice returns the current page of the filtered view.
func (p Pager) Slice(filtered []models.DiscoveredItem) []models.DiscoveredItem {
	start := (p.page - 1) * p.size
	if start >= len(filtered) {
		return nil
	}
	end := start + p.size
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// Selection is a set of item track keys. Keys are identity-based, so a
// selection survives filter changes: hiding an item does not unselect it.
type Selection map[string]struct{}

// NewSelection returns an empty selection.
func NewSelection() Selection { return make(Selection) }

// Has reports whether the item is selected.
func (s Selection) Has(item models.DiscoveredItem) bool {
	_, ok := s[item.TrackKey()]
	return ok
}

// Toggle flips the item's membership in the selection.
func (s Selection) Toggle(item models.DiscoveredItem) {
	key := item.TrackKey()
	if _, ok := s[key]; ok {
		delete(s, key)
	} else {
		s[key] = struct{}{}
	}
}

// SelectAll adds every item of the filtered view.
func (s Selection) SelectAll(filtered []models.DiscoveredItem) {
	for _, item := range filtered {
		s[item.TrackKey()] = struct{}{}
	}
}

// Clear empties the selection.
func (s Selection) Clear() {
	for key := range s {
		delete(s, key)
	}
}

// Invert replaces the selection within the filtered view: visible selected
// items become unselected and vice versa. Selected items outside the view
// are untouched.
func (s Selection) Invert(filtered []models.DiscoveredItem) {
	for _, item := range filtered {
		s.Toggle(item)
	}
}

// Count returns the number of selected keys.
func (s Selection) Count() int { return len(s) }

// Pick returns the items of the filtered view that are selected, in view
// order. With an empty selection it returns the whole view, so bulk
// operations with nothing selected act on everything visible.
func Pick(filtered []models.DiscoveredItem, s Selection) []models.DiscoveredItem {
	if len(s) == 0 {
		return filtered
	}
	picked := make([]models.DiscoveredItem, 0, len(s))
	for _, item := range filtered {
		if s.Has(item) {
			picked = append(picked, item)
		}
	}
	return picked
}
