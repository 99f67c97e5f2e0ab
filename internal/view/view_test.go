package view

import (
	"errors"
	"fmt"
	"testing"

	"github.com/groupscout/groupscout/internal/models"
	"github.com/groupscout/groupscout/internal/shared"
	"pgregory.net/rapid"
)

func makeItems(n int) []models.DiscoveredItem {
	items := make([]models.DiscoveredItem, n)
	for i := range items {
		kind := models.KindGroup
		if i%3 == 0 {
			kind = models.KindChannel
		}
		items[i] = models.DiscoveredItem{
			InternalID:  i + 1,
			ExternalID:  fmt.Sprintf("ext-%d", i+1),
			Handle:      fmt.Sprintf("h%d", i+1),
			Kind:        kind,
			MemberCount: (i + 1) * 10,
			Source:      "global",
		}
	}
	return items
}

func TestFilters(t *testing.T) {
	items := makeItems(30)

	t.Run("zero filters match everything", func(t *testing.T) {
		if got := len(Apply(items, Filters{})); got != 30 {
			t.Errorf("expected all 30 items, got %d", got)
		}
	})

	t.Run("kind filter", func(t *testing.T) {
		kind := models.KindChannel
		for _, item := range Apply(items, Filters{Kind: &kind}) {
			if item.Kind != models.KindChannel {
				t.Errorf("expected channels only, got %v", item.Kind)
			}
		}
	})

	t.Run("member range", func(t *testing.T) {
		filtered := Apply(items, Filters{MinMembers: 100, MaxMembers: 200})
		for _, item := range filtered {
			if item.MemberCount < 100 || item.MemberCount > 200 {
				t.Errorf("member count %d outside range", item.MemberCount)
			}
		}
		if len(filtered) != 11 {
			t.Errorf("expected 11 items in [100,200], got %d", len(filtered))
		}
	})

	t.Run("membership bucket", func(t *testing.T) {
		joined := items
		joined[4].Membership = models.Joined
		joined[7].Membership = models.Monitoring

		if got := len(Apply(joined, Filters{Membership: JoinedBucket})); got != 2 {
			t.Errorf("expected 2 members, got %d", got)
		}
		if got := len(Apply(joined, Filters{Membership: NotJoinedBucket})); got != 28 {
			t.Errorf("expected 28 non-members, got %d", got)
		}
	})

	t.Run("identity filter", func(t *testing.T) {
		mixed := makeItems(5)
		mixed[2].ExternalID = ""
		if got := len(Apply(mixed, Filters{HasExternalID: true})); got != 4 {
			t.Errorf("expected 4 items with external ids, got %d", got)
		}
	})
}

func TestPager(t *testing.T) {
	newPager := func(t *testing.T) Pager {
		t.Helper()
		p, err := NewPager([]int{10, 25, 50, 100}, 50)
		if err != nil {
			t.Fatalf("pager: %v", err)
		}
		return p
	}

	t.Run("137 items at size 50 is 3 pages", func(t *testing.T) {
		p := newPager(t)
		if got := p.TotalPages(137); got != 3 {
			t.Errorf("expected 3 pages, got %d", got)
		}

		items := makeItems(137)
		if got := len(p.Slice(items)); got != 50 {
			t.Errorf("page 1 should hold 50, got %d", got)
		}
		if err := p.SetPage(3, 137); err != nil {
			t.Fatalf("page 3 must be valid: %v", err)
		}
		if got := len(p.Slice(items)); got != 37 {
			t.Errorf("page 3 should hold 37, got %d", got)
		}
	})

	t.Run("out of range pages are rejected without moving", func(t *testing.T) {
		p := newPager(t)
		if err := p.SetPage(2, 137); err != nil {
			t.Fatalf("page 2 must be valid: %v", err)
		}
		if err := p.SetPage(0, 137); !errors.Is(err, shared.ErrInvalidPage) {
			t.Errorf("expected ErrInvalidPage for page 0, got %v", err)
		}
		if err := p.SetPage(4, 137); !errors.Is(err, shared.ErrInvalidPage) {
			t.Errorf("expected ErrInvalidPage for page 4, got %v", err)
		}
		if p.Page() != 2 {
			t.Errorf("rejected moves must not change the page, got %d", p.Page())
		}
	})

	t.Run("size change resets to page 1", func(t *testing.T) {
		p := newPager(t)
		p.SetPage(3, 137)
		if err := p.SetPageSize(10); err != nil {
			t.Fatalf("size 10 is allowed: %v", err)
		}
		if p.Page() != 1 || p.PageSize() != 10 {
			t.Errorf("expected page 1 size 10, got page %d size %d", p.Page(), p.PageSize())
		}
	})

	t.Run("sizes outside the allowed set are rejected", func(t *testing.T) {
		p := newPager(t)
		if err := p.SetPageSize(33); !errors.Is(err, shared.ErrInvalidPageSize) {
			t.Errorf("expected ErrInvalidPageSize, got %v", err)
		}
	})

	t.Run("clamp pulls the page back after shrinking", func(t *testing.T) {
		p := newPager(t)
		p.SetPage(3, 137)
		p.Clamp(60)
		if p.Page() != 2 {
			t.Errorf("expected clamp to page 2, got %d", p.Page())
		}
		p.Clamp(0)
		if p.Page() != 1 {
			t.Errorf("empty views clamp to page 1, got %d", p.Page())
		}
	})

	t.Run("default size must be allowed", func(t *testing.T) {
		if _, err := NewPager([]int{10, 25}, 50); err == nil {
			t.Error("expected error for default outside the allowed set")
		}
	})
}

func TestSelection(t *testing.T) {
	t.Run("survives filter changes", func(t *testing.T) {
		items := makeItems(10)
		sel := NewSelection()
		sel.Toggle(items[0]) // a channel (index 0)

		kind := models.KindGroup
		groupsOnly := Apply(items, Filters{Kind: &kind})
		for _, item := range groupsOnly {
			if sel.Has(item) {
				t.Errorf("hidden selection must not leak into the view: %+v", item)
			}
		}

		// Filter removed: the selection is intact.
		if !sel.Has(items[0]) {
			t.Error("expected selection preserved across filter change")
		}
	})

	t.Run("invert operates on the current view only", func(t *testing.T) {
		items := makeItems(4)
		sel := NewSelection()
		sel.Toggle(items[0])
		sel.Invert(items[:2])

		if sel.Has(items[0]) || !sel.Has(items[1]) {
			t.Error("expected invert to flip within the view")
		}
		if sel.Has(items[2]) || sel.Has(items[3]) {
			t.Error("invert must not touch items outside the view")
		}
	})

	t.Run("pick falls back to the whole view", func(t *testing.T) {
		items := makeItems(3)
		sel := NewSelection()

		if got := len(Pick(items, sel)); got != 3 {
			t.Errorf("empty selection exports the whole view, got %d", got)
		}

		sel.Toggle(items[1])
		picked := Pick(items, sel)
		if len(picked) != 1 || picked[0].InternalID != items[1].InternalID {
			t.Errorf("expected only the selected item, got %+v", picked)
		}
	})
}

// TestPagerProperty checks pagination invariants over random sizes and counts:
// pages tile the filtered view exactly, and the current page always exists.
func TestPagerProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		allowed := []int{10, 25, 50, 100}
		size := rapid.SampledFrom(allowed).Draw(rt, "size")
		count := rapid.IntRange(0, 500).Draw(rt, "count")

		p, err := NewPager(allowed, size)
		if err != nil {
			rt.Fatalf("pager: %v", err)
		}
		items := makeItems(count)

		total := p.TotalPages(count)
		if total < 1 {
			rt.Fatalf("total pages must be at least 1, got %d", total)
		}

		seen := 0
		for page := 1; page <= total; page++ {
			if err := p.SetPage(page, count); err != nil {
				rt.Fatalf("page %d of %d must be valid: %v", page, total, err)
			}
			chunk := p.Slice(items)
			if page < total && len(chunk) != size {
				rt.Fatalf("interior page %d has %d items, want %d", page, len(chunk), size)
			}
			seen += len(chunk)
		}
		if seen != count {
			rt.Fatalf("pages covered %d items, want %d", seen, count)
		}

		if err := p.SetPage(total+1, count); err == nil {
			rt.Fatal("page past the end must be rejected")
		}
	})
}
