package selection

import "github.com/GTDGit/drapery_api/internal/models"

// Listener receives selection changes for the surrounding quote editor.
type Listener interface {
	OnItemSelect(category models.SelectionCategory, item models.CatalogItem)
	OnItemDeselect(category models.SelectionCategory)
}

// NopListener ignores all changes.
type NopListener struct{}

func (NopListener) OnItemSelect(models.SelectionCategory, models.CatalogItem) {}
func (NopListener) OnItemDeselect(models.SelectionCategory)                   {}

// Change describes one transition of a slot.
type Change struct {
	Category models.SelectionCategory `json:"category"`
	Item     models.CatalogItem       `json:"item"`
	Selected bool                     `json:"selected"`
}

// SelectionState holds at most one item per slot. Slots are independent.
type SelectionState struct {
	slots models.SelectionResult
}

// NewSelectionState returns a state with every slot unselected.
func NewSelectionState() *SelectionState {
	return &SelectionState{slots: make(models.SelectionResult)}
}

// Get returns the item in slot, if any.
func (s *SelectionState) Get(slot models.SelectionCategory) (models.CatalogItem, bool) {
	it, ok := s.slots[slot]
	return it, ok
}

// Click applies click-to-toggle on tab: clicking the selected item clears its
// slot, clicking any other item replaces the slot's content.
func (s *SelectionState) Click(tab models.SelectionCategory, item models.CatalogItem) Change {
	slot := SlotFor(tab, item)
	if cur, ok := s.slots[slot]; ok && cur.ID == item.ID {
		delete(s.slots, slot)
		return Change{Category: slot, Item: cur, Selected: false}
	}
	return s.Select(slot, item)
}

// Select puts item in slot unconditionally, replacing any previous item.
func (s *SelectionState) Select(slot models.SelectionCategory, item models.CatalogItem) Change {
	s.slots[slot] = item
	return Change{Category: slot, Item: item, Selected: true}
}

// Deselect clears slot. ok is false when the slot was already empty.
func (s *SelectionState) Deselect(slot models.SelectionCategory) (Change, bool) {
	cur, ok := s.slots[slot]
	if !ok {
		return Change{}, false
	}
	delete(s.slots, slot)
	return Change{Category: slot, Item: cur, Selected: false}, true
}

// Result returns a copy of all filled slots.
func (s *SelectionState) Result() models.SelectionResult {
	out := make(models.SelectionResult, len(s.slots))
	for k, v := range s.slots {
		out[k] = v
	}
	return out
}

// Notify forwards c to l.
func (c Change) Notify(l Listener) {
	if c.Selected {
		l.OnItemSelect(c.Category, c.Item)
		return
	}
	l.OnItemDeselect(c.Category)
}
