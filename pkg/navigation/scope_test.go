package navigation

import "testing"

func TestScopeRoutesToActive(t *testing.T) {
	h := newHarness(t)
	scope := NewScope()
	home, tab := newTestScreen("Home"), newTestScreen("Tab")
	h.nav.LoadRoot(h.content, home, nil, false)
	h.nav.Push(home, tab)

	tabOwner := &fakeOwner{}
	child := h.nav.NewChild(tabOwner, h.looper)
	inner := NewMemoryContainer("tab-inner")
	list, item := newTestScreen("List"), newTestScreen("Item")
	child.LoadRoot(inner, list, nil, false)
	child.Push(list, item)
	h.settle(t)

	scope.SetRoot(h.nav, h.content)
	scope.SetActive(child, inner)

	if !scope.HandleBackButton() {
		t.Fatal("active container can pop, expected true")
	}
	h.settle(t)
	assertStack(t, inner, "List")
	assertStack(t, h.content, "Home", "Tab")

	// The active container has only its root left; the root pops instead.
	if !scope.HandleBackButton() {
		t.Fatal("root container can pop, expected true")
	}
	h.settle(t)
	assertStack(t, h.content, "Home")
	assertStack(t, inner, "List")

	if scope.HandleBackButton() {
		t.Error("nothing left to pop, expected false")
	}
	h.settle(t)
	if h.owner.finishCount() != 1 || tabOwner.finishCount() != 0 {
		t.Errorf("finish counts root=%d tab=%d, want 1 and 0", h.owner.finishCount(), tabOwner.finishCount())
	}
}

func TestScopeClear(t *testing.T) {
	h := newHarness(t)
	scope := NewScope()
	if nav, _ := scope.Active(); nav != nil {
		t.Error("empty scope should have no active navigator")
	}
	if scope.HandleBackButton() {
		t.Error("empty scope should not handle back")
	}

	child := h.nav.NewChild(&fakeOwner{}, h.looper)
	scope.SetRoot(h.nav, h.content)
	if nav, _ := scope.Active(); nav != h.nav {
		t.Error("root should be active by default")
	}
	scope.SetActive(child, NewMemoryContainer("inner"))
	scope.ClearActiveIf(child)
	if nav, c := scope.Active(); nav != h.nav || c != Container(h.content) {
		t.Error("clearing the active child should fall back to root")
	}
	scope.ClearRootIf(h.nav)
	if nav, _ := scope.Active(); nav != nil {
		t.Error("cleared scope should have no active navigator")
	}
}
