package navigation

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/go-drift/navstack/pkg/animation"
	"github.com/go-drift/navstack/pkg/errors"
	navtest "github.com/go-drift/navstack/pkg/testing"
)

func boundScreen(t *testing.T, b *Binder, name, containerID string) *Screen {
	t.Helper()
	s := newTestScreen(name)
	if err := b.Bind(s, containerID, false); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMemoryContainerRejectsWholeBatch(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	a := boundScreen(t, b, "A", "content")
	if err := Begin(c).Add(a).Commit(); err != nil {
		t.Fatal(err)
	}

	x := boundScreen(t, b, "X", "content")
	err := Begin(c).Add(x).Hide(a).Add(a).Commit()
	if err == nil {
		t.Fatal("expected duplicate add to reject the batch")
	}
	var commitErr *errors.CommitError
	if !stderrors.As(err, &commitErr) || commitErr.Container != "content" {
		t.Errorf("err = %v, want CommitError for content", err)
	}
	assertStack(t, c, "A")
	if !c.IsVisible(a) {
		t.Error("rejected batch must not hide A")
	}
	if x.Attached() {
		t.Error("X must not be attached after a rejected batch")
	}
}

func TestMemoryContainerRejectsForeignAdd(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	s := boundScreen(t, b, "A", "other")
	if err := Begin(c).Add(s).Commit(); err == nil {
		t.Fatal("expected add into a different container id to fail")
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestMemoryContainerShowHideAbsent(t *testing.T) {
	c := NewMemoryContainer("content")
	if err := Begin(c).Show(newTestScreen("Ghost")).Commit(); err == nil {
		t.Error("showing an absent screen should fail")
	}
	if err := Begin(c).Remove(newTestScreen("Ghost")).Commit(); err != nil {
		t.Errorf("removing an absent screen should be ignored, got %v", err)
	}
}

func TestMemoryContainerListenersAndHook(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	var order []string
	unsubscribe := c.AddCommitListener(func(Batch) { order = append(order, "listener") })

	a := boundScreen(t, b, "A", "content")
	err := Begin(c).Add(a).RunOnCommit(func() {
		if c.Len() != 1 {
			t.Error("hook ran before the batch was applied")
		}
		order = append(order, "hook")
	}).Commit()
	if err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "listener" || order[1] != "hook" {
		t.Errorf("order = %v", order)
	}

	unsubscribe()
	if err := Begin(c).Hide(a).Commit(); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 {
		t.Errorf("listener called after unsubscribe: %v", order)
	}
}

func TestMemoryContainerEnterAnimations(t *testing.T) {
	l := navtest.NewFakeLooper()
	catalog := animation.NewCatalog()
	catalog.Set("grow", 120*time.Millisecond)
	c := NewMemoryContainer("content", WithEnterAnimations(l, catalog))
	b := NewBinder()

	quiet := boundScreen(t, b, "Quiet", "content")
	loud := newTestScreen("Loud")
	if err := b.Bind(loud, "content", true); err != nil {
		t.Fatal(err)
	}
	loud.SetAnimation(&animation.Spec{Enter: "grow"})

	var ended []string
	quiet.OnEnterAnimEnd(func() { ended = append(ended, "quiet") })
	loud.OnEnterAnimEnd(func() { ended = append(ended, "loud") })

	if err := Begin(c).Add(quiet).Add(loud).Commit(); err != nil {
		t.Fatal(err)
	}
	l.Advance(119 * time.Millisecond)
	if len(ended) != 0 {
		t.Fatalf("ended early: %v", ended)
	}
	l.Advance(time.Millisecond)
	if len(ended) != 1 || ended[0] != "loud" {
		t.Errorf("ended = %v, want [loud]", ended)
	}
}

func TestMemoryContainerRestore(t *testing.T) {
	b := NewBinder()
	original := NewMemoryContainer("content")
	a, bb := boundScreen(t, b, "A", "content"), boundScreen(t, b, "B", "content")
	if err := Begin(original).Add(a).Add(bb).Hide(a).Commit(); err != nil {
		t.Fatal(err)
	}

	var restored []*Screen
	for _, s := range original.Screens() {
		data, err := s.SaveState()
		if err != nil {
			t.Fatal(err)
		}
		r, err := RestoreScreen(data, s.Type(), s.Handle)
		if err != nil {
			t.Fatal(err)
		}
		restored = append(restored, r)
	}

	c := NewMemoryContainer("content")
	if err := c.Restore(restored, []bool{true, false}); err != nil {
		t.Fatal(err)
	}
	assertStack(t, c, "A", "B")
	if c.IsVisible(restored[0]) || !c.IsVisible(restored[1]) {
		t.Error("visibility not restored")
	}
	if err := c.Restore(restored, nil); err == nil {
		t.Error("restoring into a non-empty container should fail")
	}
	if err := NewMemoryContainer("other").Restore(restored, nil); err == nil {
		t.Error("restoring into a different container id should fail")
	}
	if err := NewMemoryContainer("content").Restore([]*Screen{a}, nil); err == nil {
		t.Error("restoring a live screen should fail")
	}
}

func TestTransactionCommitsOnce(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	s := boundScreen(t, b, "A", "content")

	tx := Begin(c).Add(s)
	if !tx.batch.AllowStateLoss {
		t.Error("transactions must allow state loss")
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); !stderrors.Is(err, errors.ErrCommitted) {
		t.Errorf("second Commit = %v, want ErrCommitted", err)
	}
	assertStack(t, c, "A")
}

func TestTransactionMarksAttachment(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	s := boundScreen(t, b, "A", "content")

	if err := Begin(c).Add(s).Commit(); err != nil {
		t.Fatal(err)
	}
	if s.attachState() != stateAttached {
		t.Errorf("state after add = %v", s.attachState())
	}
	if err := Begin(c).Remove(s).Commit(); err != nil {
		t.Fatal(err)
	}
	if s.attachState() != stateDetached {
		t.Errorf("state after remove = %v", s.attachState())
	}
}

func TestStateOf(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	if StateOf(c) != StateEmpty {
		t.Errorf("state = %v, want empty", StateOf(c))
	}

	a, bb := boundScreen(t, b, "A", "content"), boundScreen(t, b, "B", "content")
	if err := Begin(c).Add(a).Commit(); err != nil {
		t.Fatal(err)
	}
	if StateOf(c) != StateSingleRoot {
		t.Errorf("state = %v, want single-root", StateOf(c))
	}
	if err := Begin(c).Add(bb).Commit(); err != nil {
		t.Fatal(err)
	}
	if StateOf(c) != StateStacked {
		t.Errorf("state = %v, want stacked", StateOf(c))
	}
	if err := Begin(c).Hide(a).Commit(); err != nil {
		t.Fatal(err)
	}
	if StateOf(c) != StateMultiRootHidden {
		t.Errorf("state = %v, want multi-root-hidden", StateOf(c))
	}
}

func TestQueries(t *testing.T) {
	b := NewBinder()
	c := NewMemoryContainer("content")
	if LastScreen(c) != nil || FindByType(c, "A") != nil {
		t.Error("queries on an empty container should return nil")
	}

	a, bb := boundScreen(t, b, "A", "content"), boundScreen(t, b, "B", "content")
	if err := Begin(c).Add(a).Add(bb).Commit(); err != nil {
		t.Fatal(err)
	}
	if LastScreen(c) != bb {
		t.Error("LastScreen should be B")
	}
	if FindByType(c, "A") != a || FindByType(c, "example.com/app/screens.B") != bb {
		t.Error("FindByType mismatch")
	}
	if IndexOf(c, a) != 0 || IndexOf(c, bb) != 1 || IndexOf(c, newTestScreen("C")) != -1 {
		t.Error("IndexOf mismatch")
	}
}
