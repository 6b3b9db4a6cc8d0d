package navigation

import (
	"sync"

	"github.com/google/uuid"

	"github.com/go-drift/navstack/pkg/errors"
)

// Binder prepares screens before they are attached. It hands out tags and
// remembers every tag it has issued so that no two screens of one
// navigation root ever share one.
//
// A Binder is shared by a root Navigator and all of its children.
type Binder struct {
	mu     sync.Mutex
	issued map[string]struct{}
	newTag func() string
}

// NewBinder creates a Binder that generates random UUID tags.
func NewBinder() *Binder {
	return &Binder{
		issued: make(map[string]struct{}),
		newTag: uuid.NewString,
	}
}

// CanBind returns an error if s may not be bound.
func (b *Binder) CanBind(s *Screen) error {
	if s == nil {
		return errors.Precondition("nil screen")
	}
	switch s.attachState() {
	case stateAttached:
		return errors.Precondition("screen %s is already attached", s)
	case stateDetached:
		return errors.Precondition("screen %s was detached and cannot be reused", s)
	}
	return nil
}

// Bind assigns s its tag, container, origin names and initial flags.
//
// The tag is write-once: a screen that was bound before but never attached
// keeps its tag and only has the other fields refreshed.
func (b *Binder) Bind(s *Screen, containerID string, playEnterAnim bool) error {
	if err := b.CanBind(s); err != nil {
		return err
	}
	if containerID == "" {
		return errors.Precondition("screen %s bound without a container id", s)
	}

	tag := s.Tag()
	if tag == "" {
		tag = b.issue()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = Metadata{
		Tag:            tag,
		ContainerID:    containerID,
		OriginTypeName: s.typ.Name,
		OriginFullName: s.typ.FullName,
		PlayEnterAnim:  playEnterAnim,
	}
	return nil
}

// Adopt registers the tag of a restored screen without regenerating it.
func (b *Binder) Adopt(s *Screen) error {
	tag := s.Tag()
	if tag == "" {
		return errors.Precondition("restored screen %s has no tag", s)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.issued[tag]; dup {
		return errors.Precondition("tag %s is already in use", tag)
	}
	b.issued[tag] = struct{}{}
	return nil
}

// Issued returns how many tags the binder has handed out or adopted.
func (b *Binder) Issued() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.issued)
}

func (b *Binder) issue() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		tag := b.newTag()
		if _, dup := b.issued[tag]; dup || tag == "" {
			continue
		}
		b.issued[tag] = struct{}{}
		return tag
	}
}
