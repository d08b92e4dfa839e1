package tooltip

// EventKind identifies a pointer event type.
type EventKind uint8

const (
	PointerEnter EventKind = iota + 1
	PointerLeave
	PointerMove
)

func (k EventKind) String() string {
	switch k {
	case PointerEnter:
		return "pointerenter"
	case PointerLeave:
		return "pointerleave"
	case PointerMove:
		return "pointermove"
	default:
		return "unknown"
	}
}

// PointerEvent is delivered to listeners by an EventTarget. Position is the
// pointer location in absolute (window) coordinates.
type PointerEvent struct {
	Kind     EventKind
	Position Point
}

type Listener interface {
	HandlePointerEvent(ev PointerEvent)
}

// EventTarget is an element that supports pointer event subscription.
type EventTarget interface {
	AddListener(kind EventKind, l Listener)
	RemoveListener(kind EventKind, l Listener)
}

// IconHolder is implemented by marker-like objects that expose their
// underlying visual element.
type IconHolder interface {
	Icon() EventTarget
}

// Listeners is a registration table EventTarget implementations can embed.
// It is not safe for concurrent use; all calls happen on the UI goroutine.
type Listeners struct {
	byKind map[EventKind][]Listener
}

// AddListener registers l for kind. Registering the same listener twice for
// one kind is a no-op.
func (s *Listeners) AddListener(kind EventKind, l Listener) {
	if l == nil {
		return
	}
	if s.byKind == nil {
		s.byKind = make(map[EventKind][]Listener)
	}
	for _, existing := range s.byKind[kind] {
		if existing == l {
			return
		}
	}
	s.byKind[kind] = append(s.byKind[kind], l)
}

func (s *Listeners) RemoveListener(kind EventKind, l Listener) {
	list := s.byKind[kind]
	for i, existing := range list {
		if existing != l {
			continue
		}
		s.byKind[kind] = append(list[:i:i], list[i+1:]...)
		if len(s.byKind[kind]) == 0 {
			delete(s.byKind, kind)
		}

		return
	}
}

// Dispatch delivers ev to every listener registered for ev.Kind.
func (s *Listeners) Dispatch(ev PointerEvent) {
	list := append([]Listener(nil), s.byKind[ev.Kind]...)
	for _, l := range list {
		l.HandlePointerEvent(ev)
	}
}

// Count returns the number of listeners registered for kind.
func (s *Listeners) Count(kind EventKind) int {
	return len(s.byKind[kind])
}

// Total returns the number of registrations across all kinds.
func (s *Listeners) Total() int {
	n := 0
	for _, list := range s.byKind {
		n += len(list)
	}

	return n
}
