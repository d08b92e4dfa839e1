package tooltip

import (
	"sort"
	"time"
)

type fakeElement struct {
	classes  []string
	styles   map[string]string
	opacity  float64
	markup   string
	children []any
	size     Size

	measures         int
	removed          bool
	mutationsAfterRm int
}

func newFakeElement(classes ...string) *fakeElement {
	return &fakeElement{
		classes: append([]string(nil), classes...),
		styles:  make(map[string]string),
		opacity: 1,
	}
}

func (e *fakeElement) touch() {
	if e.removed {
		e.mutationsAfterRm++
	}
}

func (e *fakeElement) SetStyle(prop, value string) {
	e.touch()
	e.styles[prop] = value
}

func (e *fakeElement) Style(prop string) string {
	return e.styles[prop]
}

func (e *fakeElement) SetOpacity(opacity float64) {
	e.touch()
	e.opacity = opacity
}

func (e *fakeElement) SetMarkup(markup string) {
	e.touch()
	e.markup = markup
	e.children = nil
}

func (e *fakeElement) ReplaceChildren(node any) {
	e.touch()
	e.markup = ""
	e.children = []any{node}
}

func (e *fakeElement) OffsetSize() Size {
	e.measures++

	return e.size
}

func (e *fakeElement) Remove() {
	e.touch()
	e.removed = true
}

type fakeLayer struct {
	created  []*fakeElement
	children []Element
	size     Size
}

func (l *fakeLayer) CreateElement(classes ...string) Element {
	el := newFakeElement(classes...)
	el.size = l.size
	l.created = append(l.created, el)

	return el
}

func (l *fakeLayer) AppendChild(el Element) {
	l.children = append(l.children, el)
}

type fakeViewport struct {
	size   Size
	origin Point
	layer  *fakeLayer
}

func newFakeViewport(width, height float64, overlay Size) *fakeViewport {
	return &fakeViewport{
		size:  Size{Width: width, Height: height},
		layer: &fakeLayer{size: overlay},
	}
}

func (v *fakeViewport) Size() Size {
	return v.size
}

func (v *fakeViewport) LocalPoint(ev PointerEvent) Point {
	return Point{X: ev.Position.X - v.origin.X, Y: ev.Position.Y - v.origin.Y}
}

func (v *fakeViewport) TooltipLayer() Layer {
	if v.layer == nil {
		return nil
	}

	return v.layer
}

func (v *fakeViewport) element() *fakeElement {
	return v.layer.created[len(v.layer.created)-1]
}

type fakeTarget struct {
	Listeners
}

type fakeMarker struct {
	icon *fakeTarget
}

func (m *fakeMarker) Icon() EventTarget {
	if m.icon == nil {
		return nil
	}

	return m.icon
}

type fakeTask struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true

	return true
}

// manualScheduler runs tasks when the test advances its clock.
type manualScheduler struct {
	now   time.Duration
	seq   int
	tasks []*fakeTask
}

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.seq++
	task := &fakeTask{at: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, task)

	return task
}

func (s *manualScheduler) Advance(d time.Duration) {
	s.now += d
	due := make([]*fakeTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		if !task.stopped && !task.fired && task.at <= s.now {
			due = append(due, task)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].seq < due[j].seq
		}

		return due[i].at < due[j].at
	})
	for _, task := range due {
		if task.stopped {
			continue
		}
		task.fired = true
		task.fn()
	}
}

func (s *manualScheduler) Pending() int {
	n := 0
	for _, task := range s.tasks {
		if !task.stopped && !task.fired {
			n++
		}
	}

	return n
}

// leakyScheduler never honors Stop, as if the callback was already queued on
// the UI loop when the timer was cancelled.
type leakyScheduler struct {
	manualScheduler
}

type leakyTask struct {
	*fakeTask
}

func (t leakyTask) Stop() bool {
	return true
}

func (s *leakyScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	task := s.manualScheduler.AfterFunc(d, fn).(*fakeTask)

	return leakyTask{fakeTask: task}
}
