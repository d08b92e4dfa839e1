package domain

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/skobkin/maptip/internal/bus"
)

var storeLogger = slog.With("component", "domain.marker_store")

// MarkerStore keeps the current markers in memory for the UI.
type MarkerStore struct {
	mu      sync.RWMutex
	markers map[string]Marker
	changes chan struct{}
}

func NewMarkerStore() *MarkerStore {
	return &MarkerStore{
		markers: make(map[string]Marker),
		changes: make(chan struct{}, 1),
	}
}

// Load replaces the store contents with markers.
func (s *MarkerStore) Load(markers []Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = make(map[string]Marker, len(markers))
	for _, marker := range markers {
		s.markers[marker.ID] = marker
	}
	s.notify()
}

// Start applies marker messages from the bus until ctx is done.
func (s *MarkerStore) Start(ctx context.Context, b bus.MessageBus) {
	topics := []string{bus.TopicMarkerUpsert, bus.TopicMarkerRemove, bus.TopicMarkerReset}
	sub := b.Subscribe(topics...)
	go func() {
		defer b.Unsubscribe(sub, topics...)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub:
				if !ok {
					return
				}
				s.apply(msg)
			}
		}
	}()
}

func (s *MarkerStore) apply(msg any) {
	switch m := msg.(type) {
	case MarkerUpsert:
		s.Upsert(m.Marker)
	case MarkerRemoval:
		s.Remove(m.ID)
	case []Marker:
		s.Load(m)
	default:
		storeLogger.Debug("ignoring unexpected bus payload", "payload", msg)
	}
}

func (s *MarkerStore) Upsert(marker Marker) {
	marker.ID = strings.TrimSpace(marker.ID)
	if marker.ID == "" {
		storeLogger.Warn("ignoring marker without id", "title", marker.Title)

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[marker.ID] = marker
	s.notify()
}

func (s *MarkerStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return false
	}
	delete(s.markers, id)
	s.notify()

	return true
}

// SnapshotSorted returns markers ordered by title, then ID.
func (s *MarkerStore) SnapshotSorted() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Marker, 0, len(s.markers))
	for _, marker := range s.markers {
		out = append(out, marker)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := strings.ToLower(out[i].DisplayTitle()), strings.ToLower(out[j].DisplayTitle())
		if ti != tj {
			return ti < tj
		}

		return out[i].ID < out[j].ID
	})

	return out
}

func (s *MarkerStore) Get(id string) (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	marker, ok := s.markers[id]

	return marker, ok
}

func (s *MarkerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.markers)
}

// Changes is signalled after every mutation. Bursts coalesce into one signal.
func (s *MarkerStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *MarkerStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
