package wm

import (
	"fmt"
	"slices"
	"sync"
)

type EventType int

const (
	WindowAdded EventType = iota
	WindowRemoved
	AppChanged // window now reports a different application identity
	TitleChanged
	FocusChanged
	ProgressChanged
	AttentionRequested
)

var eventNames = map[EventType]string{
	WindowAdded:        "window-added",
	WindowRemoved:      "window-removed",
	AppChanged:         "app-changed",
	TitleChanged:       "title-changed",
	FocusChanged:       "focus-changed",
	ProgressChanged:    "progress-changed",
	AttentionRequested: "attention-requested",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event carries the window snapshot as of the event. OldApp is set for
// AppChanged.
type Event struct {
	Type   EventType
	Window Window
	OldApp AppID
}

type Handler func(Event)

// Bus fans window events out to per-window subscribers and to global
// subscribers. Handlers may subscribe or cancel while an event is being
// delivered; the change applies from the next Publish.
type Bus struct {
	mu     sync.Mutex
	next   int
	byWin  map[WindowID]map[int]Handler
	global map[int]Handler
	order  []int
}

func NewBus() *Bus {
	return &Bus{
		byWin:  make(map[WindowID]map[int]Handler),
		global: make(map[int]Handler),
	}
}

// Subscribe registers h for events about one window.
func (b *Bus) Subscribe(id WindowID, h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	key := b.next
	subs, ok := b.byWin[id]
	if !ok {
		subs = make(map[int]Handler)
		b.byWin[id] = subs
	}
	subs[key] = h
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.byWin[id]; ok {
				delete(subs, key)
				if len(subs) == 0 {
					delete(b.byWin, id)
				}
			}
		})
	}
}

// SubscribeAll registers h for every event. Global handlers run in
// registration order, after the per-window handlers.
func (b *Bus) SubscribeAll(h Handler) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	key := b.next
	b.global[key] = h
	b.order = append(b.order, key)
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.global, key)
		})
	}
}

// Subscribers returns how many handlers watch a window.
func (b *Bus) Subscribers(id WindowID) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byWin[id])
}

func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	var handlers []Handler
	if subs, ok := b.byWin[ev.Window.ID]; ok {
		keys := make([]int, 0, len(subs))
		for k := range subs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			handlers = append(handlers, subs[k])
		}
	}
	live := b.order[:0]
	for _, k := range b.order {
		if h, ok := b.global[k]; ok {
			handlers = append(handlers, h)
			live = append(live, k)
		}
	}
	b.order = live
	b.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}
