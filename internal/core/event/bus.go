package event

import (
	"reflect"
	"slices"
	"sync"
)

// Bus is a double-buffered event bus. Events queue until EventDispatchSystem
// calls SwapBuffers then DispatchAll; anything emitted after the swap waits
// for the next tick.
// Emit may be called from any goroutine; dispatch runs on the game loop.
type Bus struct {
	mu       sync.Mutex
	order    []reflect.Type
	known    map[reflect.Type]struct{}
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{
		known:    make(map[reflect.Type]struct{}),
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]func(any)),
	}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Emit queues an event into the back buffer.
func Emit[T any](b *Bus, ev T) {
	t := typeOf[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remember(t)
	b.back[t] = append(b.back[t], ev)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := typeOf[T]()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remember(t)
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// remember keeps first-seen type order so dispatch is deterministic.
func (b *Bus) remember(t reflect.Type) {
	if _, ok := b.known[t]; ok {
		return
	}
	b.known[t] = struct{}{}
	b.order = append(b.order, t)
}

// SwapBuffers rotates back into front and clears the new back buffer.
func (b *Bus) SwapBuffers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers front-buffer events to their handlers, type by type in
// registration order, events in emission order.
func (b *Bus) DispatchAll() {
	b.mu.Lock()
	order := slices.Clone(b.order)
	b.mu.Unlock()

	for _, t := range order {
		b.mu.Lock()
		events := slices.Clone(b.front[t])
		handlers := slices.Clone(b.handlers[t])
		b.mu.Unlock()
		for _, ev := range events {
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}

// Pending returns how many events sit in the back buffer.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, evs := range b.back {
		n += len(evs)
	}
	return n
}
