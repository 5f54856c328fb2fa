package event

import "testing"

type ping struct{ n int }
type pong struct{ s string }

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []int
	Subscribe(b, func(p ping) { got = append(got, p.n) })

	Emit(b, ping{1})
	Emit(b, ping{2})
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatalf("delivered before swap: %v", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 2 {
		t.Fatalf("events redelivered: %v", got)
	}
}

func TestBusTypesAreSeparate(t *testing.T) {
	b := NewBus()
	var pings, pongs int
	Subscribe(b, func(ping) { pings++ })
	Subscribe(b, func(pong) { pongs++ })

	Emit(b, pong{"a"})
	Emit(b, ping{1})
	Emit(b, pong{"b"})
	if b.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", b.Pending())
	}
	b.SwapBuffers()
	b.DispatchAll()
	if pings != 1 || pongs != 2 {
		t.Fatalf("pings=%d pongs=%d", pings, pongs)
	}
}

func TestBusEmitDuringDispatchWaitsOneTick(t *testing.T) {
	b := NewBus()
	var seen []int
	Subscribe(b, func(p ping) {
		seen = append(seen, p.n)
		if p.n < 3 {
			Emit(b, ping{p.n + 1})
		}
	})
	Emit(b, ping{1})
	for i := 0; i < 4; i++ {
		b.SwapBuffers()
		b.DispatchAll()
	}
	if len(seen) != 3 {
		t.Fatalf("seen %v, want [1 2 3]", seen)
	}
}
