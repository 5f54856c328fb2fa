package ecs

import "testing"

func TestEntityPoolGenerations(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if a.IsZero() {
		t.Fatal("first ID is zero")
	}
	if !p.Alive(a) {
		t.Fatal("fresh ID not alive")
	}
	if !p.Destroy(a) {
		t.Fatal("Destroy of live ID returned false")
	}
	if p.Alive(a) {
		t.Fatal("destroyed ID still alive")
	}
	if p.Destroy(a) {
		t.Fatal("second Destroy returned true")
	}

	b := p.Create()
	if b.Index() != a.Index() {
		t.Fatalf("index not recycled: got %d want %d", b.Index(), a.Index())
	}
	if b.Generation() == a.Generation() {
		t.Fatal("recycled ID kept old generation")
	}
	if p.Alive(a) {
		t.Fatal("stale ID alive after recycle")
	}
	if p.Live() != 1 {
		t.Fatalf("Live() = %d, want 1", p.Live())
	}
}

func TestEntityPoolZeroNeverAlive(t *testing.T) {
	p := NewEntityPool()
	p.Create()
	if p.Alive(0) {
		t.Fatal("zero ID reported alive")
	}
}

func TestWorldDestroyClearsStores(t *testing.T) {
	w := NewWorld()
	names := NewStore[string]()
	w.Register(names)

	id := w.CreateEntity()
	n := "guest"
	names.Set(id, &n)

	if !w.Destroy(id) {
		t.Fatal("Destroy returned false")
	}
	if names.Has(id) {
		t.Fatal("store still holds destroyed entity")
	}
	if w.Destroy(id) {
		t.Fatal("double Destroy returned true")
	}
}

func TestStoreCollect(t *testing.T) {
	s := NewStore[int]()
	for i := 1; i <= 4; i++ {
		v := i
		s.Set(NewEntityID(uint32(i), 1), &v)
	}
	even := s.Collect(func(v *int) bool { return *v%2 == 0 })
	if len(even) != 2 {
		t.Fatalf("Collect returned %d ids, want 2", len(even))
	}
}
