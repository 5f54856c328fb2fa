package world

import (
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/guestsync/internal/avatar"
	"github.com/l1jgo/guestsync/internal/data"
	"github.com/l1jgo/guestsync/internal/geom"
	"github.com/l1jgo/guestsync/internal/physics"
	"github.com/l1jgo/guestsync/internal/replica"
	"github.com/l1jgo/guestsync/internal/scene"
)

type fixture struct {
	graph  *scene.Graph
	sim    *physics.Sim
	roster *Roster
}

func newFixture(t *testing.T, spawns *data.SpawnTable) *fixture {
	t.Helper()
	graph := scene.NewGraph()
	sim := physics.NewSim()
	r := NewRoster(RosterConfig{
		Deps:          avatar.Deps{Scene: graph, Visuals: graph, Physics: sim, Log: zap.NewNop()},
		Spawns:        spawns,
		DefaultOrigin: geom.V3(1, 0, 2),
		ErrorLogEvery: 10,
	}, zap.NewNop())
	return &fixture{graph: graph, sim: sim, roster: r}
}

func TestJoinUsesDefaultOrigin(t *testing.T) {
	f := newFixture(t, nil)
	g := f.roster.Join("p1", replica.NewMemoryStore("p1"))
	if g.Origin() != geom.V3(1, 0, 2) {
		t.Fatalf("origin = %v", g.Origin())
	}
	if f.roster.Len() != 1 || f.roster.Get("p1") != g {
		t.Fatal("guest not tracked")
	}
	if f.graph.RootCount() != 1 || f.sim.BodyCount() != 1 {
		t.Fatalf("scene roots=%d bodies=%d", f.graph.RootCount(), f.sim.BodyCount())
	}
}

func TestJoinRoundRobinsSpawnTable(t *testing.T) {
	tbl, err := data.ParseSpawnTable([]byte("- {name: a, x: 1, y: 0, z: 0}\n- {name: b, x: 2, y: 0, z: 0}\n"))
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, tbl)
	var xs []float64
	for _, id := range []string{"p1", "p2", "p3"} {
		xs = append(xs, f.roster.Join(id, replica.NewMemoryStore(id)).Origin().X)
	}
	if xs[0] != 1 || xs[1] != 2 || xs[2] != 1 {
		t.Fatalf("origins x = %v, want [1 2 1]", xs)
	}
}

func TestJoinTwiceKeepsGuest(t *testing.T) {
	f := newFixture(t, nil)
	first := f.roster.Join("p1", replica.NewMemoryStore("p1"))
	second := f.roster.Join("p1", replica.NewMemoryStore("p1"))
	if first != second {
		t.Fatal("second join replaced the guest")
	}
	if f.roster.Joined() != 1 || f.sim.BodyCount() != 1 {
		t.Fatalf("joined=%d bodies=%d", f.roster.Joined(), f.sim.BodyCount())
	}
}

func TestLeaveAndRejoin(t *testing.T) {
	f := newFixture(t, nil)
	old := f.roster.Join("p1", replica.NewMemoryStore("p1"))
	if !f.roster.Leave("p1") {
		t.Fatal("Leave reported absent")
	}
	if !old.Despawned() || f.roster.Get("p1") != nil {
		t.Fatal("guest not despawned and forgotten")
	}
	if f.roster.Leave("p1") {
		t.Fatal("second Leave reported present")
	}

	fresh := f.roster.Join("p1", replica.NewMemoryStore("p1"))
	if fresh == old || fresh.Despawned() {
		t.Fatal("rejoin did not build a new guest")
	}
	if f.roster.Joined() != 2 {
		t.Fatalf("Joined() = %d, want 2", f.roster.Joined())
	}
}

func TestEachKeepsJoinOrder(t *testing.T) {
	f := newFixture(t, nil)
	for _, id := range []string{"c", "a", "b"} {
		f.roster.Join(id, replica.NewMemoryStore(id))
	}
	f.roster.Leave("a")
	f.roster.Join("a", replica.NewMemoryStore("a"))

	var ids []string
	f.roster.Each(func(id string, _ *avatar.Guest) { ids = append(ids, id) })
	want := []string{"c", "b", "a"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("Each order = %v, want %v", ids, want)
		}
	}
	if len(f.roster.Guests()) != 3 {
		t.Fatalf("Guests() len = %d", len(f.roster.Guests()))
	}
}

func TestSetDebugReachesGuests(t *testing.T) {
	f := newFixture(t, nil)
	g := f.roster.Join("p1", replica.NewMemoryStore("p1"))
	f.roster.SetDebug(true)
	g.Update()
	if g.Position() != avatar.DebugPoint {
		t.Fatalf("position = %v, want debug point", g.Position())
	}
	if !f.roster.Join("p2", replica.NewMemoryStore("p2")).Debug() {
		t.Fatal("later guest missed debug mode")
	}
}

func TestCloseDespawnsAll(t *testing.T) {
	f := newFixture(t, nil)
	guests := []*avatar.Guest{
		f.roster.Join("p1", replica.NewMemoryStore("p1")),
		f.roster.Join("p2", replica.NewMemoryStore("p2")),
	}
	f.roster.Close()
	for _, g := range guests {
		if !g.Despawned() {
			t.Fatalf("%s not despawned", g.ID())
		}
	}
	if f.roster.Len() != 0 || f.graph.RootCount() != 0 || f.sim.BodyCount() != 0 {
		t.Fatalf("left behind: guests=%d roots=%d bodies=%d", f.roster.Len(), f.graph.RootCount(), f.sim.BodyCount())
	}
	f.roster.Close()
}
