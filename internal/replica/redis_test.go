package replica

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/l1jgo/guestsync/internal/geom"
)

func newRedisStore(t *testing.T, id string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisStore(rdb, "guestsync:", id, time.Second), srv
}

func TestRedisStorePositionRoundTrip(t *testing.T) {
	s, srv := newRedisStore(t, "p-1234")

	pos, err := ReadPosition(s)
	if err != nil {
		t.Fatal(err)
	}
	if pos.Status != PositionAbsent {
		t.Fatalf("fresh record status = %v", pos.Status)
	}

	if err := WritePosition(s, geom.V3(1, 0.25, 2)); err != nil {
		t.Fatal(err)
	}
	pos, err = ReadPosition(s)
	if err != nil {
		t.Fatal(err)
	}
	if !pos.Present() || pos.Vec != geom.V3(1, 0.25, 2) {
		t.Fatalf("pos = %+v", pos)
	}
	if got := srv.HGet("guestsync:participant:p-1234", "state:pos"); got == "" {
		t.Fatal("position not stored under state:pos")
	}
}

func TestRedisStoreMalformedPayload(t *testing.T) {
	s, srv := newRedisStore(t, "p-1")
	srv.HSet(s.Key(), "state:pos", `{"x":1}`)
	pos, err := ReadPosition(s)
	if err != nil {
		t.Fatal(err)
	}
	if pos.Status != PositionMalformed {
		t.Fatalf("status = %v, want malformed", pos.Status)
	}
}

func TestRedisStorePresentation(t *testing.T) {
	s, _ := newRedisStore(t, "p-1")

	if c, err := s.Color(); err != nil || c != "" {
		t.Fatalf("unset color = %q, %v", c, err)
	}
	if p, err := s.Profile(); err != nil || p != nil {
		t.Fatalf("unset profile = %+v, %v", p, err)
	}

	if err := s.PublishColor("#3366FF"); err != nil {
		t.Fatal(err)
	}
	if err := s.PublishProfile(Profile{Name: "Grace"}); err != nil {
		t.Fatal(err)
	}
	if c, _ := s.Color(); c != "#3366FF" {
		t.Errorf("color = %q", c)
	}
	if p, _ := s.Profile(); p == nil || p.Name != "Grace" {
		t.Errorf("profile = %+v", p)
	}

	if err := s.Forget(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c, _ := s.Color(); c != "" {
		t.Errorf("color survived Forget: %q", c)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, srv := newRedisStore(t, "p-1")
	srv.Close()

	if _, _, err := s.Get(KeyPosition); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Get err = %v, want ErrUnavailable", err)
	}
	if err := s.Set(KeyPosition, EncodePosition(geom.Vec3{})); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Set err = %v, want ErrUnavailable", err)
	}
}
