package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/guestsync/internal/geom"
)

const lobby = `
- name: fountain
  x: 1
  y: 0
  z: 2
- name: gate
  x: -3.5
  y: 0.5
  z: 4
`

func TestLoadSpawnTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spawn_points.yaml")
	if err := os.WriteFile(path, []byte(lobby), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := LoadSpawnTable(path)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", tbl.Count())
	}

	want := []string{"fountain", "gate", "fountain"}
	for i, name := range want {
		if got := tbl.Next(); got.Name != name {
			t.Errorf("Next() #%d = %q, want %q", i, got.Name, name)
		}
	}
	if got := tbl.Next().Vec(); got != geom.V3(-3.5, 0.5, 4) {
		t.Errorf("gate vec = %v", got)
	}
}

func TestParseSpawnTableRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"empty", "[]", "empty"},
		{"not a list", "name: x", "parse"},
		{"nan", "- {name: bad, x: .nan, y: 0, z: 0}", "not finite"},
		{"inf", "- {name: bad, x: 0, y: .inf, z: 0}", "not finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpawnTable([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadSpawnTableMissingFile(t *testing.T) {
	if _, err := LoadSpawnTable(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}
