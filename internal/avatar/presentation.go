package avatar

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/l1jgo/guestsync/internal/replica"
	"github.com/l1jgo/guestsync/internal/scene"
)

// maxLabelCells caps a name label's width in terminal-style cells; wide
// (CJK) runes take two.
const maxLabelCells = 24

// resolveColor never fails: unreadable, empty or unparsable colors become
// DefaultColor.
func (g *Guest) resolveColor() string {
	var c string
	err := guard("read color", func() error {
		var err error
		c, err = g.state.Color()
		return err
	})
	if err != nil {
		g.log.Debug("participant color unavailable", zap.Error(err))
		return DefaultColor
	}
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultColor
	}
	if _, err := scene.ParseColor(c); err != nil {
		g.log.Debug("participant color unusable", zap.String("color", c), zap.Error(err))
		return DefaultColor
	}
	return c
}

// resolveName never fails: profile name, else "Player <id prefix>", else
// "Player <random>".
func (g *Guest) resolveName() string {
	name := g.baseName()
	if g.deps.Labels != nil {
		var (
			scripted string
			ok       bool
		)
		err := guard("label script", func() error {
			scripted, ok = g.deps.Labels.LabelFor(name, g.id)
			return nil
		})
		if err != nil {
			g.log.Debug("label script failed", zap.Error(err))
		} else if ok {
			if s := displayName(scripted); s != "" {
				return s
			}
		}
	}
	return displayName(name)
}

func (g *Guest) baseName() string {
	var p *replica.Profile
	err := guard("read profile", func() error {
		var err error
		p, err = g.state.Profile()
		return err
	})
	if err != nil {
		g.log.Debug("participant profile unavailable", zap.Error(err))
	} else if p != nil && displayName(p.Name) != "" {
		return p.Name
	}
	if prefix := idPrefix(g.id, 4); prefix != "" {
		return "Player " + prefix
	}
	return fmt.Sprintf("Player %d", g.deps.Intn(1000))
}

func idPrefix(id string, n int) string {
	r := []rune(strings.TrimSpace(id))
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// displayName normalizes to NFC, drops control runes and truncates to
// maxLabelCells, ending with an ellipsis when cut.
func displayName(s string) string {
	var (
		runes []rune
		total int
	)
	for _, r := range strings.TrimSpace(norm.NFC.String(s)) {
		if unicode.IsControl(r) {
			continue
		}
		runes = append(runes, r)
		total += runeCells(r)
	}
	if total <= maxLabelCells {
		return string(runes)
	}
	var (
		b     strings.Builder
		cells int
	)
	for _, r := range runes {
		w := runeCells(r)
		if cells+w > maxLabelCells-1 {
			break
		}
		b.WriteRune(r)
		cells += w
	}
	return strings.TrimSpace(b.String()) + "…"
}

func runeCells(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// buildLabel makes the billboard; if that fails it tries a plain "Player"
// label before giving up.
func (g *Guest) buildLabel(color string) (scene.Node, error) {
	spec := scene.LabelSpec{
		Text:   g.resolveName(),
		Swatch: color,
		Anchor: scene.AnchorAbove,
		Offset: labelOffset,
		Layer:  0,
	}
	var n scene.Node
	err := guard("build label", func() error {
		var err error
		n, err = g.deps.Visuals.NewLabel(spec)
		return err
	})
	if err == nil {
		return n, nil
	}
	g.log.Warn("name label failed, using plain label", zap.Error(err))

	plain := scene.LabelSpec{Text: "Player", Anchor: scene.AnchorAbove, Offset: labelOffset}
	errPlain := guard("build plain label", func() error {
		var err error
		n, err = g.deps.Visuals.NewLabel(plain)
		return err
	})
	if errPlain != nil {
		return nil, fmt.Errorf("build label: %w", errors.Join(err, errPlain))
	}
	return n, nil
}
