package report

import (
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/sqldiff/pkg/diff"
)

// palette colors report text per edit kind. Each color carries its own
// enable flag so reports never touch color.NoColor.
type palette struct {
	kinds  map[diff.Kind]*color.Color
	header *color.Color
	warn   *color.Color
	del    *color.Color
	ins    *color.Color
}

func newPalette(enabled bool) *palette {
	pal := &palette{
		kinds: map[diff.Kind]*color.Color{
			diff.KindRemove: color.New(color.FgRed),
			diff.KindInsert: color.New(color.FgGreen),
			diff.KindUpdate: color.New(color.FgYellow),
			diff.KindMove:   color.New(color.FgCyan),
			diff.KindKeep:   color.New(color.Faint),
		},
		header: color.New(color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		del:    color.New(color.FgRed, color.CrossedOut),
		ins:    color.New(color.FgGreen, color.Underline),
	}

	for _, c := range pal.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return pal
}

func (pal *palette) all() []*color.Color {
	colors := []*color.Color{pal.header, pal.warn, pal.del, pal.ins}
	for _, c := range pal.kinds {
		colors = append(colors, c)
	}

	return colors
}

func (pal *palette) kind(kind diff.Kind) *color.Color {
	c, ok := pal.kinds[kind]
	if !ok {
		return pal.header
	}

	return c
}
