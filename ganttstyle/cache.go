package ganttstyle

import (
	"oss.terrastruct.com/gantt/lib/color"
)

// Cache memoizes derived fills for one chart. It is cleared at the start of every render.
type Cache struct {
	style *Style
	fills map[string]string
}

func NewCache(st *Style) *Cache {
	return &Cache{style: st, fills: make(map[string]string)}
}

func (c *Cache) Clear() {
	c.fills = make(map[string]string)
}

func (c *Cache) Len() int {
	return len(c.fills)
}

// Fill returns the fill for class given an explicit fill override, which may be empty.
// Dimmed classes blend the base fill towards the background.
func (c *Cache) Fill(class, override string, dimmed bool) string {
	key := class + "|" + override
	if dimmed {
		key += "|dim"
	}
	if v, ok := c.fills[key]; ok {
		return v
	}
	v := override
	if v == "" {
		v = c.baseFill(class)
	}
	if dimmed {
		if d, err := color.Dim(v, c.style.Background, c.style.DimAmount); err == nil {
			v = d
		}
	}
	c.fills[key] = v
	return v
}

// Darker is used for the hover tint of a fill.
func (c *Cache) Darker(fill string) string {
	key := "darken|" + fill
	if v, ok := c.fills[key]; ok {
		return v
	}
	v, err := color.Darken(fill)
	if err != nil {
		v = fill
	}
	c.fills[key] = v
	return v
}

func (c *Cache) baseFill(class string) string {
	switch class {
	case "summary":
		return c.style.SummaryFill
	case "milestone":
		return c.style.MilestoneFill
	case "baseline":
		return c.style.BaselineFill
	case "progress":
		return c.style.ProgressFill
	case "overtime":
		return c.style.OvertimeFill
	case "downtime":
		return c.style.DowntimeFill
	default:
		return c.style.TaskFill
	}
}
