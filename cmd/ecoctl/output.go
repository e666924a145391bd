package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/ecobalance/ecobalance/internal/city"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(strings.TrimSpace(s))); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	case "":
		return formatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

var (
	colorExcellent = lipgloss.Color("#22C55E")
	colorGood      = lipgloss.Color("#3B82F6")
	colorFair      = lipgloss.Color("#F59E0B")
	colorPoor      = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

func bandColor(r city.Rank) lipgloss.Color {
	switch r {
	case city.RankExcellent:
		return colorExcellent
	case city.RankGood:
		return colorGood
	case city.RankFair:
		return colorFair
	default:
		return colorPoor
	}
}

// grid is a titled table for terminal output.
type grid struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Accent optionally colors a cell.
	Accent func(row, col int) (lipgloss.Color, bool)
}

func (g grid) render(w io.Writer) error {
	if len(g.Headers) == 0 {
		_, err := io.WriteString(w, g.Title+"\n")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(g.Headers...).
		Rows(g.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if g.Accent != nil {
				if c, ok := g.Accent(row, col); ok {
					return cellStyle.Foreground(c)
				}
			}
			return cellStyle
		})

	var b strings.Builder
	if g.Title != "" {
		b.WriteString(titleStyle.Render(g.Title))
		b.WriteString("\n")
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// emit writes v as JSON or YAML, or renders the grid for table output.
func emit(w io.Writer, f format, v any, g func() grid) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return g().render(w)
	}
}
