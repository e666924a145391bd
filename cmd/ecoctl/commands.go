package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ecobalance/ecobalance/internal/charts"
	"github.com/ecobalance/ecobalance/internal/city"
	"github.com/ecobalance/ecobalance/internal/comparison"
	"github.com/ecobalance/ecobalance/internal/dashboard"
	"github.com/ecobalance/ecobalance/internal/sources"
	"github.com/ecobalance/ecobalance/internal/worker"
)

type cityRow struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Country       string    `json:"country" yaml:"country"`
	Score         float64   `json:"score" yaml:"score"`
	Rank          city.Rank `json:"rank" yaml:"rank"`
	Band          city.Rank `json:"band" yaml:"band"`
	PerCapita     float64   `json:"per_capita_tons" yaml:"per_capita_tons"`
	TreeCanopy    float64   `json:"tree_canopy_percent" yaml:"tree_canopy_percent"`
	Sequestration float64   `json:"carbon_sequestration_tons" yaml:"carbon_sequestration_tons"`
}

func (c *cli) citiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the scored cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.format()
			if err != nil {
				return err
			}
			store := c.load(cmd.Context(), cmd)

			cities := store.Cities()
			rows := make([]cityRow, 0, len(cities))
			for _, ct := range cities {
				rows = append(rows, cityRow{
					ID:            ct.ID,
					Name:          ct.Name,
					Country:       ct.Country,
					Score:         ct.EcoBalanceScore,
					Rank:          ct.ScoreRank,
					Band:          ct.Band(),
					PerCapita:     ct.Emissions.PerCapitaTons,
					TreeCanopy:    ct.Vegetation.TreeCanopyPercent,
					Sequestration: ct.Vegetation.CarbonSequestrationTonsPerYear,
				})
			}

			return emit(cmd.OutOrStdout(), f, rows, func() grid {
				g := grid{
					Title:   fmt.Sprintf("Cities (%s)", store.Snapshot().Origin()),
					Headers: []string{"ID", "City", "Country", "Score", "Rank", "CO₂/cap (t)", "Canopy %"},
				}
				for _, r := range rows {
					g.Rows = append(g.Rows, []string{
						r.ID, r.Name, r.Country, fixed(r.Score), string(r.Rank), fixed(r.PerCapita), fixed(r.TreeCanopy),
					})
				}
				g.Accent = func(row, col int) (lipgloss.Color, bool) {
					if col != 3 || row < 0 || row >= len(rows) {
						return "", false
					}
					return bandColor(rows[row].Band), true
				}
				return g
			})
		},
	}
}

type summaryOut struct {
	TotalCities  int     `json:"total_cities" yaml:"total_cities"`
	TopPerformer string  `json:"top_performer,omitempty" yaml:"top_performer,omitempty"`
	TopScore     float64 `json:"top_score" yaml:"top_score"`
	AverageScore string  `json:"average_score" yaml:"average_score"`
	Origin       string  `json:"origin" yaml:"origin"`
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard headline statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.format()
			if err != nil {
				return err
			}
			store := c.load(cmd.Context(), cmd)

			s := dashboard.Summarize(store.Cities())
			out := summaryOut{
				TotalCities:  s.TotalCities,
				AverageScore: s.AverageDisplay(),
				Origin:       string(store.Snapshot().Origin()),
			}
			if s.TopPerformer != nil {
				out.TopPerformer = s.TopPerformer.Name
				out.TopScore = s.TopPerformer.EcoBalanceScore
			}

			return emit(cmd.OutOrStdout(), f, out, func() grid {
				return grid{
					Title:   "EcoBalance summary",
					Headers: []string{"Cities", "Top performer", "Average score"},
					Rows: [][]string{{
						strconv.Itoa(out.TotalCities),
						fmt.Sprintf("%s (%s)", out.TopPerformer, fixed(out.TopScore)),
						out.AverageScore,
					}},
				}
			})
		},
	}
}

type compareOut struct {
	State   comparison.State `json:"state" yaml:"state"`
	Message string           `json:"message,omitempty" yaml:"message,omitempty"`
	Left    string           `json:"left,omitempty" yaml:"left,omitempty"`
	Right   string           `json:"right,omitempty" yaml:"right,omitempty"`
	Winner  string           `json:"winner,omitempty" yaml:"winner,omitempty"`
	Summary string           `json:"summary,omitempty" yaml:"summary,omitempty"`
	Metrics []metricOut      `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

type metricOut struct {
	Label  string          `json:"label" yaml:"label"`
	Unit   string          `json:"unit,omitempty" yaml:"unit,omitempty"`
	Left   float64         `json:"left" yaml:"left"`
	Right  float64         `json:"right" yaml:"right"`
	Better comparison.Side `json:"better,omitempty" yaml:"better,omitempty"`
}

func (c *cli) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Compare two cities metric by metric",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := c.format()
			if err != nil {
				return err
			}
			store := c.load(cmd.Context(), cmd)

			m := comparison.NewManager(store, c.logger(cmd.ErrOrStderr()))
			if err := m.Initialize(cmd.Context()); err != nil {
				return err
			}
			res := m.Select(args[0], args[1])

			out := compareOut{State: res.State, Message: res.Message, Summary: res.Summary}
			if res.State == comparison.StateCompared {
				out.Left, out.Right = res.Left.Name, res.Right.Name
				if w := res.WinnerCity(); w != nil {
					out.Winner = w.Name
				}
				for _, mr := range res.Metrics {
					out.Metrics = append(out.Metrics, metricOut{
						Label: mr.Label, Unit: mr.Unit, Left: mr.Left, Right: mr.Right, Better: mr.Better,
					})
				}
			}

			return emit(cmd.OutOrStdout(), f, out, func() grid {
				if out.State != comparison.StateCompared {
					return grid{Title: out.Message}
				}
				g := grid{
					Title:   out.Summary,
					Headers: []string{"Metric", out.Left, out.Right},
				}
				for _, mr := range out.Metrics {
					label := mr.Label
					if mr.Unit != "" {
						label += " (" + mr.Unit + ")"
					}
					g.Rows = append(g.Rows, []string{label, fixed(mr.Left), fixed(mr.Right)})
				}
				g.Accent = func(row, col int) (lipgloss.Color, bool) {
					if row < 0 || row >= len(out.Metrics) {
						return "", false
					}
					switch b := out.Metrics[row].Better; {
					case b == comparison.SideLeft && col == 1, b == comparison.SideRight && col == 2:
						return colorExcellent, true
					}
					return "", false
				}
				return g
			})
		},
	}
}

func (c *cli) chartCmd() *cobra.Command {
	var (
		out    string
		width  int
		height int
	)
	cmd := &cobra.Command{
		Use:       "chart scores|emissions",
		Short:     "Render a chart as SVG",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(charts.KindScores), string(charts.KindEmissions)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := charts.ParseKind(args[0])
			if err != nil {
				return err
			}
			store := c.load(cmd.Context(), cmd)

			series := charts.Project(store.Cities())
			size := charts.Size{Width: width, Height: height}
			var buf bytes.Buffer
			switch kind {
			case charts.KindEmissions:
				err = charts.RenderEmissions(&buf, series.Emissions, size)
			default:
				err = charts.RenderScores(&buf, series.Scores, size)
			}
			if err != nil {
				return fmt.Errorf("render %s chart: %w", kind, err)
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write chart: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, buf.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file, stdout when empty or -")
	cmd.Flags().IntVar(&width, "width", charts.DefaultSize.Width, "chart width in pixels")
	cmd.Flags().IntVar(&height, "height", charts.DefaultSize.Height, "chart height in pixels")
	return cmd
}

type sourceOut struct {
	City       string `json:"city" yaml:"city"`
	Country    string `json:"country,omitempty" yaml:"country,omitempty"`
	GreenSpace string `json:"green_space,omitempty" yaml:"green_space,omitempty"`
	Emissions  string `json:"emissions,omitempty" yaml:"emissions,omitempty"`
}

func (c *cli) sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the data sources behind each city",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := c.format()
			if err != nil {
				return err
			}
			store := c.load(cmd.Context(), cmd)

			cards := sources.Cards(store.Integration())
			rows := make([]sourceOut, 0, len(cards))
			for _, card := range cards {
				rows = append(rows, sourceOut{
					City:       card.Name,
					Country:    card.Country,
					GreenSpace: sourceName(card.GreenSpace),
					Emissions:  sourceName(card.Emissions),
				})
			}

			return emit(cmd.OutOrStdout(), f, rows, func() grid {
				g := grid{
					Title:   "Data sources",
					Headers: []string{"City", "Country", "Green space", "Emissions"},
				}
				for _, r := range rows {
					g.Rows = append(g.Rows, []string{r.City, r.Country, r.GreenSpace, r.Emissions})
				}
				return g
			})
		},
	}
}

func (c *cli) refreshCmd() *cobra.Command {
	var project, topic string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask running API instances to reload data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project == "" {
				project = c.v.GetString("pubsub.project")
			}
			if project == "" {
				return fmt.Errorf("a Pub/Sub project is required (--project or ECOCTL_PUBSUB_PROJECT)")
			}
			if topic == "" {
				topic = c.v.GetString("pubsub.topic")
			}
			if topic == "" {
				topic = "ecobalance-refresh"
			}

			pub, err := worker.NewPublisher(cmd.Context(), project, topic)
			if err != nil {
				return err
			}
			defer pub.Close()

			id, err := pub.PublishRefresh(cmd.Context(), "ecoctl")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refresh requested at %s (message %s)\n", time.Now().Format(time.RFC3339), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "Google Cloud project")
	cmd.Flags().StringVar(&topic, "topic", "", "refresh topic")
	return cmd
}

func sourceName(ref *city.SourceRef) string {
	if ref == nil {
		return ""
	}
	return ref.Source
}

func fixed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
