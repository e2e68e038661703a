package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"braingraph/application/ports"
	"braingraph/domain/core/entities"
	"braingraph/domain/layout"
)

const searchDefaultLimit = 20

var (
	searchLimit   int
	overviewScope string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search nodes by title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := container.Readers()
		defer reader.CancelAll()

		nodes, err := reader.Search(cmd.Context(), args[0], searchLimit)
		if err != nil {
			return err
		}
		printNodes(cmd.OutOrStdout(), nodes)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print graph-wide node and edge counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := container.Readers()
		defer reader.CancelAll()

		stats, err := reader.Stats(cmd.Context())
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Summarize the map view and its communities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := container.Readers()
		defer reader.CancelAll()

		data, stats, err := reader.Overview(cmd.Context(), overviewScope)
		if err != nil {
			return err
		}
		printOverview(cmd.OutOrStdout(), overviewScope, data, stats)
		return nil
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List layout presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		saved, err := container.Preferences.Load(cmd.Context())
		if err != nil {
			return err
		}
		printPresets(cmd.OutOrStdout(), container.Presets.Registry(), saved.Preset)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", searchDefaultLimit, "maximum number of results")
	overviewCmd.Flags().StringVar(&overviewScope, "scope", "", "map scope")
}

func printNodes(w io.Writer, nodes []entities.Node) {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{n.ID().String(), string(n.Type()), n.Title()})
	}
	printTable(w, []string{"id", "type", "title"}, rows)
	subtle.Fprintf(w, "  %s\n", humanize.Comma(int64(len(nodes)))+" results")
}

func printStats(w io.Writer, stats *ports.GraphStats) {
	printField(w, "nodes", humanize.Comma(int64(stats.TotalNodes)))
	printField(w, "edges", humanize.Comma(int64(stats.TotalEdges)))
	printField(w, "communities", humanize.Comma(int64(stats.Communities)))

	if len(stats.NodeCounts) > 0 {
		fmt.Fprintln(w)
		printTable(w, []string{"node type", "count"}, countRows(stats.NodeCounts))
	}
	if len(stats.EdgeCounts) > 0 {
		fmt.Fprintln(w)
		printTable(w, []string{"edge type", "count"}, countRows(stats.EdgeCounts))
	}
}

// countRows sorts by count descending, then name
func countRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, humanize.Comma(int64(counts[k]))})
	}
	return rows
}

func printOverview(w io.Writer, scope string, data *ports.MapData, stats *ports.GraphStats) {
	if scope == "" {
		scope = "all"
	}
	printField(w, "scope", info.Sprint(scope))
	if data.Graph != nil {
		printField(w, "map nodes", humanize.Comma(int64(data.Graph.NodeCount())))
		printField(w, "map edges", humanize.Comma(int64(data.Graph.EdgeCount())))
	}
	if stats != nil {
		printField(w, "graph nodes", humanize.Comma(int64(stats.TotalNodes)))
	}
	fmt.Fprintln(w)

	rows := make([][]string, 0, len(data.Communities))
	for _, c := range data.Communities {
		rows = append(rows, []string{c.ID, c.DisplayLabel(), strconv.Itoa(c.NodeCount)})
	}
	printTable(w, []string{"community", "label", "nodes"}, rows)
}

func printPresets(w io.Writer, registry *layout.Registry, saved string) {
	def := registry.Default().Name
	rows := [][]string{}
	for _, name := range registry.Names() {
		p, err := registry.Get(string(name))
		if err != nil {
			continue
		}
		mark := ""
		switch {
		case string(name) == saved:
			mark = good.Sprint("saved")
		case name == def && saved == "":
			mark = subtle.Sprint("default")
		}
		rows = append(rows, []string{
			string(p.Name),
			p.Label,
			strconv.FormatFloat(p.Physics.ChargeStrength, 'f', -1, 64),
			strconv.FormatFloat(p.Physics.LinkDistance, 'f', -1, 64),
			strconv.FormatBool(p.Display.ShowLabels),
			mark,
		})
	}
	printTable(w, []string{"name", "label", "charge", "distance", "labels", ""}, rows)
}
