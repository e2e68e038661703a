package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"braingraph/interfaces/snapshot"
)

var (
	renderNode   string
	renderFrom   string
	renderTo     string
	renderDepth  int
	renderScope  string
	renderPreset string
	renderTheme  string
	renderSearch string
	renderWidth  int
	renderHeight int
	renderWait   bool
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render <explore|map|media|path>",
	Short: "Render a view to a PNG file",
	Long: `Render one view of the graph to a PNG file.

Examples:
  brainview render explore --node note-1 --depth 2
  brainview render map --scope work --preset spread -o work.png
  brainview render path --from note-1 --to note-9
  brainview render media --wait-thumbnails`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"explore", "map", "media", "path"},
	RunE:      runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderNode, "node", "", "focus node id (required for explore)")
	f.StringVar(&renderFrom, "from", "", "path source node id")
	f.StringVar(&renderTo, "to", "", "path target node id")
	f.IntVar(&renderDepth, "depth", 0, "neighborhood depth (1-3), 0 keeps the saved depth")
	f.StringVar(&renderScope, "scope", "", "map scope")
	f.StringVar(&renderPreset, "preset", "", "layout preset")
	f.StringVar(&renderTheme, "theme", "", "theme (light, dark, system)")
	f.StringVar(&renderSearch, "search", "", "highlight nodes matching a query")
	f.IntVar(&renderWidth, "width", snapshot.DefaultWidth, "image width in pixels")
	f.IntVar(&renderHeight, "height", snapshot.DefaultHeight, "image height in pixels")
	f.BoolVar(&renderWait, "wait-thumbnails", false, "wait for media thumbnails before encoding")
	f.StringVarP(&renderOutput, "output", "o", "", "output file (default <view>.png)")
}

func runRender(cmd *cobra.Command, args []string) error {
	req := snapshot.Request{
		View:           args[0],
		NodeID:         renderNode,
		From:           renderFrom,
		To:             renderTo,
		Depth:          renderDepth,
		Scope:          renderScope,
		Preset:         renderPreset,
		Theme:          renderTheme,
		Search:         renderSearch,
		Width:          renderWidth,
		Height:         renderHeight,
		WaitThumbnails: renderWait,
	}

	result, err := container.Snapshots.Render(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := renderOutput
	if out == "" {
		out = req.View + ".png"
	}
	if err := os.WriteFile(out, result.PNG, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", brand.Sprint("brainview"), info.Sprint(req.View))
	printRenderResult(w, out, result)
	return nil
}

func printRenderResult(w io.Writer, out string, result *snapshot.Result) {
	status := result.Scene.Status
	printField(w, "status", statusColor(status).Sprint(status))
	if msg := result.Scene.Message(); msg != "" {
		printField(w, "message", msg)
	}
	printField(w, "nodes", humanize.Comma(int64(result.Stats.Nodes)))
	printField(w, "edges", humanize.Comma(int64(result.Stats.Edges)))
	printField(w, "lod", result.Stats.LOD)
	printField(w, "ticks", result.Ticks)
	printField(w, "file", fmt.Sprintf("%s (%s)", out, humanize.Bytes(uint64(len(result.PNG)))))
}
