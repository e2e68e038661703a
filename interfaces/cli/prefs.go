package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"braingraph/application/ports"
	pkgerrors "braingraph/pkg/errors"
)

var (
	prefsTheme  string
	prefsDepth  int
	prefsPreset string
	prefsReset  bool
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change saved preferences",
	Long: `Show the saved depth, layout preset and theme. Passing any flag
updates the saved value; rendered views start from these preferences.

Examples:
  brainview prefs
  brainview prefs --theme dark --depth 2
  brainview prefs --preset spread
  brainview prefs --reset`,
	Args: cobra.NoArgs,
	RunE: runPrefs,
}

func init() {
	f := prefsCmd.Flags()
	f.StringVar(&prefsTheme, "theme", "", "theme (light, dark, system)")
	f.IntVar(&prefsDepth, "depth", 0, "default neighborhood depth (1-3)")
	f.StringVar(&prefsPreset, "preset", "", "default layout preset")
	f.BoolVar(&prefsReset, "reset", false, "clear all saved preferences")
}

func runPrefs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prefs, err := container.Preferences.Load(ctx)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := prefsReset || flags.Changed("theme") || flags.Changed("depth") || flags.Changed("preset")
	if prefsReset {
		prefs = ports.Preferences{}
	}
	if flags.Changed("theme") {
		prefs.Theme = prefsTheme
	}
	if flags.Changed("depth") {
		if prefsDepth < 1 {
			return pkgerrors.NewValidationError("depth must be between 1 and 3")
		}
		prefs.LastDepth = prefsDepth
	}
	if flags.Changed("preset") {
		if _, err := container.Presets.Registry().Get(prefsPreset); err != nil {
			return pkgerrors.NewValidationError(fmt.Sprintf("unknown preset %q", prefsPreset))
		}
		prefs.Preset = prefsPreset
	}

	if changed {
		if err := container.Preferences.Save(ctx, prefs); err != nil {
			return err
		}
	}
	printPrefs(cmd.OutOrStdout(), prefs, changed)
	return nil
}

func printPrefs(w io.Writer, prefs ports.Preferences, saved bool) {
	orDefault := func(v string) string {
		if v == "" {
			return subtle.Sprint("default")
		}
		return v
	}
	depth := subtle.Sprint("default")
	if prefs.LastDepth > 0 {
		depth = fmt.Sprint(prefs.LastDepth)
	}

	printField(w, "depth", depth)
	printField(w, "preset", orDefault(prefs.Preset))
	printField(w, "theme", orDefault(prefs.Theme))
	if saved {
		good.Fprintln(w, "  saved")
	}
}
