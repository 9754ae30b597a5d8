package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/canopy"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "canopy",
	Short: "canopy runs sheet, page and popup transitions",
	Long:  `canopy loads settings and a transition script and plays it against a sheet, a page and a popup container.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("settings", "canopy.toml", "TOML settings file (missing file uses defaults)")
	rootCmd.PersistentFlags().String("script", "", "YAML or JSON transition script")
	rootCmd.PersistentFlags().StringArray("set", nil, "Override a setting (key=value), repeatable")
}

// loadInputs reads the settings (with overrides) and the script named by
// the persistent flags.
func loadInputs(cmd *cobra.Command) (canopy.Settings, *canopy.ScriptRunner, error) {
	settingsPath, _ := cmd.Flags().GetString("settings")
	scriptPath, _ := cmd.Flags().GetString("script")
	pairs, _ := cmd.Flags().GetStringArray("set")

	overrides, err := canopy.ParseOverrides(pairs)
	if err != nil {
		return canopy.Settings{}, nil, err
	}
	settings, err := canopy.LoadSettings(settingsPath, overrides)
	if err != nil {
		return canopy.Settings{}, nil, err
	}
	if scriptPath == "" {
		return settings, nil, nil
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return canopy.Settings{}, nil, fmt.Errorf("reading script: %w", err)
	}
	runner, err := canopy.LoadScript(data)
	if err != nil {
		return canopy.Settings{}, nil, err
	}
	return settings, runner, nil
}

// containerNames are the containers every run creates, in draw order.
var containerNames = []struct {
	name string
	kind canopy.ContainerKind
}{
	{"sheets", canopy.KindSheet},
	{"pages", canopy.KindPage},
	{"popups", canopy.KindPopup},
}
