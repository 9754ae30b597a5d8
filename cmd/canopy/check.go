package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and script without opening a window",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, runner, err := loadInputs(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "enable_interaction_in_transition = %t\n", settings.EnableInteractionInTransition)
		fmt.Fprintf(out, "control_interaction_all_container_kinds = %t\n", settings.ControlInteractionAllContainerKinds)
		fmt.Fprintf(out, "call_cleanup_on_destroy = %t\n", settings.CallCleanupOnDestroy)
		fmt.Fprintf(out, "default_animation = %q (%.2fs)\n", settings.DefaultAnimation, settings.DefaultAnimationDuration)
		if runner != nil {
			fmt.Fprintf(out, "script: %d steps [%s]\n", runner.Len(), strings.Join(runner.Actions(), " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
