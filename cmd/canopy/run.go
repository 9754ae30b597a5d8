package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/canopy"
	"github.com/phanxgames/canopy/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open a window and play the script",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, runner, err := loadInputs(cmd)
		if err != nil {
			return err
		}
		assets, _ := cmd.Flags().GetString("assets")
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")
		debug, _ := cmd.Flags().GetBool("debug")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		stay, _ := cmd.Flags().GetBool("stay")

		level := &slog.LevelVar{}
		if debug {
			level.Set(slog.LevelDebug)
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		scene := canopy.NewScene(canopy.SceneConfig{
			Settings: &settings,
			Loader:   canopy.NewFSLoader(os.DirFS(assets)),
			Logger:   logger,
		})
		scene.SetDebugMode(debug)
		scene.ClearColor = canopy.Color{R: 0.08, G: 0.08, B: 0.1, A: 1}

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		for _, cn := range containerNames {
			c, err := scene.NewContainer(canopy.ContainerConfig{Name: cn.name, Kind: cn.kind})
			if err != nil {
				return err
			}
			c.AddCallbackReceiver(m.Receiver(c.Name()))
		}

		if metricsAddr != "" {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				logger.Info("serving metrics", "addr", metricsAddr)
				if err := http.ListenAndServe(metricsAddr, mux); err != nil {
					logger.Error("metrics server stopped", "error", err)
				}
			}()
		}

		if runner != nil {
			scene.SetScript(runner)
			scene.SetUpdateFunc(func() error {
				if runner.Done() && runner.Err() == nil && !stay {
					return ebiten.Termination
				}
				return nil
			})
		}

		err = canopy.Run(scene, canopy.RunConfig{Title: "canopy", Width: width, Height: height})
		if errors.Is(err, ebiten.Termination) {
			err = nil
		}
		for _, line := range scene.DebugSummary() {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("assets", ".", "Directory holding screen PNGs")
	runCmd.Flags().Int("width", 640, "Window width")
	runCmd.Flags().Int("height", 480, "Window height")
	runCmd.Flags().Bool("debug", false, "Log transition phases")
	runCmd.Flags().Bool("stay", false, "Keep the window open after the script finishes")
	runCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
}
