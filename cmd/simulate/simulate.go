package simulate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/simulation"
)

// Command creates a new command that runs the processing core against a
// synthetic transport and test tone.
func Command(settings *conf.Settings) *cobra.Command {
	var opts simulation.Options

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the meters and scene scheduler over a synthetic session",
		Long:  "Feed a test tone and a couple of scene markers through the processing core, printing display levels and delivered scene events.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulation.Run(settings, opts)
		},
	}

	if err := setupFlags(cmd, settings, &opts); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the simulate command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings, opts *simulation.Options) error {
	cmd.Flags().Float64Var(&opts.Seconds, "seconds", 4.0, "Simulated transport time in seconds")
	cmd.Flags().Float64Var(&opts.ToneHz, "tone", 1000.0, "Test tone frequency in Hz")
	cmd.Flags().Float64Var(&opts.ToneDBFS, "level", -6.0, "Test tone level in dBFS")
	cmd.Flags().Float64Var(&opts.ReportSecs, "report", 0.5, "Interval between meter reports in seconds")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "metrics", viper.GetBool("telemetry.enabled"), "Enable Prometheus telemetry endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of telemetry endpoint")

	// Bind only the settings-backed flags to the viper settings
	if err := viper.BindPFlag("telemetry.enabled", cmd.Flags().Lookup("metrics")); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	if err := viper.BindPFlag("telemetry.listen", cmd.Flags().Lookup("listen")); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
