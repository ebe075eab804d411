package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wavecraft-audio/wavecraft/cmd/simulate"
	"github.com/wavecraft-audio/wavecraft/internal/conf"
	"github.com/wavecraft-audio/wavecraft/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wavecraft",
		Short: "Wavecraft processing core CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if settings.Debug {
				logging.SetLevel(slog.LevelDebug)
			}
		},
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(simulate.Command(settings))

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.SampleRate, "samplerate", viper.GetInt("engine.samplerate"), "Session sample rate in Hz")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.AudioChannels, "audiochannels", viper.GetInt("engine.audiochannels"), "Number of audio channel slots")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.MIDIChannels, "midichannels", viper.GetInt("engine.midichannels"), "Number of MIDI channel slots")
	rootCmd.PersistentFlags().Float64Var(&settings.Metering.FalloffDB, "falloff", viper.GetFloat64("metering.falloffdb"), "Meter falloff in dB per second, 0 disables falloff")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
