// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "wavecraft")
	viper.SetDefault("main.log.enabled", false)
	viper.SetDefault("main.log.path", "wavecraft.log")
	viper.SetDefault("main.log.maxsizemb", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxagedays", 28)

	viper.SetDefault("engine.samplerate", 48000)
	viper.SetDefault("engine.midichannels", 0)
	viper.SetDefault("engine.audiochannels", 2)

	// 13.3 dB/s mirrors a medium meter falloff on hardware consoles.
	viper.SetDefault("metering.falloffdb", 13.3)

	viper.SetDefault("scene.interscenegapms", 100.0)
	viper.SetDefault("scene.markerprefix", "Scene ")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "localhost:8090")
}
