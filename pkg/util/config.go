package util

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads ./data/config.yaml and installs defaults for every key
// the pipeline reads, so a missing file is not fatal.
func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")

	viper.SetDefault("DB_PATH", "./data/eved.sqlite")
	viper.SetDefault("SIGNAL_ARCHIVE", "./data/eVED.zip")
	viper.SetDefault("VEHICLE_SHEETS", []string{
		"./data/VED_Static_Data_ICE&HEV.xlsx",
		"./data/VED_Static_Data_PHEV&EV.xlsx",
	})
	viper.SetDefault("VALHALLA_URL", "http://localhost:8002")
	viper.SetDefault("VALHALLA_TIMEOUT", "120s")
	viper.SetDefault("VALHALLA_RATE_LIMIT", 0)
	viper.SetDefault("BATCH_SIZE", 1000)
	viper.SetDefault("POOL_SIZE", 5)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
