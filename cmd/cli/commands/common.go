package commands

import "github.com/spf13/viper"

func verboseLogging() bool {
	return viper.GetBool("verbose")
}
