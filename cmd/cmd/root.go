package cmd

import (
	"github.com/ostafen/gptscan/internal/config"
	"github.com/ostafen/gptscan/internal/env"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit statuses of the process.
const (
	ExitClean     = 0
	ExitDetection = 1
	ExitError     = 2
)

// exitStatus maps a scan outcome to the process exit status.
func exitStatus(code gpt.Code) int {
	switch code {
	case gpt.CodeClean:
		return ExitClean
	case gpt.CodeDetection:
		return ExitDetection
	default:
		return ExitError
	}
}

// Execute runs the command line and returns the exit status.
func Execute() int {
	v := config.New()
	status := ExitClean

	rootCmd := &cobra.Command{
		Use:   env.AppName,
		Short: env.AppName + " - GPT partition table validator and scanner",
	}

	rootCmd.PersistentFlags().String("config", "", "path to a YAML configuration file (default: search for gptscan.yaml)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "INFO", "minimum log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(
		DefineScanCommand(v, &status),
		DefineListCommand(v),
		DefineMountCommand(v),
		DefineSignaturesCommand(v),
	)

	if err := rootCmd.Execute(); err != nil && status == ExitClean {
		status = ExitError
	}
	return status
}

// loadConfig binds the flags of cmd and reads the resulting settings.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (*config.Config, error) {
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(v, cfgFile)
}

// addTableFlags defines the flags controlling how the partition table is read.
func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64(config.KeySectorSize, 0, "logical sector size in bytes (0 to detect it)")
	cmd.Flags().Uint32(config.KeyMaxPartitions, gpt.DefaultMaxPartitions, "maximum number of table entries examined per table")
}
