package cmd

import (
	"os"

	"github.com/ostafen/gptscan/internal/disk"
	"github.com/ostafen/gptscan/internal/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func DefineListCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "list <image>",
		Short:        "List the valid partitions of an image or disk",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunList(cmd, v, args)
		},
	}

	addTableFlags(cmd)
	return cmd
}

func RunList(cmd *cobra.Command, v *viper.Viper, args []string) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	layout, err := scan.List(disk.NormalizeVolumePath(args[0]), cfg.ScanOptions())
	if err != nil {
		return err
	}
	return scan.PrintLayout(os.Stdout, layout)
}
