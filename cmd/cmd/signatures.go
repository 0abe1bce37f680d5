package cmd

import (
	"encoding/hex"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ostafen/gptscan/internal/config"
	"github.com/ostafen/gptscan/internal/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func DefineSignaturesCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "List the signatures partitions are scanned for",
		Long: `The 'signatures' command displays the built-in signatures together with those loaded from a signature file or plugins.
Each row shows the detection name and the byte pattern it matches.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunSignatures(cmd, v)
		},
	}

	cmd.Flags().String(config.KeySignatures, "", "file of additional Name:hexpattern signatures")
	cmd.Flags().StringSlice(config.KeyPlugins, nil, "paths to plugin .so files or directories containing plugins")
	return cmd
}

func RunSignatures(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	set, err := scan.LoadSignatures(cfg.Signatures, cfg.Plugins)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLENGTH\tPATTERN")

	for _, sig := range set.All() {
		fmt.Fprintf(w, "%s\t%d\t%s\n",
			sig.Name,
			len(sig.Pattern),
			hex.EncodeToString(sig.Pattern),
		)
	}
	return w.Flush()
}
