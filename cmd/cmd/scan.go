// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package cmd

import (
	"github.com/ostafen/gptscan/internal/config"
	"github.com/ostafen/gptscan/internal/disk"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/ostafen/gptscan/internal/logger"
	"github.com/ostafen/gptscan/internal/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func DefineScanCommand(v *viper.Viper, status *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Validate the partition table of an image or disk and scan its partitions",
		Long: `The 'scan' command validates the primary and secondary GPT headers of an image or device,
optionally checks the partition table for intersecting entries, and scans every valid partition for known signatures.
A DFXML report of the partitions and detections is written at the end of the scan.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := RunScan(cmd, v, args)
			*status = exitStatus(code)
			return err
		},
	}

	addTableFlags(cmd)
	cmd.Flags().Bool(config.KeyPartitionIntersection, false, "report partitions whose block ranges intersect")
	cmd.Flags().Bool(config.KeyAllMatch, false, "keep scanning after the first detection")
	cmd.Flags().String(config.KeyBufferSize, "1MB", "the size of the scan buffer")
	cmd.Flags().String(config.KeyLogFile, "", "write a detailed log to the specified file")
	cmd.Flags().String(config.KeySignatures, "", "file of additional Name:hexpattern signatures")
	cmd.Flags().StringSlice(config.KeyPlugins, nil, "paths to plugin .so files or directories containing plugins")
	cmd.Flags().StringP(config.KeyReport, "o", "", "the path of the scan report file")
	cmd.Flags().Bool(config.KeyNoProgress, false, "disable the progress bar")

	return cmd
}

func RunScan(cmd *cobra.Command, v *viper.Viper, args []string) (gpt.Code, error) {
	path := disk.NormalizeVolumePath(args[0])

	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return gpt.CodeInvalidArgument, err
	}

	opts, err := parseOptions(cfg)
	if err != nil {
		return gpt.CodeInvalidArgument, err
	}
	return scan.Scan(path, opts)
}

func parseOptions(cfg *config.Config) (scan.Options, error) {
	bufferSize, err := cfg.BufferBytes()
	if err != nil {
		return scan.Options{}, err
	}

	return scan.Options{
		Engine:        cfg.ScanOptions(),
		BufferSize:    bufferSize,
		ReportFile:    cfg.Report,
		LogFile:       cfg.LogFile,
		LogLevel:      logger.ParseLevel(cfg.LogLevel),
		SignatureFile: cfg.Signatures,
		Plugins:       cfg.Plugins,
		NoProgress:    cfg.NoProgress,
	}, nil
}
