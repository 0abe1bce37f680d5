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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ostafen/gptscan/internal/disk"
	"github.com/ostafen/gptscan/internal/fuse"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/ostafen/gptscan/internal/scan"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func DefineMountCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mount <image>",
		Short: "Expose the partitions of an image as read-only files",
		Long: `The 'mount' command decodes the partition table of a disk image or device and mounts a read-only
directory holding one file per valid partition. Files are named after the table, index and label of the partition.
Mounting requires FUSE and is only supported on Linux.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunMount(cmd, v, args)
		},
	}

	addTableFlags(cmd)
	cmd.Flags().StringP("mountpoint", "m", "", "Path to the directory where the partitions will be mounted. If not specified, a default will be generated.")
	return cmd
}

func RunMount(cmd *cobra.Command, v *viper.Viper, args []string) error {
	path := disk.NormalizeVolumePath(args[0])

	cfg, err := loadConfig(cmd, v)
	if err != nil {
		return err
	}

	img, err := scan.OpenImage(path)
	if err != nil {
		return err
	}
	defer img.Close()

	layout, err := gpt.NewScanner(nil, cfg.ScanOptions()).List(img)
	if err != nil {
		return fmt.Errorf("failed to read partition table of %s: %w", path, err)
	}
	if len(layout.Partitions) == 0 {
		return fmt.Errorf("no valid partitions found in %s", path)
	}

	mountpoint, _ := cmd.Flags().GetString("mountpoint")
	if mountpoint == "" {
		mountpoint = getMountpoint(path)
	}
	return fuse.Mount(mountpoint, img, layout.Partitions)
}

// getMountpoint generates a mountpoint name from an image file name by
// stripping the extension and appending "_mnt".
func getMountpoint(imagePath string) string {
	baseName := filepath.Base(imagePath)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName)) + "_mnt"
}
