package cmd

import (
	"testing"

	"github.com/ostafen/gptscan/internal/config"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/stretchr/testify/require"
)

func TestExitStatus(t *testing.T) {
	require.Equal(t, ExitClean, exitStatus(gpt.CodeClean))
	require.Equal(t, ExitDetection, exitStatus(gpt.CodeDetection))
	require.Equal(t, ExitError, exitStatus(gpt.CodeFormatError))
	require.Equal(t, ExitError, exitStatus(gpt.CodeInvalidArgument))
	require.Equal(t, ExitError, exitStatus(gpt.CodeError))
}

func TestGetMountpoint(t *testing.T) {
	require.Equal(t, "disk_mnt", getMountpoint("/images/disk.img"))
	require.Equal(t, "sda_mnt", getMountpoint("/dev/sda"))
}

func TestScanFlagsOverrideDefaults(t *testing.T) {
	v := config.New()
	cmd := DefineScanCommand(v, new(int))
	cmd.Flags().String("config", "", "")

	require.NoError(t, cmd.Flags().Parse([]string{
		"--max-partitions=8",
		"--partition-intersection",
		"--buffer-size=4KB",
		"-o", "out.xml",
	}))

	cfg, err := loadConfig(cmd, v)
	require.NoError(t, err)

	opts, err := parseOptions(cfg)
	require.NoError(t, err)
	require.Equal(t, uint32(8), opts.Engine.MaxPartitions)
	require.True(t, opts.Engine.DetectIntersections)
	require.False(t, opts.Engine.AllMatches)
	require.Equal(t, 4096, opts.BufferSize)
	require.Equal(t, "out.xml", opts.ReportFile)
}
