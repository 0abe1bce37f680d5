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
package scan

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ostafen/gptscan/internal/disk"
	"github.com/ostafen/gptscan/internal/env"
	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/ostafen/gptscan/internal/logger"
	"github.com/ostafen/gptscan/internal/sigscan"
	"github.com/ostafen/gptscan/pkg/dfxml"
	"github.com/ostafen/gptscan/pkg/pbar"
	fmtutil "github.com/ostafen/gptscan/pkg/util/format"
)

type Options struct {
	Engine        gpt.Options
	BufferSize    int
	ReportFile    string
	LogFile       string
	LogLevel      slog.Level
	SignatureFile string
	Plugins       []string
	NoProgress    bool
	// Out receives the progress lines. Defaults to os.Stdout.
	Out io.Writer
}

func (opts *Options) out() io.Writer {
	if opts.Out == nil {
		return os.Stdout
	}
	return opts.Out
}

func absPath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

// Scan validates the partition table of the image at filePath, runs the
// enabled heuristics, scans every valid partition for known signatures
// and writes a DFXML report. The returned code summarizes the outcome;
// a detection is not an error.
func Scan(filePath string, opts Options) (gpt.Code, error) {
	out := opts.out()

	img, err := OpenImage(filePath)
	if err != nil {
		return gpt.CodeError, err
	}
	defer img.Close()

	set, err := LoadSignatures(opts.SignatureFile, opts.Plugins)
	if err != nil {
		return gpt.CodeError, err
	}

	log, logFile, err := logger.Open(opts.LogFile, opts.LogLevel)
	if err != nil {
		return gpt.CodeError, err
	}
	defer logFile.Close()

	session := GenSessionID()

	reportFileName := opts.ReportFile
	if reportFileName == "" {
		reportFileName = fmt.Sprintf("report_%s.xml", session)
	}

	outLog := "disabled"
	if opts.LogFile != "" {
		outLog = absPath(opts.LogFile)
	}

	fmt.Fprintln(out, "[INFO] Starting scanning operation...")
	fmt.Fprintf(out, "[INFO] Source: \t%s\n", absPath(filePath))
	fmt.Fprintf(out, "[INFO] Image size: \t%s (%s)\n", fmtutil.FormatBytes(int64(img.Len())), img.AccessMode())
	fmt.Fprintf(out, "[INFO] Protective MBR: \t%s\n", describeMBR(img))
	fmt.Fprintf(out, "[INFO] Output Log: \t%s\n", outLog)
	fmt.Fprintf(out, "[INFO] Scanning for %d signatures...\n", set.Len())

	engineOpts := opts.Engine
	engineOpts.Logger = log

	var bar *pbar.ProgressBarState
	scOpts := sigscan.Options{
		BufferSize: opts.BufferSize,
		Logger:     log,
	}
	if !opts.NoProgress {
		bar = pbar.NewProgressBarStateTo(out, int64(partitionBytes(img, opts.Engine)))
		scOpts.OnProgress = bar.Add
	}
	sc := sigscan.New(img, set, scOpts)

	content := gpt.ContentScannerFunc(func(off, length uint64, hint gpt.TypeHint) (gpt.Verdict, error) {
		v, err := sc.ScanRange(off, length, hint)
		if bar != nil {
			bar.Partitions++
			if v.Detected {
				bar.Detections++
			}
		}
		return v, err
	})

	start := time.Now()

	res, err := gpt.NewScanner(content, engineOpts).Scan(img)
	if bar != nil {
		bar.Finish()
	}

	code := gpt.Classify(res, err)
	if err != nil {
		log.Error("scan failed", "image", filePath, "code", code.String(), "err", err)
		return code, fmt.Errorf("failed to scan %s: %w", filePath, err)
	}

	if err := writeReport(reportFileName, img, res); err != nil {
		return gpt.CodeError, err
	}

	fmt.Fprintf(out, "[INFO] Scan completed!\n")
	fmt.Fprintf(out, "[INFO] Partition table: \t%s\n", res.State)
	fmt.Fprintf(out, "[INFO] Sector size: \t%d\n", res.SectorSize)
	fmt.Fprintf(out, "[INFO] Partitions scanned: \t%d\n", len(res.Partitions))
	fmt.Fprintf(out, "[INFO] Detections: \t%d\n", len(res.Detections))
	for _, d := range res.Detections {
		fmt.Fprintf(out, "[DETECTED] %s (%s) in %s table, entries %s\n",
			d.Name, d.Kind, d.Table, joinInts(d.Entries))
	}
	fmt.Fprintf(out, "[INFO] Duration: \t%s\n", FormatDurationHMS(time.Since(start)))
	fmt.Fprintf(out, "[INFO] Report saved to: \t%s\n", absPath(reportFileName))

	return code, nil
}

// partitionBytes sums the sizes of the partitions a scan is going to
// visit, falling back to the image size when the table cannot be read.
func partitionBytes(img *Image, opts gpt.Options) uint64 {
	opts.Logger = nil
	layout, err := gpt.NewScanner(nil, opts).List(img)
	if err != nil {
		return img.Len()
	}

	var total uint64
	for _, p := range layout.Partitions {
		total += p.Size
	}
	return total
}

// describeMBR reports whether the first sector holds a protective MBR.
// The scan does not depend on it.
func describeMBR(src gpt.Source) string {
	data, err := src.ReadN(0, disk.MBRSize)
	if err != nil {
		return "absent"
	}

	mbr, err := disk.ParseMBR(data)
	if err != nil {
		return "absent"
	}

	p, ok := mbr.Protective()
	if !ok {
		return "no GPT entry"
	}
	return p.String()
}

func writeReport(name string, img *Image, res *gpt.Result) error {
	outFile, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", name, err)
	}
	defer outFile.Close()

	w := dfxml.NewDFXMLWriter(outFile)

	err = w.WriteHeader(dfxml.DFXMLHeader{
		XmlOutput: dfxml.XmlOutputVersion,
		Metadata:  dfxml.DefaultMetadata,
		Creator: dfxml.Creator{
			Package:              env.AppName,
			Version:              env.Version,
			ExecutionEnvironment: dfxml.GetExecEnv(),
		},
		Source: dfxml.Source{
			ImageFilename:  img.Path,
			SectorSize:     int(res.SectorSize),
			ImageSize:      img.Len(),
			PartitionTable: res.State.String(),
			DiskGUID:       res.DiskGUID.String(),
		},
	})
	if err != nil {
		return err
	}

	for _, p := range res.Partitions {
		err := w.WriteVolume(dfxml.Volume{
			Offset:          p.Offset,
			PartitionIndex:  p.Num,
			PartitionTable:  p.Table.String(),
			PartitionOffset: p.Offset,
			BlockSize:       p.BlockSize,
			PartitionName:   p.Name,
			TypeGUID:        p.TypeGUID.String(),
			PartitionGUID:   p.UniqueGUID.String(),
			ByteRuns: dfxml.ByteRuns{
				Runs: []dfxml.ByteRun{{
					Offset:    0,
					ImgOffset: p.Offset,
					Length:    p.Size,
				}},
			},
		})
		if err != nil {
			return err
		}
	}

	for _, d := range res.Detections {
		err := w.WriteDetection(dfxml.Detection{
			Name:    d.Name,
			Kind:    d.Kind.String(),
			Table:   d.Table.String(),
			Entries: d.Entries,
			Offset:  d.Offset,
			Length:  d.Length,
		})
		if err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}
	return outFile.Sync()
}

func joinInts(v []int) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = fmt.Sprint(n)
	}
	return strings.Join(s, ",")
}

// GenSessionID creates a unique name for a scan session.
// The format is "YYYYMMDD_HHMMSS".
func GenSessionID() string {
	return time.Now().Format("20060102_150405")
}

// FormatDurationHMS formats a time.Duration into HH:MM:SS string.
// It handles durations that might be less than an hour or greater than 24 hours.
func FormatDurationHMS(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	totalSeconds := int64(d.Seconds())

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
