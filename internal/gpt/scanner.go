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
package gpt

import (
	"io"
	"log/slog"

	"github.com/ostafen/gptscan/internal/interval"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type Options struct {
	// SectorSize forces the logical sector size. Zero means detect it.
	SectorSize uint64
	// MaxPartitions caps the entries examined per table. Zero selects
	// DefaultMaxPartitions.
	MaxPartitions uint32
	// DetectIntersections enables the partition intersection heuristic.
	DetectIntersections bool
	// AllMatches keeps scanning after a detection.
	AllMatches bool
	// NewTracker builds the interval tracker used by the intersection
	// heuristic. Defaults to interval.New.
	NewTracker func() IntervalTracker
	Logger     *slog.Logger
}

// Scanner decodes the GPT of an image and feeds its partitions to a
// content scanner. A Scanner holds no per-image state and can be reused.
type Scanner struct {
	opts    Options
	content ContentScanner
}

func NewScanner(content ContentScanner, opts Options) *Scanner {
	if opts.MaxPartitions == 0 {
		opts.MaxPartitions = DefaultMaxPartitions
	}
	if opts.NewTracker == nil {
		opts.NewTracker = func() IntervalTracker { return interval.New() }
	}
	if opts.Logger == nil {
		opts.Logger = discardLogger
	}
	return &Scanner{opts: opts, content: content}
}

// run carries the state of a single Scan invocation.
type run struct {
	opts       *Options
	logger     *slog.Logger
	content    ContentScanner
	src        Source
	sectorSize uint64
	res        *Result
}

// detect records d and reports whether scanning must stop.
func (r *run) detect(d Detection) bool {
	r.res.Detections = append(r.res.Detections, d)
	r.logger.Info("detection",
		"name", d.Name,
		"table", d.Table.String(),
		"entries", d.Entries,
		"offset", d.Offset,
		"size", d.Length,
	)
	return !r.opts.AllMatches
}

// Layout is the decoded partitioning of an image.
type Layout struct {
	SectorSize uint64
	Resolution *Resolution
	Partitions []Partition
}

// Scan resolves the GPT headers of src and submits every valid partition
// to the content scanner.
//
// With DetectIntersections set, each selected table is first checked for
// entries claiming intersecting sectors. Unless AllMatches is set, the
// first detection ends the scan. A content scanner error always ends it.
func (s *Scanner) Scan(src Source) (*Result, error) {
	if src == nil || s.content == nil {
		return nil, ErrInvalidArgument
	}

	sectorSize, res, err := s.prepare(src)
	if err != nil {
		return nil, err
	}

	r := &run{
		opts:       &s.opts,
		logger:     s.opts.Logger,
		content:    s.content,
		src:        src,
		sectorSize: sectorSize,
		res:        &Result{SectorSize: sectorSize, State: res.State},
	}

	headers := res.Headers()
	r.res.DiskGUID = headers[0].DiskUUID()
	if s.opts.DetectIntersections {
		for _, hdr := range headers {
			stop, err := r.checkOverlaps(hdr)
			if err != nil {
				return nil, err
			}
			if stop {
				return r.res, nil
			}
		}
	}

	for _, hdr := range headers {
		stop, err := r.dispatchPartitions(hdr)
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}
	return r.res, nil
}

// List decodes the partitions of src without scanning their content.
func (s *Scanner) List(src Source) (*Layout, error) {
	if src == nil {
		return nil, ErrInvalidArgument
	}

	sectorSize, res, err := s.prepare(src)
	if err != nil {
		return nil, err
	}

	layout := &Layout{SectorSize: sectorSize, Resolution: res}
	for _, hdr := range res.Headers() {
		table := hdr.Table
		err := walkTable(src, hdr, sectorSize, s.opts.MaxPartitions, s.opts.Logger, func(idx int, e *Entry) (bool, error) {
			layout.Partitions = append(layout.Partitions, newPartition(table, idx, e, sectorSize))
			return false, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return layout, nil
}

func (s *Scanner) prepare(src Source) (uint64, *Resolution, error) {
	logger := s.opts.Logger

	if src.Len() == 0 {
		return 0, nil, ErrInvalidArgument
	}

	sectorSize := s.opts.SectorSize
	if sectorSize == 0 {
		var err error
		if sectorSize, err = DetectSectorSize(src); err != nil {
			return 0, nil, err
		}
		logger.Debug("detected sector size", "sector_size", sectorSize)
	} else if !ValidSectorSize(sectorSize) {
		return 0, nil, ErrInvalidArgument
	}

	if size := src.Len(); size%sectorSize != 0 {
		return 0, nil, formatErr(CheckImageSize, "image size %d is not a multiple of sector size %d", size, sectorSize)
	}

	res, err := ResolveHeaders(src, sectorSize, logger)
	if err != nil {
		return 0, nil, err
	}

	for _, hdr := range res.Headers() {
		logger.Debug("gpt header", "table", hdr.Table.String(), "header", hdr.String())
	}
	return sectorSize, res, nil
}
