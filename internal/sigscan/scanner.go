package sigscan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ostafen/gptscan/internal/gpt"
	"github.com/ostafen/gptscan/pkg/reader"
)

const DefaultBufferSize = 1024 * 1024

type Options struct {
	BufferSize int
	Logger     *slog.Logger
	// OnProgress is called with the number of bytes consumed after each
	// buffer has been searched.
	OnProgress func(n uint64)
}

// Match locates a signature inside the image.
type Match struct {
	Signature Signature
	Offset    uint64
}

// Scanner searches byte ranges of an image for known signatures.
// It is not safe for concurrent use.
type Scanner struct {
	src        io.ReaderAt
	set        *Set
	br         *reader.BufferedReadSeeker
	logger     *slog.Logger
	onProgress func(uint64)
}

func New(src io.ReaderAt, set *Set, opts Options) *Scanner {
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	// A pattern straddling two buffers must fit in the carried over tail.
	bufSize = max(bufSize, 2*set.MaxLen())

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Scanner{
		src:        src,
		set:        set,
		br:         reader.NewBufferedReadSeeker(nil, bufSize),
		logger:     logger,
		onProgress: opts.OnProgress,
	}
}

// ScanRange reports the first signature found in [off, off+length).
func (s *Scanner) ScanRange(off, length uint64, hint gpt.TypeHint) (gpt.Verdict, error) {
	m, found, err := s.Find(off, length)
	if err != nil {
		return gpt.Clean, err
	}
	if !found {
		return gpt.Clean, nil
	}

	s.logger.Info("signature matched",
		"name", m.Signature.Name,
		"offset", m.Offset,
		"range_offset", off,
		"range_size", length,
	)
	return gpt.Detected(m.Signature.Name), nil
}

// Find returns the first match inside [off, off+length).
func (s *Scanner) Find(off, length uint64) (Match, bool, error) {
	if s.set.Len() == 0 || length == 0 {
		s.progress(length)
		return Match{}, false, nil
	}

	window := s.set.MaxLen()
	s.br.Reset(io.NewSectionReader(s.src, int64(off), int64(length)))

	var pos uint64
	for {
		data, err := s.br.Peek(s.br.BufferSize())
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return Match{}, false, fmt.Errorf("failed to read at offset %d: %w", off+pos, err)
		}

		// Positions in the tail are searched again with the next buffer,
		// once the whole window is available.
		limit := len(data)
		if !eof {
			limit -= window - 1
		}

		for i := 0; i < limit; i++ {
			if sig, ok := s.set.Match(data[i:]); ok {
				s.progress(uint64(i))
				return Match{Signature: sig, Offset: off + pos + uint64(i)}, true, nil
			}
		}

		s.progress(uint64(limit))
		if eof {
			return Match{}, false, nil
		}

		if _, err := s.br.Discard(limit); err != nil {
			return Match{}, false, err
		}
		pos += uint64(limit)
	}
}

func (s *Scanner) progress(n uint64) {
	if s.onProgress != nil && n > 0 {
		s.onProgress(n)
	}
}
