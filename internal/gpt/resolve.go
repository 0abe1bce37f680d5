package gpt

import (
	"errors"
	"log/slog"
)

// State tells which header copies are authoritative for a scan.
type State int

const (
	Invalid State = iota
	PrimaryOnly
	SecondaryOnly
	Both
)

func (s State) String() string {
	switch s {
	case Invalid:
		return "invalid"
	case PrimaryOnly:
		return "primary"
	case SecondaryOnly:
		return "secondary"
	case Both:
		return "primary+secondary"
	default:
		return "unknown"
	}
}

// NextState is the header recovery policy.
//
// A valid primary is always used. When the secondary is also valid but
// describes a table with a different checksum, either copy may be the
// authoritative one and both tables are scanned. A valid secondary alone
// replaces a damaged primary. tableCRCEqual is only meaningful when both
// headers are valid.
func NextState(primaryValid, secondaryValid, tableCRCEqual bool) State {
	switch {
	case primaryValid && secondaryValid && !tableCRCEqual:
		return Both
	case primaryValid:
		return PrimaryOnly
	case secondaryValid:
		return SecondaryOnly
	default:
		return Invalid
	}
}

// Resolution is the outcome of header reconciliation.
type Resolution struct {
	State     State
	Primary   *Header
	Secondary *Header
}

// Headers returns the headers whose tables must be examined, in order.
func (r *Resolution) Headers() []*Header {
	switch r.State {
	case PrimaryOnly:
		return []*Header{r.Primary}
	case SecondaryOnly:
		return []*Header{r.Secondary}
	case Both:
		return []*Header{r.Primary, r.Secondary}
	default:
		return nil
	}
}

// ResolveHeaders reads and validates the primary header at LBA 1 and the
// secondary header in the last sector of the image, then picks which of
// them to trust. If neither is usable the image is rejected.
func ResolveHeaders(src Source, sectorSize uint64, logger *slog.Logger) (*Resolution, error) {
	if logger == nil {
		logger = discardLogger
	}
	imageLen := src.Len()
	if imageLen < sectorSize {
		return nil, formatErr(CheckDiskUnusable, "image of %d bytes is smaller than one sector", imageLen)
	}

	res := &Resolution{}

	primary, perr := loadHeader(src, PrimaryHeaderLBA*sectorSize, sectorSize, PrimaryTable)
	if perr != nil {
		logger.Debug("primary header is invalid", "err", perr)
	} else {
		res.Primary = primary
	}

	// The secondary is always looked at when the primary is usable, to
	// detect tables that disagree.
	secondary, serr := loadHeader(src, imageLen-sectorSize, sectorSize, SecondaryTable)
	if serr != nil {
		logger.Debug("secondary header is invalid", "err", serr)
	} else {
		res.Secondary = secondary
	}

	crcEqual := primary != nil && secondary != nil && primary.TableCRC32 == secondary.TableCRC32
	res.State = NextState(perr == nil, serr == nil, crcEqual)

	switch res.State {
	case Invalid:
		return nil, &FormatError{Check: CheckDiskUnusable, Err: errors.Join(perr, serr)}
	case Both:
		logger.Info("primary and secondary table checksums differ, scanning both tables",
			"primary_crc", primary.TableCRC32,
			"secondary_crc", secondary.TableCRC32,
		)
	case SecondaryOnly:
		logger.Info("using secondary header", "primary_err", perr)
	case PrimaryOnly:
		logger.Debug("using primary header", "secondary_ok", serr == nil)
	}
	return res, nil
}

func loadHeader(src Source, off, sectorSize uint64, table Table) (*Header, error) {
	hdr, err := DecodeHeader(src, off)
	if err != nil {
		return nil, err
	}
	hdr.Table = table
	if err := ValidateHeader(src, hdr, sectorSize); err != nil {
		return nil, err
	}
	return hdr, nil
}
