package scan

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ostafen/gptscan/internal/gpt"
	fmtutil "github.com/ostafen/gptscan/pkg/util/format"
)

// List decodes the partition table of the image at filePath without
// scanning partition content.
func List(filePath string, opts gpt.Options) (*gpt.Layout, error) {
	img, err := OpenImage(filePath)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	layout, err := gpt.NewScanner(nil, opts).List(img)
	if err != nil {
		return nil, fmt.Errorf("failed to read partition table of %s: %w", filePath, err)
	}
	return layout, nil
}

// PrintLayout writes the header state followed by one row per partition.
func PrintLayout(out io.Writer, layout *gpt.Layout) error {
	res := layout.Resolution

	fmt.Fprintf(out, "[INFO] Partition table: \t%s\n", res.State)
	fmt.Fprintf(out, "[INFO] Sector size: \t%d\n", layout.SectorSize)
	if hdrs := res.Headers(); len(hdrs) > 0 {
		fmt.Fprintf(out, "[INFO] Disk GUID: \t%s\n", hdrs[0].DiskUUID())
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tINDEX\tFIRST LBA\tLAST LBA\tSIZE\tTYPE GUID\tNAME")
	for _, p := range layout.Partitions {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			p.Table,
			p.Num,
			p.FirstLBA,
			p.LastLBA,
			fmtutil.FormatBytes(int64(p.Size)),
			p.TypeGUID,
			p.Name,
		)
	}
	return w.Flush()
}
