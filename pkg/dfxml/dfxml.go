package dfxml

import (
	"encoding/xml"
	"os"
	"os/user"
	"runtime"
	"strconv"
	"time"

	"github.com/ostafen/gptscan/pkg/sysinfo"
)

const XmlOutputVersion = "1.0"

var DefaultMetadata = Metadata{
	Xmlns:    "http://www.forensicswiki.org/wiki/Category:Digital_Forensics_XML",
	XmlnsXsi: "http://www.w3.org/2001/XMLSchema-instance",
	XmlnsDC:  "http://purl.org/dc/elements/1.1/",
	Type:     "Partition Scan Report",
}

// DFXMLHeader represents the root element of a DFXML document.
type DFXMLHeader struct {
	XMLName   xml.Name `xml:"dfxml"`                           // Specifies the XML element name as "dfxml".
	XmlOutput string   `xml:"xmloutputversion,attr,omitempty"` // The version of the DFXML XML schema, an attribute. "omitempty" means it will be omitted if empty.
	Metadata  Metadata `xml:"metadata"`                        // Contains metadata about the DFXML document.
	Creator   Creator  `xml:"creator"`                         // Describes the software that created the DFXML.
	Source    Source   `xml:"source"`                          // Describes the source of the forensic image.
}

// Metadata contains various metadata attributes for the DFXML document.
type Metadata struct {
	Xmlns    string `xml:"xmlns,attr"`     // XML Namespace for the DFXML schema.
	XmlnsXsi string `xml:"xmlns:xsi,attr"` // XML Namespace for XML Schema Instance.
	XmlnsDC  string `xml:"xmlns:dc,attr"`  // XML Namespace for Dublin Core.
	Type     string `xml:"dc:type"`        // The type of the DFXML document, e.g., "forensic_disk_image".
}

// Creator describes the software and environment used to generate the DFXML.
type Creator struct {
	Package              string  `xml:"package"`               // The name of the software package.
	Version              string  `xml:"version"`               // The version of the software package.
	ExecutionEnvironment ExecEnv `xml:"execution_environment"` // Details about the execution environment.
}

// ExecEnv provides information about the operating system and host where the DFXML was created.
type ExecEnv struct {
	OS      string `xml:"os_sysname"` // Operating system name (e.g., "Linux", "Windows").
	Release string `xml:"os_release"` // Operating system release version.
	Version string `xml:"os_version"` // Operating system kernel version.
	Host    string `xml:"host"`       // Hostname of the machine.
	Arch    string `xml:"arch"`       // Architecture of the machine (e.g., "x86_64").
	UID     int    `xml:"uid"`        // User ID under which the process ran.
	Start   string `xml:"start_time"` // Start time of the DFXML generation.
}

// Source describes the scanned image.
type Source struct {
	ImageFilename string `xml:"image_filename"`
	SectorSize    int    `xml:"sectorsize"`
	ImageSize     uint64 `xml:"image_size"`
	// PartitionTable names the header copies the partitions were read from.
	PartitionTable string `xml:"partition_table,omitempty"`
	DiskGUID       string `xml:"disk_guid,omitempty"`
}

// Volume is a partition of the scanned image.
type Volume struct {
	XMLName         xml.Name `xml:"volume"`
	Offset          uint64   `xml:"offset,attr"`
	PartitionIndex  int      `xml:"partition_index"`
	PartitionTable  string   `xml:"partition_table"`
	PartitionOffset uint64   `xml:"partition_offset"`
	BlockSize       uint32   `xml:"block_size"`
	PartitionName   string   `xml:"partition_name,omitempty"`
	TypeGUID        string   `xml:"ftype_guid"`
	PartitionGUID   string   `xml:"partition_guid"`
	ByteRuns        ByteRuns `xml:"byte_runs"`
}

// Detection is a finding reported by the scan.
type Detection struct {
	XMLName xml.Name `xml:"detection"`
	Name    string   `xml:"name,attr"`
	Kind    string   `xml:"kind,attr"`
	Table   string   `xml:"partition_table"`
	Entries []int    `xml:"partition_index"`
	Offset  uint64   `xml:"img_offset"`
	Length  uint64   `xml:"len"`
}

// ByteRuns is a collection of ByteRun entries.
type ByteRuns struct {
	Runs []ByteRun `xml:"byte_run"`
}

// ByteRun describes a contiguous block of data within the image.
type ByteRun struct {
	Offset    uint64 `xml:"offset,attr"`
	ImgOffset uint64 `xml:"img_offset,attr"`
	Length    uint64 `xml:"len,attr"`
}

// GetExecEnv retrieves runtime information to populate the ExecEnv struct.
func GetExecEnv() ExecEnv {
	sinfo, err := sysinfo.Stat()
	if err != nil {
		sinfo = &sysinfo.SysUnknown
	}

	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if u, err := user.Current(); err == nil {
		if n, err := strconv.Atoi(u.Uid); err == nil {
			uid = n
		}
	}

	return ExecEnv{
		OS:      sinfo.Name,
		Release: sinfo.Release,
		Version: sinfo.Version,
		Host:    host,
		Arch:    runtime.GOARCH,
		UID:     uid,
		Start:   time.Now().UTC().Format(time.RFC3339),
	}
}
