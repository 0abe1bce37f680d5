//go:build linux
// +build linux

package fuse

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
)

// PartitionFS is a read-only directory holding one file per partition.
type PartitionFS struct {
	r io.ReaderAt

	mtx     sync.RWMutex
	entries map[string]FileEntry

	mountTime time.Time
}

func (pfs *PartitionFS) Root() (fs.Node, error) {
	return &Dir{
		fs: pfs,
	}, nil
}

// Dir implements both fs.Node and fs.HandleReadDirAller
type Dir struct {
	fs *PartitionFS
}

func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0555
	a.Mtime = d.fs.mountTime
	return nil
}

func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	if e, ok := d.fs.entries[name]; ok {
		return File{
			r:     io.NewSectionReader(d.fs.r, int64(e.Offset), int64(e.Size)),
			size:  e.Size,
			mtime: d.fs.mountTime,
		}, nil
	}
	return nil, fuse.ENOENT
}

func (d Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.fs.mtx.RLock()
	defer d.fs.mtx.RUnlock()

	names := sortedNames(d.fs.entries)
	dirEntries := make([]fuse.Dirent, len(names))
	for i, name := range names {
		dirEntries[i] = fuse.Dirent{
			Inode: uint64(i + 2),
			Name:  name,
			Type:  fuse.DT_File,
		}
	}
	return dirEntries, nil
}

// File implements both fs.Node and fs.HandleReader
type File struct {
	r     io.ReaderAt
	size  uint64
	mtime time.Time
}

func (f File) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Mode = 0444
	a.Size = f.size
	a.Mtime = f.mtime
	return nil
}

func (f File) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	size := int(req.Size)
	offset := req.Offset

	if offset >= int64(f.size) {
		// Trying to read past EOF
		resp.Data = []byte{}
		return nil
	}

	// Clamp size if reading near EOF
	if offset+int64(size) > int64(f.size) {
		size = int(int64(f.size) - offset)
	}

	buf := make([]byte, size)

	n, err := f.r.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return err
	}

	resp.Data = buf[:n]
	return nil
}
