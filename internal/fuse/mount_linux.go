//go:build linux
// +build linux

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
package fuse

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
	"github.com/ostafen/gptscan/internal/gpt"
	osutil "github.com/ostafen/gptscan/pkg/util/os"
)

// Mount exposes every partition as a read-only file under mountpoint and
// serves requests until the process is interrupted.
func Mount(mountpoint string, r io.ReaderAt, parts []gpt.Partition) error {
	created, err := osutil.EnsureDir(mountpoint, true)
	if err != nil {
		return err
	}
	if created {
		defer os.Remove(mountpoint)
	}

	c, err := fuse.Mount(mountpoint, fuse.ReadOnly(), fuse.FSName("gptscan"), fuse.Subtype("gptscan"))
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", mountpoint, err)
	}
	defer c.Close()

	pfs := &PartitionFS{
		r:         r,
		entries:   BuildEntries(parts),
		mountTime: time.Now(),
	}

	fmt.Printf("[INFO] Mounted %d partitions at %s\n", len(pfs.entries), mountpoint)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- fusefs.New(c, nil).Serve(pfs)
	}()
	return waitForUmount(mountpoint, serveErr)
}

func waitForUmount(mountpoint string, serveErr <-chan error) error {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigc)

	fmt.Println("[INFO] Waiting for termination signal...")

	const maxUnmountRetries = 3

	unmountAttempts := 0
	for {
		select {
		case err := <-serveErr:
			if err != nil {
				return fmt.Errorf("fuse server stopped: %w", err)
			}
			return nil
		case sig := <-sigc:
			fmt.Printf("[INFO] Signal received: %v.\n", sig)

			fmt.Printf("[INFO] Attempting unmount of %s (attempt %d/%d)...\n", mountpoint, unmountAttempts+1, maxUnmountRetries)
			err := fuse.Unmount(mountpoint)
			if err == nil {
				fmt.Println("[INFO] Unmounted successfully, exiting.")
				return nil
			}

			unmountAttempts++
			if unmountAttempts >= maxUnmountRetries {
				return fmt.Errorf("unable to unmount %s after %d attempts: %w", mountpoint, maxUnmountRetries, err)
			}
			fmt.Printf("[WARN] Unmount failed: %v. Remaining retries: %d. Waiting for another signal to retry...\n", err, maxUnmountRetries-unmountAttempts)
		}
	}
}
