// Package fatfs implements the FAT32 directory-entry decoder, name
// handling, path resolver, and byte-range reader on top of package
// volume's boot-sector and FAT-walking primitives.
package fatfs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-vfat/vfat32/errtrace"
	"github.com/go-vfat/vfat32/volume"
)

// DebugXattrName is the only extended attribute Operations.Getxattr
// recognizes directly: the decimal start cluster of the resolved entry.
const DebugXattrName = "debug.cluster"

// debugPathPrefix is the reserved prefix delegated to an external
// collaborator. The core never synthesizes entries under it.
const debugPathPrefix = "/.debug"

// DebugDelegate handles paths under debugPathPrefix. The core consults
// it (if set) before falling back to NOT_FOUND: if the delegate
// declines, getattr on a path under the prefix returns NOT_FOUND.
type DebugDelegate interface {
	Getattr(path string) (Stat, bool)
	ReadDir(path string) ([]Entry, bool)
	Read(path string, buf []byte, offset int64) (n int, ok bool, err error)
}

// Operations is the public surface exposed to the mount and listing
// commands: getattr, readdir, read, and getxattr, implemented in terms
// of the path resolver, directory stream decoder, and byte-range reader
// above.
type Operations struct {
	Volume    *volume.Volume
	MountTime time.Time
	UID       uint32
	GID       uint32
	Debug     DebugDelegate
}

// NewOperations builds an Operations surface over vol, stamping
// MountTime and the process-wide owner/group the stat records expose.
func NewOperations(vol *volume.Volume) *Operations {
	return &Operations{
		Volume:    vol,
		MountTime: time.Now(),
		UID:       uint32(os.Getuid()),
		GID:       uint32(os.Getgid()),
	}
}

func (o *Operations) isDebugPath(path string) bool {
	return path == debugPathPrefix || strings.HasPrefix(path, debugPathPrefix+"/")
}

// Getattr resolves path to a Stat.
func (o *Operations) Getattr(path string) (Stat, error) {
	if o.isDebugPath(path) {
		if o.Debug != nil {
			if stat, ok := o.Debug.Getattr(path); ok {
				return stat, nil
			}
		}
		return Stat{}, errtrace.From(volume.ErrNotFound)
	}
	return Resolve(o.Volume, path, o.MountTime)
}

// Readdir resolves path to a directory and decodes its entries.
func (o *Operations) Readdir(path string) ([]Entry, error) {
	if o.isDebugPath(path) {
		if o.Debug != nil {
			if entries, ok := o.Debug.ReadDir(path); ok {
				return entries, nil
			}
		}
		return nil, errtrace.From(volume.ErrNotFound)
	}

	stat, err := Resolve(o.Volume, path, o.MountTime)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, errtrace.From(volume.ErrNotDir)
	}
	return ReadDir(o.Volume, stat.Cluster(), o.MountTime)
}

// Read resolves path to a regular file and delegates to ReadFile.
func (o *Operations) Read(path string, buf []byte, offset int64) (int, error) {
	if o.isDebugPath(path) {
		if o.Debug != nil {
			if n, ok, err := o.Debug.Read(path, buf, offset); ok {
				return n, err
			}
		}
		return 0, errtrace.From(volume.ErrNotFound)
	}

	stat, err := Resolve(o.Volume, path, o.MountTime)
	if err != nil {
		return 0, err
	}
	if stat.IsDir() {
		return 0, errtrace.From(volume.ErrNotDir)
	}
	return ReadFile(o.Volume, stat.Cluster(), stat.Size(), offset, buf)
}

// Getxattr returns the decimal start cluster of the entry at path when
// name is DebugXattrName; any other name fails with NO_DATA.
func (o *Operations) Getxattr(path, name string) ([]byte, error) {
	if name != DebugXattrName {
		return nil, errtrace.From(volume.ErrNoData)
	}

	stat, err := o.Getattr(path)
	if err != nil {
		return nil, err
	}
	return []byte(strconv.FormatUint(uint64(stat.Cluster()), 10)), nil
}
