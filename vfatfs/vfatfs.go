// Package vfatfs adapts package fatfs's Operations onto afero.Fs, the
// same seam the teacher uses to expose its FAT implementation to
// generic Go filesystem consumers (afero.Walk, os.FileInfo-based
// tooling) without depending on the FUSE transport.
package vfatfs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-vfat/vfat32/errtrace"
	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/volume"

	"github.com/spf13/afero"
)

// ErrNotSupported is returned by every mutating afero.Fs method: the
// volume is always opened read-only.
var ErrNotSupported = volume.ErrNotSupported

// Fs wraps a *fatfs.Operations to satisfy afero.Fs. Every mutating
// method panics-free and instead returns ErrNotSupported.
type Fs struct {
	ops *fatfs.Operations
}

// New builds a read-only afero.Fs backed by dev, opening and validating
// the FAT32 volume as part of construction.
func New(dev volume.Device) (*Fs, error) {
	vol, err := volume.Open(dev)
	if err != nil {
		return nil, err
	}
	return &Fs{ops: fatfs.NewOperations(vol)}, nil
}

// NewFromOperations wraps an already-constructed Operations surface,
// letting callers share one volume.Volume between the afero adapter and
// the FUSE adapter, or attach a DebugDelegate first.
func NewFromOperations(ops *fatfs.Operations) *Fs {
	return &Fs{ops: ops}
}

func toSlashPath(name string) string {
	name = filepath.ToSlash(name)
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// Name implements afero.Fs.
func (f *Fs) Name() string { return "vfat32" }

// Open implements afero.Fs.
func (f *Fs) Open(name string) (afero.File, error) {
	path := toSlashPath(name)
	stat, err := f.ops.Getattr(path)
	if err != nil {
		return nil, err
	}
	return &File{fs: f, path: path, stat: stat}, nil
}

// OpenFile implements afero.Fs. Any flag beyond O_RDONLY is rejected.
func (f *Fs) OpenFile(name string, flag int, _ os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_TRUNC) != 0 {
		return nil, errtrace.From(ErrNotSupported)
	}
	return f.Open(name)
}

// Stat implements afero.Fs.
func (f *Fs) Stat(name string) (os.FileInfo, error) {
	stat, err := f.ops.Getattr(toSlashPath(name))
	if err != nil {
		return nil, err
	}
	return stat, nil
}

// Create implements afero.Fs.
func (f *Fs) Create(string) (afero.File, error) { return nil, errtrace.From(ErrNotSupported) }

// Mkdir implements afero.Fs.
func (f *Fs) Mkdir(string, os.FileMode) error { return errtrace.From(ErrNotSupported) }

// MkdirAll implements afero.Fs.
func (f *Fs) MkdirAll(string, os.FileMode) error { return errtrace.From(ErrNotSupported) }

// Remove implements afero.Fs.
func (f *Fs) Remove(string) error { return errtrace.From(ErrNotSupported) }

// RemoveAll implements afero.Fs.
func (f *Fs) RemoveAll(string) error { return errtrace.From(ErrNotSupported) }

// Rename implements afero.Fs.
func (f *Fs) Rename(string, string) error { return errtrace.From(ErrNotSupported) }

// Chmod implements afero.Fs.
func (f *Fs) Chmod(string, os.FileMode) error { return errtrace.From(ErrNotSupported) }

// Chown implements afero.Fs.
func (f *Fs) Chown(string, int, int) error { return errtrace.From(ErrNotSupported) }

// Chtimes implements afero.Fs.
func (f *Fs) Chtimes(string, time.Time, time.Time) error { return errtrace.From(ErrNotSupported) }

var _ afero.Fs = (*Fs)(nil)

// File implements afero.File over a resolved fatfs.Stat, reading
// through the shared Operations surface at the current offset.
type File struct {
	fs     *Fs
	path   string
	stat   fatfs.Stat
	offset int64

	dirEntries []fatfs.Entry
	dirRead    bool
}

// Name implements afero.File.
func (file *File) Name() string { return file.stat.Name() }

// Stat implements afero.File.
func (file *File) Stat() (os.FileInfo, error) { return file.stat, nil }

// Read implements afero.File.
func (file *File) Read(p []byte) (int, error) {
	n, err := file.ReadAt(p, file.offset)
	file.offset += int64(n)
	return n, err
}

// ReadAt implements afero.File. Reading past EOF returns (0, io.EOF)
// to satisfy the io.ReaderAt contract afero callers expect.
func (file *File) ReadAt(p []byte, off int64) (int, error) {
	if file.stat.IsDir() {
		return 0, errtrace.From(volume.ErrNotDir)
	}
	n, err := file.fs.ops.Read(file.path, p, off)
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Seek implements afero.File.
func (file *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case os.SEEK_SET:
		file.offset = offset
	case os.SEEK_CUR:
		file.offset += offset
	case os.SEEK_END:
		file.offset = file.stat.Size() + offset
	}
	return file.offset, nil
}

// Readdir implements afero.File.
func (file *File) Readdir(count int) ([]os.FileInfo, error) {
	if !file.dirRead {
		entries, err := file.fs.ops.Readdir(file.path)
		if err != nil {
			return nil, err
		}
		file.dirEntries = entries
		file.dirRead = true
	}

	if count <= 0 {
		out := make([]os.FileInfo, len(file.dirEntries))
		for i, e := range file.dirEntries {
			out[i] = e.Stat
		}
		file.dirEntries = nil
		return out, nil
	}

	n := count
	if n > len(file.dirEntries) {
		n = len(file.dirEntries)
	}
	out := make([]os.FileInfo, n)
	for i := 0; i < n; i++ {
		out[i] = file.dirEntries[i].Stat
	}
	file.dirEntries = file.dirEntries[n:]

	var err error
	if n == 0 {
		err = io.EOF
	}
	return out, err
}

// Readdirnames implements afero.File.
func (file *File) Readdirnames(n int) ([]string, error) {
	infos, err := file.Readdir(n)
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, err
}

// Close implements afero.File.
func (file *File) Close() error { return nil }

// Sync implements afero.File.
func (file *File) Sync() error { return nil }

// Truncate implements afero.File.
func (file *File) Truncate(int64) error { return errtrace.From(ErrNotSupported) }

// Write implements afero.File.
func (file *File) Write([]byte) (int, error) { return 0, errtrace.From(ErrNotSupported) }

// WriteAt implements afero.File.
func (file *File) WriteAt([]byte, int64) (int, error) { return 0, errtrace.From(ErrNotSupported) }

// WriteString implements afero.File.
func (file *File) WriteString(string) (int, error) { return 0, errtrace.From(ErrNotSupported) }

var _ afero.File = (*File)(nil)

var _ fs.FileInfo = fatfs.Stat{}
