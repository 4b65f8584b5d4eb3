package fatfs

import (
	"io/fs"
	"os"
	"time"
)

// Attribute bits of the on-disk attribute byte.
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrVolumeID  = 0x08
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrLFN       = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeID
)

// Stat is the logical directory-entry record exposed to callers. It
// implements os.FileInfo so it can back both the afero adapter and
// fs.FileInfo-style consumers; the FUSE adapter additionally maps it
// onto a fuse.Attr.
type Stat struct {
	name     string
	cluster  uint32
	isDir    bool
	readOnly bool
	size     int64

	modTime    time.Time
	accessTime time.Time
	createTime time.Time
}

// Cluster is the inode identity: the entry's start cluster number. It is
// unique per live entry and may be reused after deletion.
func (s Stat) Cluster() uint32 { return s.cluster }

// Name implements os.FileInfo.
func (s Stat) Name() string { return s.name }

// Size implements os.FileInfo.
func (s Stat) Size() int64 { return s.size }

// IsDir implements os.FileInfo.
func (s Stat) IsDir() bool { return s.isDir }

// ModTime implements os.FileInfo.
func (s Stat) ModTime() time.Time { return s.modTime }

// AccessTime is the decoded last-access timestamp.
func (s Stat) AccessTime() time.Time { return s.accessTime }

// CreateTime is the decoded creation timestamp.
func (s Stat) CreateTime() time.Time { return s.createTime }

// ReadOnly reports whether the read-only attribute bit is set.
func (s Stat) ReadOnly() bool { return s.readOnly }

// Mode implements os.FileInfo. A clear read-only bit grants full rwx to
// owner/group/other; a set bit restricts every class to read-only.
func (s Stat) Mode() fs.FileMode {
	var perm fs.FileMode
	if s.readOnly {
		perm = 0444
	} else {
		perm = 0777
	}
	if s.isDir {
		return fs.ModeDir | perm
	}
	return perm
}

// Sys implements os.FileInfo; it returns the Stat itself so callers that
// know the concrete type can recover FAT-specific fields.
func (s Stat) Sys() interface{} { return s }

var _ os.FileInfo = Stat{}

// NewSyntheticStat builds a Stat for an entry that has no backing
// on-disk directory record, such as the debug pseudo-directory's files.
// cluster should be a value outside the real 28-bit cluster range so it
// cannot collide with a live FAT32 entry's inode identity.
func NewSyntheticStat(name string, cluster uint32, isDir bool, size int64, modTime time.Time) Stat {
	return Stat{
		name:       name,
		cluster:    cluster,
		isDir:      isDir,
		size:       size,
		modTime:    modTime,
		accessTime: modTime,
		createTime: modTime,
	}
}

// LinkCount is always 1: FAT has no hardlink concept.
const LinkCount = 1
