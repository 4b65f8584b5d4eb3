package volume

import "errors"

// Sentinel errors forming the taxonomy a caller can match with errors.Is.
// Every failure the core reports wraps exactly one of these via errtrace.
var (
	// ErrIO marks a device read that failed or returned short.
	ErrIO = errors.New("device I/O error")

	// ErrNotFAT32 marks a boot sector that failed FAT32 validation.
	ErrNotFAT32 = errors.New("volume is not FAT32")

	// ErrCorruptFAT marks disagreement between the primary and backup FAT
	// at a queried entry, or a FAT entry 0 whose low byte does not match
	// the boot sector's media descriptor.
	ErrCorruptFAT = errors.New("primary and backup FAT disagree")

	// ErrCorruptChain marks a cluster chain that ended before a file's
	// declared size was read, or that starts at cluster 0 or a bad
	// cluster.
	ErrCorruptChain = errors.New("cluster chain is truncated or invalid")

	// ErrCorruptName marks a directory entry whose 8.3 name contains a
	// reserved byte, or an LFN run whose checksum matches no plausible
	// short entry.
	ErrCorruptName = errors.New("directory entry name is invalid")

	// ErrNotFound marks a path resolution that could not locate a
	// component.
	ErrNotFound = errors.New("path not found")

	// ErrNotDir marks a non-terminal path component that resolved to a
	// non-directory.
	ErrNotDir = errors.New("not a directory")

	// ErrNoData marks an unknown extended-attribute name.
	ErrNoData = errors.New("no such extended attribute")

	// ErrRange marks a caller-supplied buffer too small for a debug
	// xattr value.
	ErrRange = errors.New("buffer too small")

	// ErrNotSupported marks an attempt to mutate a read-only volume.
	ErrNotSupported = errors.New("operation not supported on a read-only volume")
)
