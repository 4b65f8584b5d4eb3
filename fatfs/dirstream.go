package fatfs

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/dsoprea/go-logging"
	"github.com/hashicorp/go-multierror"

	"github.com/go-vfat/vfat32/errtrace"
	"github.com/go-vfat/vfat32/volume"
)

const direntSize = 32

// rawShortEntry is the field-by-field decode of a 32-byte short
// directory entry. Fields are read explicitly rather than overlaid onto
// a struct: FAT32's on-disk layout is packed and platform-endian
// assumptions about struct layout do not hold portably.
type rawShortEntry struct {
	name         [11]byte
	attr         byte
	createDate   uint16
	createTime   uint16
	accessDate   uint16
	clusterHi    uint16
	writeTime    uint16
	writeDate    uint16
	clusterLo    uint16
	size         uint32
}

func parseShortEntry(raw []byte) rawShortEntry {
	var e rawShortEntry
	copy(e.name[:], raw[0:11])
	e.attr = raw[11]
	e.createTime = binary.LittleEndian.Uint16(raw[14:])
	e.createDate = binary.LittleEndian.Uint16(raw[16:])
	e.accessDate = binary.LittleEndian.Uint16(raw[18:])
	e.clusterHi = binary.LittleEndian.Uint16(raw[20:])
	e.writeTime = binary.LittleEndian.Uint16(raw[22:])
	e.writeDate = binary.LittleEndian.Uint16(raw[24:])
	e.clusterLo = binary.LittleEndian.Uint16(raw[26:])
	e.size = binary.LittleEndian.Uint32(raw[28:])
	return e
}

func (e rawShortEntry) startCluster() uint32 {
	return uint32(e.clusterHi)<<16 | uint32(e.clusterLo)
}

func (e rawShortEntry) isDir() bool {
	return e.attr&AttrDirectory != 0
}

// Entry pairs a decoded name with its logical Stat, the unit the
// directory stream decoder and ReadDir emit.
type Entry struct {
	Name string
	Stat Stat
}

// VisitFunc is called once per decoded directory entry, in on-disk
// order. Returning true stops the stream early (used by the path
// resolver, to halt as soon as the wanted component is
// found).
type VisitFunc func(name string, stat Stat) (stop bool)

// streamDir walks the cluster chain starting at startCluster, decoding
// 32-byte slots, and calls visit for every live entry in
// on-disk order. A short entry whose LFN run does not match its checksum
// is emitted under its 8.3 name. Entries with an invalid short name are
// skipped and collected in a multierror that is logged, not returned,
// when the stream ends; they do not abort the stream.
func streamDir(vol *volume.Volume, startCluster uint32, mountTime time.Time, visit VisitFunc) error {
	var warnings *multierror.Error

	assembler := &lfnAssembler{}
	cluster := startCluster

	for {
		data, err := volume.ReadAt(vol.Device, vol.Geometry.ClusterOffset(cluster), int(vol.Geometry.ClusterSize))
		if err != nil {
			return err
		}

		for off := 0; off+direntSize <= len(data); off += direntSize {
			slot := data[off : off+direntSize]

			switch slot[0] {
			case 0x00:
				return logWarnings(warnings)
			case 0xE5:
				assembler.reset()
				continue
			}

			if slot[0] == 0x2E {
				name := "."
				if slot[1] == 0x2E {
					name = ".."
				}
				entry := parseShortEntry(slot)
				stat := statFromEntry(name, entry, mountTime)
				assembler.reset()
				if visit(name, stat) {
					return logWarnings(warnings)
				}
				continue
			}

			attr := slot[11]
			if attr&AttrLFN == AttrLFN {
				assembler.feed(parseLFNSlot(slot))
				continue
			}

			if attr&AttrVolumeID != 0 {
				assembler.reset()
				continue
			}

			entry := parseShortEntry(slot)
			var nameRaw [11]byte
			copy(nameRaw[:], slot[0:11])
			cksum := checksumShortName(nameRaw)
			if nameRaw[0] == 0x05 {
				nameRaw[0] = 0xE5
			}

			name, err := resolveEntryName(assembler, cksum, nameRaw)
			assembler.reset()
			if err != nil {
				warnings = multierror.Append(warnings, err)
				continue
			}

			stat := statFromEntry(name, entry, mountTime)
			if visit(name, stat) {
				return logWarnings(warnings)
			}
		}

		next, err := vol.Walker.Next(cluster)
		if err != nil {
			return err
		}
		switch next.Kind {
		case volume.KindCluster:
			cluster = next.Cluster
		case volume.KindEndOfChain:
			return logWarnings(warnings)
		default:
			return errtrace.Wrap(fmt.Errorf("directory chain from cluster %d hit a non-EOC terminal entry", startCluster), volume.ErrCorruptChain)
		}
	}
}

// resolveEntryName picks the long name if the assembler holds a
// checksum-matching completed run, falling back to the
// 8.3 short name otherwise (including when UTF-16 conversion fails).
func resolveEntryName(assembler *lfnAssembler, cksum byte, nameRaw [11]byte) (string, error) {
	if assembler.ready(cksum) {
		if name, err := assembler.name(); err == nil {
			return name, nil
		}
	}
	return decodeShortName(nameRaw)
}

func statFromEntry(name string, e rawShortEntry, mountTime time.Time) Stat {
	return Stat{
		name:       name,
		cluster:    e.startCluster(),
		isDir:      e.isDir(),
		readOnly:   e.attr&AttrReadOnly != 0,
		size:       int64(e.size),
		modTime:    decodeTimestamp(e.writeDate, e.writeTime, mountTime),
		accessTime: decodeTimestamp(e.accessDate, 0, mountTime),
		createTime: decodeTimestamp(e.createDate, e.createTime, mountTime),
	}
}

// logWarnings prints any accumulated non-fatal directory-decode
// problems and returns nil: the stream still terminates cleanly,
// silently discarding a trailing malformed tail after logging it.
func logWarnings(warnings *multierror.Error) error {
	if err := warnings.ErrorOrNil(); err != nil {
		log.PrintError(log.Wrap(err))
	}
	return nil
}

// ReadDir decodes every live entry of the directory starting at
// startCluster and returns them in on-disk order.
func ReadDir(vol *volume.Volume, startCluster uint32, mountTime time.Time) ([]Entry, error) {
	var entries []Entry
	err := streamDir(vol, startCluster, mountTime, func(name string, stat Stat) bool {
		entries = append(entries, Entry{Name: name, Stat: stat})
		return false
	})
	return entries, err
}
