// Package fattest builds synthetic FAT32 volume images in memory for
// use by package volume and package fatfs tests, the same role the
// teacher's hand-written fixtures play for its own table-driven tests.
package fattest

import (
	"encoding/binary"
)

// Image is an in-memory, zero-extending block device: reads past the
// written region return zero bytes rather than an error, so tests only
// need to populate the bytes they actually care about.
type Image struct {
	buf []byte
}

func (img *Image) ensure(n int) {
	if len(img.buf) < n {
		grown := make([]byte, n)
		copy(grown, img.buf)
		img.buf = grown
	}
}

// WriteAt writes p at byte offset off, growing the backing buffer as
// needed.
func (img *Image) WriteAt(p []byte, off int64) {
	end := int(off) + len(p)
	img.ensure(end)
	copy(img.buf[off:end], p)
}

// ReadAt implements volume.Device.
func (img *Image) ReadAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	img.ensure(end)
	copy(p, img.buf[off:end])
	return len(p), nil
}

// Geometry captures the BPB fields a test wants to control. Builder
// fills in reasonable FAT32-valid defaults for anything left zero.
type Geometry struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATCount          uint8
	SectorsPerFAT     uint32
	TotalSectors      uint32
	RootCluster       uint32
	MediaInfo         byte
}

// DefaultGeometry returns a minimal valid FAT32 geometry: one sector per
// cluster, two FATs, and just enough total sectors to clear the FAT32
// cluster-count lower bound (65525), per the boot-sector validation
// rules in package volume.
func DefaultGeometry() Geometry {
	const (
		reservedSectors = 32
		fatCount        = 2
		sectorsPerFAT   = 512
		minClusters     = 65525
	)
	dataStart := uint32(reservedSectors) + uint32(fatCount)*sectorsPerFAT
	return Geometry{
		BytesPerSector:    512,
		SectorsPerCluster: 1,
		ReservedSectors:   reservedSectors,
		FATCount:          fatCount,
		SectorsPerFAT:     sectorsPerFAT,
		TotalSectors:      dataStart + minClusters,
		RootCluster:       2,
		MediaInfo:         0xF8,
	}
}

// Builder assembles a boot sector, FAT tables, and data clusters into an
// Image.
type Builder struct {
	g   Geometry
	img *Image
}

// NewBuilder starts a Builder with the given geometry, writing the boot
// sector and a healthy FAT entry 0 (matching g.MediaInfo) immediately.
func NewBuilder(g Geometry) *Builder {
	b := &Builder{g: g, img: &Image{}}
	b.writeBootSector()
	b.SetFATEntry(0, uint32(0x0FFFFF00)|uint32(g.MediaInfo))
	b.SetFATEntry(1, 0x0FFFFFFF)
	return b
}

func (b *Builder) writeBootSector() {
	sector := make([]byte, 512)
	binary.LittleEndian.PutUint16(sector[11:], b.g.BytesPerSector)
	sector[13] = b.g.SectorsPerCluster
	binary.LittleEndian.PutUint16(sector[14:], b.g.ReservedSectors)
	sector[16] = b.g.FATCount
	binary.LittleEndian.PutUint16(sector[17:], 0) // RootEntryCount must be 0
	binary.LittleEndian.PutUint16(sector[19:], 0) // TotalSectors16 must be 0
	sector[21] = b.g.MediaInfo
	binary.LittleEndian.PutUint16(sector[22:], 0) // FATSize16 must be 0
	binary.LittleEndian.PutUint32(sector[32:], b.g.TotalSectors)
	binary.LittleEndian.PutUint32(sector[36:], b.g.SectorsPerFAT)
	binary.LittleEndian.PutUint32(sector[44:], b.g.RootCluster)
	binary.LittleEndian.PutUint16(sector[510:], 0xAA55)
	b.img.WriteAt(sector, 0)
}

func (b *Builder) fatOffset(fatIndex int, cluster uint32) int64 {
	base := int64(b.g.ReservedSectors) * int64(b.g.BytesPerSector)
	if fatIndex > 0 {
		base += int64(fatIndex) * int64(b.g.SectorsPerFAT) * int64(b.g.BytesPerSector)
	}
	return base + int64(cluster)*4
}

// SetFATEntry sets cluster's entry identically in every FAT copy.
func (b *Builder) SetFATEntry(cluster uint32, value uint32) {
	for i := 0; i < int(b.g.FATCount); i++ {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, value)
		b.img.WriteAt(buf, b.fatOffset(i, cluster))
	}
}

// SetFATEntryMismatched writes different values to the primary and
// backup FAT for cluster, to exercise ErrCorruptFAT.
func (b *Builder) SetFATEntryMismatched(cluster, primary, backup uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, primary)
	b.img.WriteAt(buf, b.fatOffset(0, cluster))
	binary.LittleEndian.PutUint32(buf, backup)
	b.img.WriteAt(buf, b.fatOffset(1, cluster))
}

func (b *Builder) clusterOffset(c uint32) int64 {
	dataStart := int64(b.g.ReservedSectors) + int64(b.g.FATCount)*int64(b.g.SectorsPerFAT)
	return (dataStart + int64(c-2)*int64(b.g.SectorsPerCluster)) * int64(b.g.BytesPerSector)
}

// WriteCluster writes data at the start of cluster c, zero-padding the
// rest of the cluster.
func (b *Builder) WriteCluster(c uint32, data []byte) {
	clusterSize := int(b.g.SectorsPerCluster) * int(b.g.BytesPerSector)
	padded := make([]byte, clusterSize)
	copy(padded, data)
	b.img.WriteAt(padded, b.clusterOffset(c))
}

// ClusterSize returns the configured bytes-per-cluster.
func (b *Builder) ClusterSize() int {
	return int(b.g.SectorsPerCluster) * int(b.g.BytesPerSector)
}

// Image returns the underlying device.
func (b *Builder) Image() *Image { return b.img }

// ShortEntry builds a 32-byte short directory entry slot.
type ShortEntry struct {
	Name       [11]byte
	Attr       byte
	Cluster    uint32
	Size       uint32
	CreateDate uint16
	CreateTime uint16
	AccessDate uint16
	WriteDate  uint16
	WriteTime  uint16
}

// Bytes encodes the entry to its 32-byte on-disk form.
func (e ShortEntry) Bytes() []byte {
	slot := make([]byte, 32)
	copy(slot[0:11], e.Name[:])
	slot[11] = e.Attr
	binary.LittleEndian.PutUint16(slot[14:], e.CreateTime)
	binary.LittleEndian.PutUint16(slot[16:], e.CreateDate)
	binary.LittleEndian.PutUint16(slot[18:], e.AccessDate)
	binary.LittleEndian.PutUint16(slot[20:], uint16(e.Cluster>>16))
	binary.LittleEndian.PutUint16(slot[22:], e.WriteTime)
	binary.LittleEndian.PutUint16(slot[24:], e.WriteDate)
	binary.LittleEndian.PutUint16(slot[26:], uint16(e.Cluster))
	binary.LittleEndian.PutUint32(slot[28:], e.Size)
	return slot
}

// PaddedName11 space-pads name/ext into the 11-byte short-name field,
// copying the bytes as given; it does no case conversion, so callers
// pass upper-case names. It does not attempt real 8.3
// basename/extension splitting; callers pass already-split halves.
func PaddedName11(base, ext string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	copy(out[0:8], base)
	copy(out[8:11], ext)
	return out
}

// ChecksumShortName computes the LFN checksum of an 11-byte short name,
// mirroring fatfs.checksumShortName so tests can build valid LFN runs.
func ChecksumShortName(raw [11]byte) byte {
	var sum byte
	for _, b := range raw {
		sum = (sum>>1 | sum<<7) + b
	}
	return sum
}

// LFNSlot builds one 32-byte long-filename directory entry slot.
func LFNSlot(sequence byte, checksum byte, chars []uint16) []byte {
	slot := make([]byte, 32)
	slot[0] = sequence
	slot[11] = 0x0F // LFN attribute
	slot[12] = 0x00
	slot[13] = checksum
	binary.LittleEndian.PutUint16(slot[26:], 0)

	put := func(offset int, units []uint16) {
		for i, u := range units {
			binary.LittleEndian.PutUint16(slot[offset+i*2:], u)
		}
	}

	padded := make([]uint16, 13)
	for i := range padded {
		padded[i] = 0xFFFF
	}
	copy(padded, chars)
	if len(chars) < 13 {
		padded[len(chars)] = 0x0000
	}

	put(1, padded[0:5])
	put(14, padded[5:11])
	put(28, padded[11:13])
	return slot
}

// WriteDirEntries concatenates slots and writes them into cluster c,
// in on-disk order.
func (b *Builder) WriteDirEntries(c uint32, slots ...[]byte) {
	var data []byte
	for _, s := range slots {
		data = append(data, s...)
	}
	b.WriteCluster(c, data)
}
