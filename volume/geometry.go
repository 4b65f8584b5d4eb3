package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/go-vfat/vfat32/errtrace"
)

// Byte offsets into the 512-byte reserved boot sector. Fields are read
// field-by-field with explicit little-endian accessors rather than
// overlaid onto a Go struct: FAT32's on-disk layout is packed and
// platform-endian assumptions about struct layout do not hold portably.
const (
	offJmpBoot       = 0
	offOEMName       = 3
	offBytesPerSec   = 11
	offSecPerClus    = 13
	offRsvdSecCnt    = 14
	offNumFATs       = 16
	offRootEntCnt    = 17
	offTotSec16      = 19
	offMedia         = 21
	offFATSz16       = 22
	offTotSec32      = 32
	offFATSz32       = 36
	offRootClus      = 44
	offFSInfo        = 48
	offBkBootSec     = 50
	offSignature     = 510
	bootSectorLength = 512

	signatureValue = 0xAA55

	// fat32LowerBound is the minimum cluster count a FAT32 volume must
	// have; below this, the medium is FAT12 or FAT16.
	fat32LowerBound = 65525
)

// Geometry holds every value derived from the boot sector. It is built
// once by Open and never mutated afterward; every other component
// consults it by reference.
type Geometry struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATCount          uint8
	SectorsPerFAT     uint32
	TotalSectors      uint32
	RootCluster       uint32
	MediaInfo         byte

	ClusterSize           uint32
	FATRegionOffset       int64
	DataRegionStartSector uint32
	CountOfClusters       uint32
}

func clusterSize(bytesPerSector uint16, sectorsPerCluster uint8) uint32 {
	return uint32(bytesPerSector) * uint32(sectorsPerCluster)
}

// decodeBootSector validates the 512-byte reserved boot sector and
// derives Geometry from it. Every FAT32 structural constraint is
// enforced here; anything that fails them is reported as ErrNotFAT32.
func decodeBootSector(sector []byte) (Geometry, error) {
	if len(sector) < bootSectorLength {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("boot sector short: %d bytes", len(sector)), ErrIO)
	}

	if sig := binary.LittleEndian.Uint16(sector[offSignature:]); sig != signatureValue {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("bad boot signature 0x%04x", sig), ErrNotFAT32)
	}

	bytesPerSector := binary.LittleEndian.Uint16(sector[offBytesPerSec:])
	switch bytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return Geometry{}, errtrace.Wrap(fmt.Errorf("invalid bytes per sector: %d", bytesPerSector), ErrNotFAT32)
	}

	sectorsPerCluster := sector[offSecPerClus]
	if sectorsPerCluster == 0 || (sectorsPerCluster&(sectorsPerCluster-1)) != 0 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("sectors per cluster not a power of two: %d", sectorsPerCluster), ErrNotFAT32)
	}
	if clusterSize(bytesPerSector, sectorsPerCluster) > 32*1024 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("cluster size too large"), ErrNotFAT32)
	}

	reservedSectors := binary.LittleEndian.Uint16(sector[offRsvdSecCnt:])
	if reservedSectors == 0 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("reserved sector count is zero"), ErrNotFAT32)
	}

	fatCount := sector[offNumFATs]
	if fatCount < 2 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("fat count < 2: %d", fatCount), ErrNotFAT32)
	}

	rootEntryCount := binary.LittleEndian.Uint16(sector[offRootEntCnt:])
	if rootEntryCount != 0 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("root entry count must be 0 for FAT32, got %d", rootEntryCount), ErrNotFAT32)
	}

	totalSectors16 := binary.LittleEndian.Uint16(sector[offTotSec16:])
	if totalSectors16 != 0 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("16-bit total sectors field must be 0 for FAT32"), ErrNotFAT32)
	}

	fatSize16 := binary.LittleEndian.Uint16(sector[offFATSz16:])
	if fatSize16 != 0 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("16-bit FAT size field must be 0 for FAT32"), ErrNotFAT32)
	}

	totalSectors := binary.LittleEndian.Uint32(sector[offTotSec32:])
	sectorsPerFAT := binary.LittleEndian.Uint32(sector[offFATSz32:])
	if sectorsPerFAT == 0 {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("sectors per FAT is zero"), ErrNotFAT32)
	}

	rootCluster := binary.LittleEndian.Uint32(sector[offRootClus:])
	mediaInfo := sector[offMedia]

	dataRegionStartSector := uint32(reservedSectors) + uint32(fatCount)*sectorsPerFAT
	if totalSectors < dataRegionStartSector {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("total sectors smaller than reserved+FAT region"), ErrNotFAT32)
	}
	countOfClusters := (totalSectors - dataRegionStartSector) / uint32(sectorsPerCluster)
	if countOfClusters < fat32LowerBound {
		return Geometry{}, errtrace.Wrap(fmt.Errorf("cluster count %d below FAT32 lower bound", countOfClusters), ErrNotFAT32)
	}

	g := Geometry{
		BytesPerSector:    bytesPerSector,
		SectorsPerCluster: sectorsPerCluster,
		ReservedSectors:   reservedSectors,
		FATCount:          fatCount,
		SectorsPerFAT:     sectorsPerFAT,
		TotalSectors:      totalSectors,
		RootCluster:       rootCluster,
		MediaInfo:         mediaInfo,

		ClusterSize:           clusterSize(bytesPerSector, sectorsPerCluster),
		FATRegionOffset:       int64(reservedSectors) * int64(bytesPerSector),
		DataRegionStartSector: dataRegionStartSector,
		CountOfClusters:       countOfClusters,
	}
	return g, nil
}

// ClusterOffset returns the byte offset of cluster c in the data region.
// Defined only for c >= 2.
func (g Geometry) ClusterOffset(c uint32) int64 {
	return (int64(g.DataRegionStartSector) + int64(c-2)*int64(g.SectorsPerCluster)) * int64(g.BytesPerSector)
}
