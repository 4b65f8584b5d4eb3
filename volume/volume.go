// Package volume decodes the FAT32 boot sector and walks the file
// allocation table. It knows nothing about directories, names, or paths;
// see package fatfs for that.
package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/go-vfat/vfat32/errtrace"
)

// Volume bundles an immutable Geometry with the Device it was decoded
// from and a Walker over that Device's FAT. It is the "opaque volume
// value" design notes call for: callers pass it to every operation
// instead of relying on module-level singletons.
type Volume struct {
	Device   Device
	Geometry Geometry
	Walker   *Walker
}

// Open reads the reserved boot sector from dev, validates it as FAT32,
// and checks the media descriptor against the low byte of FAT entry 0.
// Open itself never logs or panics - it is a library entry point used by
// both the FUSE adapter and the afero adapter - so validation failures
// come back as plain errtrace-wrapped errors. The CLI entry points are
// the ones that log a diagnostic and abort the process (see
// cmd/vfat32mount).
func Open(dev Device) (*Volume, error) {
	sector, err := ReadAt(dev, 0, bootSectorLength)
	if err != nil {
		return nil, err
	}

	geometry, err := decodeBootSector(sector)
	if err != nil {
		return nil, err
	}

	walker := NewWalker(dev, geometry)

	entry0, err := ReadAt(dev, geometry.FATRegionOffset, 4)
	if err != nil {
		return nil, err
	}
	if lowByte := byte(binary.LittleEndian.Uint32(entry0)); lowByte != geometry.MediaInfo {
		return nil, errtrace.Wrap(fmt.Errorf("media descriptor 0x%02x does not match FAT entry 0 low byte 0x%02x", geometry.MediaInfo, lowByte), ErrCorruptFAT)
	}

	return &Volume{
		Device:   dev,
		Geometry: geometry,
		Walker:   walker,
	}, nil
}
