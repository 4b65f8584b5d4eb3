package fatfs

import (
	"fmt"
	"strings"

	"github.com/go-vfat/vfat32/errtrace"
	"github.com/go-vfat/vfat32/volume"
)

// shortNameReservedBytes mirrors the FAT short-name restriction: these
// bytes may never appear in an 8.3 name.
const shortNameReservedBytes = "*+,./:;<=>?[\\]|"

// checksumShortName computes the 8-bit rolling checksum over the
// 11-byte raw name field of a short entry. LFN entries store this value
// to bind themselves to their short entry.
func checksumShortName(raw [11]byte) byte {
	var sum byte
	for _, b := range raw {
		carry := byte(0)
		if sum&1 != 0 {
			carry = 0x80
		}
		sum = carry + (sum >> 1) + b
	}
	return sum
}

// decodeShortName converts the 11-byte raw name+extension field into the
// canonical "BASE[.EXT]" form. A leading 0x05 is the KANJI escape for a
// literal 0xE5 first byte and is substituted back before decoding. Byte
// 0x20 at position 0 and any reserved byte
// anywhere in the field make the entry invalid.
func decodeShortName(raw [11]byte) (string, error) {
	name := raw
	if name[0] == 0x05 {
		name[0] = 0xE5
	}

	if name[0] == 0x20 {
		return "", errtrace.Wrap(fmt.Errorf("space at name position 0"), volume.ErrCorruptName)
	}

	for _, b := range name {
		if b < 0x20 || strings.IndexByte(shortNameReservedBytes, b) >= 0 {
			return "", errtrace.Wrap(fmt.Errorf("reserved byte 0x%02x in short name", b), volume.ErrCorruptName)
		}
	}

	base := strings.TrimRight(string(name[0:8]), " ")
	ext := strings.TrimRight(string(name[8:11]), " ")

	if ext == "" {
		return base, nil
	}
	return base + "." + ext, nil
}
