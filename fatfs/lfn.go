package fatfs

import (
	"encoding/binary"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// lfnUnitsPerSlot is the number of UTF-16LE code units packed into a
// single 32-byte long-filename entry (5 + 6 + 2).
const lfnUnitsPerSlot = 13

// lfnSlot is one decoded 32-byte long-filename directory entry.
type lfnSlot struct {
	sequence byte
	checksum byte
	units    [lfnUnitsPerSlot]uint16
}

// parseLFNSlot decodes the on-disk LFN entry layout: sequence byte, 5
// UCS-2 units, attribute, type, checksum, 6 UCS-2 units, 2 reserved
// bytes, 2 UCS-2 units.
func parseLFNSlot(raw []byte) lfnSlot {
	var s lfnSlot
	s.sequence = raw[0]
	s.checksum = raw[13]

	idx := 0
	for _, off := range []int{1, 3, 5, 7, 9} {
		s.units[idx] = binary.LittleEndian.Uint16(raw[off:])
		idx++
	}
	for _, off := range []int{14, 16, 18, 20, 22, 24} {
		s.units[idx] = binary.LittleEndian.Uint16(raw[off:])
		idx++
	}
	for _, off := range []int{28, 30} {
		s.units[idx] = binary.LittleEndian.Uint16(raw[off:])
		idx++
	}
	return s
}

// lfnState is the explicit finite state of the LFN assembler, modeled as
// a state machine rather than ad-hoc boolean flags.
type lfnState int

const (
	lfnIdle lfnState = iota
	lfnCollecting
)

// lfnAssembler accumulates a run of LFN slots into a 16-bit code-unit
// buffer, tracking the expected next sequence number and the checksum
// the run must bind to. It persists across the 32-byte slots of a
// directory stream.
type lfnAssembler struct {
	state       lfnState
	expectedSeq int
	checksum    byte
	buffer      []uint16
}

func (a *lfnAssembler) reset() {
	a.state = lfnIdle
	a.expectedSeq = 0
	a.checksum = 0
	a.buffer = nil
}

// feed applies one LFN slot's sequence byte to the state machine,
// starting a new run on a 0x40-flagged slot and extending the current
// run otherwise, resetting on any break in sequence or checksum.
func (a *lfnAssembler) feed(slot lfnSlot) {
	if slot.sequence&0x40 != 0 {
		n := int(slot.sequence & 0x3F)
		if n == 0 {
			a.reset()
			return
		}
		a.buffer = make([]uint16, n*lfnUnitsPerSlot)
		a.checksum = slot.checksum
		copy(a.buffer[(n-1)*lfnUnitsPerSlot:n*lfnUnitsPerSlot], slot.units[:])
		a.expectedSeq = n - 1
		a.state = lfnCollecting
		return
	}

	seq := int(slot.sequence)
	if a.state != lfnCollecting || seq != a.expectedSeq || seq == 0 || slot.checksum != a.checksum {
		a.reset()
		return
	}

	copy(a.buffer[(seq-1)*lfnUnitsPerSlot:seq*lfnUnitsPerSlot], slot.units[:])
	a.expectedSeq--
}

// ready reports whether the assembler holds a complete run bound to
// checksum cksum, i.e. every LFN entry has been seen down to sequence 1.
func (a *lfnAssembler) ready(cksum byte) bool {
	return a.state == lfnCollecting && a.expectedSeq == 0 && a.checksum == cksum
}

// name decodes the accumulated buffer to a UTF-8 string: truncate at
// the first 0x0000 unit, drop trailing 0xFFFF padding, then convert.
func (a *lfnAssembler) name() (string, error) {
	units := trimLFNPadding(a.buffer)
	return utf16LEToUTF8(units)
}

func trimLFNPadding(units []uint16) []uint16 {
	for i, u := range units {
		if u == 0x0000 {
			units = units[:i]
			break
		}
	}
	end := len(units)
	for end > 0 && units[end-1] == 0xFFFF {
		end--
	}
	return units[:end]
}

// utf16LEToUTF8 is a pure charset-conversion function: no shared mutable
// state, a fresh decoder per call.
func utf16LEToUTF8(units []uint16) (string, error) {
	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}

	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
