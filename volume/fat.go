package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/go-vfat/vfat32/errtrace"
)

// Cluster numbers are 28-bit; the top 4 bits of an on-disk entry are
// reserved and must be ignored on read.
const clusterMask = 0x0FFFFFFF

// EntryKind classifies a decoded FAT entry.
type EntryKind int

const (
	// KindFree means the cluster is unallocated.
	KindFree EntryKind = iota
	// KindBad means the cluster is marked bad.
	KindBad
	// KindEndOfChain means the chain terminates at this entry.
	KindEndOfChain
	// KindCluster means the entry holds the next cluster in the chain.
	KindCluster
)

// Next is the result of walking one FAT entry.
type Next struct {
	Kind    EntryKind
	Cluster uint32 // valid only when Kind == KindCluster
}

// Walker reads FAT entries, cross-checking the primary FAT against the
// first backup FAT on every query.
type Walker struct {
	dev      Device
	geometry Geometry
}

// NewWalker builds a Walker over dev using the given geometry.
func NewWalker(dev Device, g Geometry) *Walker {
	return &Walker{dev: dev, geometry: g}
}

func (w *Walker) entryOffset(fatIndex int, c uint32) int64 {
	base := w.geometry.FATRegionOffset
	if fatIndex > 0 {
		base += int64(fatIndex) * int64(w.geometry.SectorsPerFAT) * int64(w.geometry.BytesPerSector)
	}
	return base + int64(c)*4
}

func (w *Walker) readEntry(fatIndex int, c uint32) (uint32, error) {
	buf, err := ReadAt(w.dev, w.entryOffset(fatIndex, c), 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf) & clusterMask, nil
}

// Next returns the successor of cluster c in the chain, classifying it.
// It cross-checks the primary FAT against the first backup FAT and
// fails with ErrCorruptFAT if they disagree.
func (w *Walker) Next(c uint32) (Next, error) {
	primary, err := w.readEntry(0, c)
	if err != nil {
		return Next{}, err
	}

	if w.geometry.FATCount > 1 {
		backup, err := w.readEntry(1, c)
		if err != nil {
			return Next{}, err
		}
		if backup != primary {
			return Next{}, errtrace.Wrap(fmt.Errorf("cluster %d: primary=0x%08x backup=0x%08x", c, primary, backup), ErrCorruptFAT)
		}
	}

	return classify(primary), nil
}

func classify(entry uint32) Next {
	switch {
	case entry == 0:
		return Next{Kind: KindFree}
	case entry == 0x0FFFFFF7:
		return Next{Kind: KindBad}
	case entry >= 0x0FFFFFF8 && entry <= 0x0FFFFFFF:
		return Next{Kind: KindEndOfChain}
	default:
		return Next{Kind: KindCluster, Cluster: entry}
	}
}

// ChainLength walks the full chain starting at start and returns the
// number of clusters in it. Used to compute directory sizes for stat,
// since directories carry no on-disk size field.
func (w *Walker) ChainLength(start uint32) (int, error) {
	n := 0
	c := start
	for {
		n++
		next, err := w.Next(c)
		if err != nil {
			return n, err
		}
		switch next.Kind {
		case KindCluster:
			c = next.Cluster
		case KindEndOfChain:
			return n, nil
		default:
			return n, errtrace.Wrap(fmt.Errorf("chain from cluster %d ended at non-EOC entry", start), ErrCorruptChain)
		}
	}
}
