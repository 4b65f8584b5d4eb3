// Package debugfs implements the "/.debug" diagnostics collaborator. It
// has no authority over the real FAT32
// tree: the core never synthesizes entries here itself, and this
// delegate declines (reports not-found) for anything it does not
// recognize.
package debugfs

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/volume"
)

// Pseudo-cluster numbers for synthetic entries, chosen outside the real
// 28-bit cluster range so they can never collide with a live
// directory entry's inode identity.
const (
	clusterDebugDir    = 0xF0000000
	clusterGeometry    = 0xF0000001
	clusterFATHealth   = 0xF0000002
	fatHealthScanLimit = 4096
)

// Delegate answers reads under /.debug by inspecting the live volume.
type Delegate struct {
	vol       *volume.Volume
	mountTime time.Time
}

// New builds a Delegate over vol. mountTime stamps every synthetic
// entry's modification time.
func New(vol *volume.Volume, mountTime time.Time) *Delegate {
	return &Delegate{vol: vol, mountTime: mountTime}
}

func relPath(path string) string {
	rel := strings.TrimPrefix(path, "/.debug")
	return strings.TrimPrefix(rel, "/")
}

func (d *Delegate) content(rel string) ([]byte, bool) {
	switch rel {
	case "geometry":
		return []byte(d.geometryDump()), true
	case "fat-health":
		return []byte(d.fatHealth()), true
	}
	return nil, false
}

// Getattr implements fatfs.DebugDelegate.
func (d *Delegate) Getattr(path string) (fatfs.Stat, bool) {
	rel := relPath(path)
	if rel == "" {
		return fatfs.NewSyntheticStat(".debug", clusterDebugDir, true, 0, d.mountTime), true
	}

	content, ok := d.content(rel)
	if !ok {
		return fatfs.Stat{}, false
	}
	return fatfs.NewSyntheticStat(rel, clusterFor(rel), false, int64(len(content)), d.mountTime), true
}

func clusterFor(rel string) uint32 {
	if rel == "fat-health" {
		return clusterFATHealth
	}
	return clusterGeometry
}

// ReadDir implements fatfs.DebugDelegate: the only listable directory is
// /.debug itself.
func (d *Delegate) ReadDir(path string) ([]fatfs.Entry, bool) {
	if relPath(path) != "" {
		return nil, false
	}

	names := []string{"geometry", "fat-health"}
	entries := make([]fatfs.Entry, 0, len(names))
	for _, name := range names {
		content, _ := d.content(name)
		entries = append(entries, fatfs.Entry{
			Name: name,
			Stat: fatfs.NewSyntheticStat(name, clusterFor(name), false, int64(len(content)), d.mountTime),
		})
	}
	return entries, true
}

// Read implements fatfs.DebugDelegate.
func (d *Delegate) Read(path string, buf []byte, offset int64) (int, bool, error) {
	content, ok := d.content(relPath(path))
	if !ok {
		return 0, false, nil
	}
	if offset >= int64(len(content)) {
		return 0, true, nil
	}
	n := copy(buf, content[offset:])
	return n, true, nil
}

func (d *Delegate) geometryDump() string {
	g := d.vol.Geometry
	return fmt.Sprintf(
		"bytes_per_sector: %d\n"+
			"sectors_per_cluster: %d\n"+
			"cluster_size: %d\n"+
			"reserved_sectors: %d\n"+
			"fat_count: %d\n"+
			"sectors_per_fat: %d\n"+
			"fat_region_offset: %d\n"+
			"data_region_start_sector: %d\n"+
			"root_cluster: %d\n"+
			"count_of_clusters: %d\n"+
			"media_info: 0x%02x\n",
		g.BytesPerSector, g.SectorsPerCluster, g.ClusterSize,
		g.ReservedSectors, g.FATCount, g.SectorsPerFAT,
		g.FATRegionOffset, g.DataRegionStartSector, g.RootCluster,
		g.CountOfClusters, g.MediaInfo,
	)
}

// fatHealth performs a bounded scan over the first fatHealthScanLimit
// clusters, reporting every cluster where the primary and backup FAT
// disagree. Unbounded scans would turn a debug read into an O(volume)
// operation; only asks this collaborator for troubleshooting
// data, not an exhaustive audit.
func (d *Delegate) fatHealth() string {
	var mismatches []uint32
	limit := uint32(fatHealthScanLimit)
	if d.vol.Geometry.CountOfClusters < limit {
		limit = d.vol.Geometry.CountOfClusters
	}

	for c := uint32(2); c < limit+2; c++ {
		if _, err := d.vol.Walker.Next(c); err != nil {
			mismatches = append(mismatches, c)
		}
	}

	if len(mismatches) == 0 {
		return "OK\n"
	}

	var b strings.Builder
	for _, c := range mismatches {
		fmt.Fprintf(&b, "%d\n", c)
	}
	return b.String()
}
