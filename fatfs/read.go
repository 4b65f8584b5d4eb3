package fatfs

import (
	"github.com/go-vfat/vfat32/errtrace"
	"github.com/go-vfat/vfat32/volume"
)

// ReadFile copies bytes from the file starting at startCluster into buf,
// beginning at offset. It always returns the number of bytes actually
// written to buf, even on error, rather than zero on every failing
// branch.
func ReadFile(vol *volume.Volume, startCluster uint32, fileSize int64, offset int64, buf []byte) (int, error) {
	if offset >= fileSize {
		return 0, nil
	}

	remaining := fileSize - offset
	if int64(len(buf)) < remaining {
		remaining = int64(len(buf))
	}
	if remaining <= 0 {
		return 0, nil
	}

	clusterSize := int64(vol.Geometry.ClusterSize)

	cluster := startCluster
	skip := offset
	for skip >= clusterSize {
		next, err := vol.Walker.Next(cluster)
		if err != nil {
			return 0, err
		}
		if next.Kind != volume.KindCluster {
			return 0, errtrace.From(volume.ErrCorruptChain)
		}
		cluster = next.Cluster
		skip -= clusterSize
	}

	var written int64
	first := true
	for written < remaining {
		base := vol.Geometry.ClusterOffset(cluster)
		start := int64(0)
		if first {
			start = skip
		}

		avail := clusterSize - start
		toCopy := remaining - written
		if toCopy > avail {
			toCopy = avail
		}

		chunk, err := volume.ReadAt(vol.Device, base+start, int(toCopy))
		if err != nil {
			return int(written), err
		}
		copy(buf[written:], chunk)
		written += toCopy
		first = false

		if written >= remaining {
			break
		}

		next, err := vol.Walker.Next(cluster)
		if err != nil {
			return int(written), err
		}
		if next.Kind != volume.KindCluster {
			// The chain ended (or hit a bad cluster) before the file's
			// declared size was fully read. Bytes already copied are
			// still returned alongside the error.
			return int(written), errtrace.From(volume.ErrCorruptChain)
		}
		cluster = next.Cluster
	}

	return int(written), nil
}
