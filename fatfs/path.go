package fatfs

import (
	"strings"
	"time"

	"github.com/go-vfat/vfat32/errtrace"
	"github.com/go-vfat/vfat32/volume"
)

// Resolve turns an absolute slash-delimited path into a Stat, walking
// one component at a time from the root directory. Name comparison is
// bytewise after UTF-8 decoding and therefore case-sensitive, matching
// FAT32's on-disk (upper-cased) short names unless the caller
// canonicalizes first.
func Resolve(vol *volume.Volume, path string, mountTime time.Time) (Stat, error) {
	if path == "/" || path == "" {
		return rootStat(vol, mountTime)
	}

	components := splitPath(path)
	current := vol.Geometry.RootCluster

	var result Stat
	for i, component := range components {
		found := false
		var matched Entry

		err := streamDir(vol, current, mountTime, func(name string, stat Stat) bool {
			if name == component {
				matched = Entry{Name: name, Stat: stat}
				found = true
				return true
			}
			return false
		})
		if err != nil {
			return Stat{}, err
		}
		if !found {
			return Stat{}, errtrace.From(volume.ErrNotFound)
		}

		last := i == len(components)-1
		if last {
			result = matched.Stat
			break
		}
		if !matched.Stat.IsDir() {
			return Stat{}, errtrace.From(volume.ErrNotDir)
		}
		current = matched.Stat.Cluster()
	}

	return result, nil
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// rootStat synthesizes the stat record for "/": a directory whose size
// is the byte-length of the root directory's cluster chain.
func rootStat(vol *volume.Volume, mountTime time.Time) (Stat, error) {
	n, err := vol.Walker.ChainLength(vol.Geometry.RootCluster)
	if err != nil {
		return Stat{}, err
	}
	return Stat{
		name:    "/",
		cluster: vol.Geometry.RootCluster,
		isDir:   true,
		size:    int64(n) * int64(vol.Geometry.ClusterSize),
		modTime: mountTime,
	}, nil
}
