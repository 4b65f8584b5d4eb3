package fatfs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/internal/fattest"
	"github.com/go-vfat/vfat32/volume"
)

func openTestVolume(t *testing.T, b *fattest.Builder) *volume.Volume {
	t.Helper()
	vol, err := volume.Open(b.Image())
	require.NoError(t, err)
	return vol
}

func TestReadDir_ShortNameFile(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF) // root dir, single cluster
	b.SetFATEntry(3, 0x0FFFFFFF) // file data, single cluster

	entry := fattest.ShortEntry{
		Name:    fattest.PaddedName11("README", "TXT"),
		Attr:    fatfs.AttrArchive,
		Cluster: 3,
		Size:    11,
	}
	b.WriteDirEntries(2, entry.Bytes())
	b.WriteCluster(3, []byte("hello world"))

	vol := openTestVolume(t, b)
	entries, err := fatfs.ReadDir(vol, vol.Geometry.RootCluster, time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "README.TXT", entries[0].Name)
	assert.EqualValues(t, 3, entries[0].Stat.Cluster())
	assert.EqualValues(t, 11, entries[0].Stat.Size())
	assert.False(t, entries[0].Stat.IsDir())
}

func TestReadDir_LongFileName(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(3, 0x0FFFFFFF)

	short := fattest.ShortEntry{
		Name:    fattest.PaddedName11("LONGFI~1", "TXT"),
		Attr:    fatfs.AttrArchive,
		Cluster: 3,
		Size:    4,
	}
	checksum := fattest.ChecksumShortName(short.Name)

	name := "long file name.txt"
	units := make([]uint16, len(name))
	for i, r := range name {
		units[i] = uint16(r)
	}

	lfn1 := fattest.LFNSlot(0x42, checksum, units[13:]) // second (final) slot, sequence 2 | 0x40
	lfn2 := fattest.LFNSlot(0x01, checksum, units[0:13])

	b.WriteDirEntries(2, lfn1, lfn2, short.Bytes())
	b.WriteCluster(3, []byte("data"))

	vol := openTestVolume(t, b)
	entries, err := fatfs.ReadDir(vol, vol.Geometry.RootCluster, time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, name, entries[0].Name)
}

func TestReadDir_DeletedEntrySkipped(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(3, 0x0FFFFFFF)

	deleted := fattest.ShortEntry{
		Name:    fattest.PaddedName11("GONE", "TXT"),
		Attr:    fatfs.AttrArchive,
		Cluster: 3,
		Size:    1,
	}
	deletedBytes := deleted.Bytes()
	deletedBytes[0] = 0xE5

	live := fattest.ShortEntry{
		Name:    fattest.PaddedName11("HERE", "TXT"),
		Attr:    fatfs.AttrArchive,
		Cluster: 3,
		Size:    1,
	}

	b.WriteDirEntries(2, deletedBytes, live.Bytes())

	vol := openTestVolume(t, b)
	entries, err := fatfs.ReadDir(vol, vol.Geometry.RootCluster, time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "HERE.TXT", entries[0].Name)
}

func TestReadDir_DotEntries(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(3, 0x0FFFFFFF)

	dot := fattest.ShortEntry{Name: fattest.PaddedName11(".", ""), Attr: fatfs.AttrDirectory, Cluster: 3}
	dotdot := fattest.ShortEntry{Name: fattest.PaddedName11("..", ""), Attr: fatfs.AttrDirectory, Cluster: 0}

	b.WriteDirEntries(3, dot.Bytes(), dotdot.Bytes())

	vol := openTestVolume(t, b)
	entries, err := fatfs.ReadDir(vol, 3, time.Now())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ".", entries[0].Name)
	assert.Equal(t, "..", entries[1].Name)
}
