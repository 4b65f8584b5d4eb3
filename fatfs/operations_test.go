package fatfs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/internal/fattest"
	"github.com/go-vfat/vfat32/volume"
)

func TestOperations_GetxattrUnknownName(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)

	vol := openTestVolume(t, b)
	ops := fatfs.NewOperations(vol)

	_, err := ops.Getxattr("/", "user.unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, volume.ErrNoData))
}

func TestOperations_GetxattrClusterValue(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(5, 0x0FFFFFFF)

	entry := fattest.ShortEntry{Name: fattest.PaddedName11("FILE", "TXT"), Attr: fatfs.AttrArchive, Cluster: 5, Size: 0}
	b.WriteDirEntries(2, entry.Bytes())

	vol := openTestVolume(t, b)
	ops := fatfs.NewOperations(vol)

	value, err := ops.Getxattr("/FILE.TXT", fatfs.DebugXattrName)
	require.NoError(t, err)
	assert.Equal(t, "5", string(value))
}

func TestOperations_DebugPathWithoutDelegate(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)

	vol := openTestVolume(t, b)
	ops := fatfs.NewOperations(vol)

	_, err := ops.Getattr("/.debug/geometry")
	require.Error(t, err)
	assert.True(t, errors.Is(err, volume.ErrNotFound))
}

func TestOperations_ReadDirOnFileFails(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(3, 0x0FFFFFFF)

	entry := fattest.ShortEntry{Name: fattest.PaddedName11("FILE", "TXT"), Attr: fatfs.AttrArchive, Cluster: 3, Size: 1}
	b.WriteDirEntries(2, entry.Bytes())
	b.WriteCluster(3, []byte("a"))

	vol := openTestVolume(t, b)
	ops := fatfs.NewOperations(vol)

	_, err := ops.Readdir("/FILE.TXT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, volume.ErrNotDir))
}
