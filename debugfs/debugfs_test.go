package debugfs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-vfat/vfat32/debugfs"
	"github.com/go-vfat/vfat32/internal/fattest"
	"github.com/go-vfat/vfat32/volume"
)

func TestDelegate_ReadDirListsGeometryAndHealth(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)

	vol, err := volume.Open(b.Image())
	require.NoError(t, err)

	d := debugfs.New(vol, time.Now())
	entries, ok := d.ReadDir("/.debug")
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "geometry", entries[0].Name)
	assert.Equal(t, "fat-health", entries[1].Name)
}

func TestDelegate_ReadGeometry(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)

	vol, err := volume.Open(b.Image())
	require.NoError(t, err)

	d := debugfs.New(vol, time.Now())
	buf := make([]byte, 4096)
	n, ok, err := d.Read("/.debug/geometry", buf, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(buf[:n]), "bytes_per_sector: 512")
}

func TestDelegate_FATHealthOK(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)

	vol, err := volume.Open(b.Image())
	require.NoError(t, err)

	d := debugfs.New(vol, time.Now())
	buf := make([]byte, 64)
	n, ok, err := d.Read("/.debug/fat-health", buf, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "OK\n", string(buf[:n]))
}

func TestDelegate_UnknownPathDeclines(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	vol, err := volume.Open(b.Image())
	require.NoError(t, err)

	d := debugfs.New(vol, time.Now())
	_, ok := d.Getattr("/.debug/unknown")
	assert.False(t, ok)
}
