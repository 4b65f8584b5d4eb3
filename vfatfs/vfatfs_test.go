package vfatfs_test

import (
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/internal/fattest"
	"github.com/go-vfat/vfat32/vfatfs"
)

func newTestFs(t *testing.T) afero.Fs {
	t.Helper()
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(3, 0x0FFFFFFF)

	entry := fattest.ShortEntry{Name: fattest.PaddedName11("HELLO", "TXT"), Attr: fatfs.AttrArchive, Cluster: 3, Size: 5}
	b.WriteDirEntries(2, entry.Bytes())
	b.WriteCluster(3, []byte("hello"))

	fs, err := vfatfs.New(b.Image())
	require.NoError(t, err)
	return fs
}

func TestFs_OpenAndRead(t *testing.T) {
	fs := newTestFs(t)

	f, err := fs.Open("/HELLO.TXT")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 5)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestFs_Stat(t *testing.T) {
	fs := newTestFs(t)

	info, err := fs.Stat("/HELLO.TXT")
	require.NoError(t, err)
	assert.EqualValues(t, 5, info.Size())
	assert.False(t, info.IsDir())
}

func TestFs_Walk(t *testing.T) {
	fs := newTestFs(t)

	var seen []string
	err := afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		seen = append(seen, path)
		return nil
	})
	require.NoError(t, err)
	assert.Contains(t, seen, "/HELLO.TXT")
}

func TestFs_MutationsRejected(t *testing.T) {
	fs := newTestFs(t)

	assert.ErrorIs(t, fs.Mkdir("/NEW", 0755), vfatfs.ErrNotSupported)
	assert.ErrorIs(t, fs.Remove("/HELLO.TXT"), vfatfs.ErrNotSupported)

	_, err := fs.Create("/NEW.TXT")
	assert.ErrorIs(t, err, vfatfs.ErrNotSupported)
}

func TestFile_ReadPastEOF(t *testing.T) {
	fs := newTestFs(t)

	f, err := fs.Open("/HELLO.TXT")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 5)
	assert.ErrorIs(t, err, io.EOF)
}
