//go:build linux
// +build linux

package fuseadapter_test

import (
	"context"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/fuseadapter"
	"github.com/go-vfat/vfat32/internal/fattest"
	"github.com/go-vfat/vfat32/volume"
)

func newTestOps(t *testing.T) *fatfs.Operations {
	t.Helper()
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(3, 0x0FFFFFFF)

	entry := fattest.ShortEntry{Name: fattest.PaddedName11("HELLO", "TXT"), Attr: fatfs.AttrArchive, Cluster: 3, Size: 5}
	b.WriteDirEntries(2, entry.Bytes())
	b.WriteCluster(3, []byte("hello"))

	vol, err := volume.Open(b.Image())
	require.NoError(t, err)
	return fatfs.NewOperations(vol)
}

func TestFS_RootAttr(t *testing.T) {
	ops := newTestOps(t)
	fs := fuseadapter.New(ops)

	root, err := fs.Root()
	require.NoError(t, err)

	node := root.(*fuseadapter.Node)
	var attr fuse.Attr
	require.NoError(t, node.Attr(context.Background(), &attr))
	assert.True(t, attr.Mode.IsDir())
}

func TestNode_LookupAndReadDirAll(t *testing.T) {
	ops := newTestOps(t)
	fs := fuseadapter.New(ops)

	root, err := fs.Root()
	require.NoError(t, err)
	node := root.(*fuseadapter.Node)

	entries, err := node.ReadDirAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "HELLO.TXT", entries[0].Name)

	child, err := node.Lookup(context.Background(), "HELLO.TXT")
	require.NoError(t, err)
	assert.NotNil(t, child)

	_, err = node.Lookup(context.Background(), "MISSING.TXT")
	assert.Equal(t, fuse.ENOENT, err)
}

func TestNode_Read(t *testing.T) {
	ops := newTestOps(t)
	fs := fuseadapter.New(ops)

	root, _ := fs.Root()
	node := root.(*fuseadapter.Node)
	child, err := node.Lookup(context.Background(), "HELLO.TXT")
	require.NoError(t, err)

	var resp fuse.ReadResponse
	req := &fuse.ReadRequest{Offset: 0, Size: 5}
	require.NoError(t, child.(*fuseadapter.Node).Read(context.Background(), req, &resp))
	assert.Equal(t, "hello", string(resp.Data))
}

func TestNode_GetxattrAndListxattr(t *testing.T) {
	ops := newTestOps(t)
	fs := fuseadapter.New(ops)

	root, _ := fs.Root()
	node := root.(*fuseadapter.Node)
	child, err := node.Lookup(context.Background(), "HELLO.TXT")
	require.NoError(t, err)

	var listResp fuse.ListxattrResponse
	require.NoError(t, child.(*fuseadapter.Node).Listxattr(context.Background(), &fuse.ListxattrRequest{}, &listResp))
	assert.Contains(t, string(listResp.Xattr), fatfs.DebugXattrName)

	var getResp fuse.GetxattrResponse
	req := &fuse.GetxattrRequest{Name: fatfs.DebugXattrName, Size: 64}
	require.NoError(t, child.(*fuseadapter.Node).Getxattr(context.Background(), req, &getResp))
	assert.Equal(t, "3", string(getResp.Xattr))

	req = &fuse.GetxattrRequest{Name: fatfs.DebugXattrName, Size: 0}
	err = child.(*fuseadapter.Node).Getxattr(context.Background(), req, &getResp)
	assert.NoError(t, err)
}

func TestNode_GetxattrRangeError(t *testing.T) {
	b := fattest.NewBuilder(fattest.DefaultGeometry())
	b.SetFATEntry(2, 0x0FFFFFFF)
	b.SetFATEntry(12345, 0x0FFFFFFF)
	entry := fattest.ShortEntry{Name: fattest.PaddedName11("BIG", "TXT"), Attr: fatfs.AttrArchive, Cluster: 12345, Size: 0}
	b.WriteDirEntries(2, entry.Bytes())

	vol, err := volume.Open(b.Image())
	require.NoError(t, err)
	ops := fatfs.NewOperations(vol)
	fs := fuseadapter.New(ops)

	root, _ := fs.Root()
	node := root.(*fuseadapter.Node)
	child, err := node.Lookup(context.Background(), "BIG.TXT")
	require.NoError(t, err)

	var resp fuse.GetxattrResponse
	req := &fuse.GetxattrRequest{Name: fatfs.DebugXattrName, Size: 2}
	err = child.(*fuseadapter.Node).Getxattr(context.Background(), req, &resp)
	require.Error(t, err)
	errno, ok := err.(fuse.Errno)
	require.True(t, ok)
	assert.Equal(t, fuse.Errno(syscall.ERANGE), errno)
}

func TestNode_LookupMissingMapsENOENT(t *testing.T) {
	ops := newTestOps(t)
	fs := fuseadapter.New(ops)

	root, _ := fs.Root()
	node := root.(*fuseadapter.Node)

	_, err := node.Lookup(context.Background(), "NOPE")
	require.Error(t, err)
	errno, ok := err.(fuse.Errno)
	require.True(t, ok)
	assert.Equal(t, fuse.ENOENT, errno)
}

func TestNode_ReadDirOnFileMapsENOTDIR(t *testing.T) {
	ops := newTestOps(t)
	fs := fuseadapter.New(ops)

	root, _ := fs.Root()
	node := root.(*fuseadapter.Node)
	child, err := node.Lookup(context.Background(), "HELLO.TXT")
	require.NoError(t, err)

	_, err = child.(*fuseadapter.Node).ReadDirAll(context.Background())
	require.Error(t, err)
	errno, ok := err.(fuse.Errno)
	require.True(t, ok)
	assert.Equal(t, fuse.Errno(syscall.ENOTDIR), errno)
}
