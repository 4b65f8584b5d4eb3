//go:build linux
// +build linux

// Package fuseadapter bridges fatfs.Operations onto bazil.org/fuse's
// fs.FS node model, the same library and node shape ostafen-digler's
// internal/fuse package uses to expose a read-only recovered
// filesystem over FUSE.
package fuseadapter

import (
	"context"
	"errors"
	"path"
	"sync"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/go-vfat/vfat32/fatfs"
	"github.com/go-vfat/vfat32/volume"
)

// FS is the root of the mounted tree. A single *fatfs.Operations is
// shared by every Node since package volume's Device reads are
// position-addressed and safe for concurrent use.
type FS struct {
	ops *fatfs.Operations
}

// New builds a fuse fs.FS over ops.
func New(ops *fatfs.Operations) *FS {
	return &FS{ops: ops}
}

// Root implements fs.FS.
func (f *FS) Root() (fusefs.Node, error) {
	return &Node{fs: f, path: "/"}, nil
}

var _ fusefs.FS = (*FS)(nil)

// Node represents one path in the tree. Unlike a pointer-linked tree,
// a Node carries its own absolute path and re-resolves it through
// Operations on every directory listing, read and xattr query, which
// mirrors how the core treats every lookup as a fresh root-to-leaf
// walk. Its Stat is resolved once and cached for later Attr calls.
type Node struct {
	fs   *FS
	path string

	mu       sync.Mutex
	cachedOK bool
	cached   fatfs.Stat
}

func (n *Node) stat() (fatfs.Stat, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cachedOK {
		return n.cached, nil
	}
	stat, err := n.fs.ops.Getattr(n.path)
	if err != nil {
		return fatfs.Stat{}, err
	}
	n.cached = stat
	n.cachedOK = true
	return stat, nil
}

// Attr implements fs.Node.
func (n *Node) Attr(ctx context.Context, a *fuse.Attr) error {
	stat, err := n.stat()
	if err != nil {
		return toErrno(err)
	}

	a.Inode = uint64(stat.Cluster())
	a.Size = uint64(stat.Size())
	a.Mode = stat.Mode()
	a.Mtime = stat.ModTime()
	a.Atime = stat.AccessTime()
	a.Ctime = stat.CreateTime()
	a.Uid = n.fs.ops.UID
	a.Gid = n.fs.ops.GID
	a.Nlink = fatfs.LinkCount
	return nil
}

// Lookup implements fs.NodeStringLookuper.
func (n *Node) Lookup(ctx context.Context, name string) (fusefs.Node, error) {
	child := &Node{fs: n.fs, path: path.Join(n.path, name)}
	if _, err := child.stat(); err != nil {
		return nil, toErrno(err)
	}
	return child, nil
}

// ReadDirAll implements fs.HandleReadDirAller.
func (n *Node) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := n.fs.ops.Readdir(n.path)
	if err != nil {
		return nil, toErrno(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		dtype := fuse.DT_File
		if e.Stat.IsDir() {
			dtype = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{
			Inode: uint64(e.Stat.Cluster()),
			Name:  e.Name,
			Type:  dtype,
		})
	}
	return dirents, nil
}

// Read implements fs.HandleReader.
func (n *Node) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	written, err := n.fs.ops.Read(n.path, buf, req.Offset)
	if err != nil {
		return toErrno(err)
	}
	resp.Data = buf[:written]
	return nil
}

// Getxattr implements fs.NodeGetxattrer.
func (n *Node) Getxattr(ctx context.Context, req *fuse.GetxattrRequest, resp *fuse.GetxattrResponse) error {
	value, err := n.fs.ops.Getxattr(n.path, req.Name)
	if err != nil {
		return toErrno(err)
	}
	if req.Size != 0 && uint32(len(value)) > req.Size {
		return fuse.Errno(syscall.ERANGE)
	}
	resp.Xattr = value
	return nil
}

// Listxattr implements fs.NodeListxattrer. Only debug.cluster is ever
// advertised.
func (n *Node) Listxattr(ctx context.Context, req *fuse.ListxattrRequest, resp *fuse.ListxattrResponse) error {
	resp.Append(fatfs.DebugXattrName)
	return nil
}

var (
	_ fusefs.Node               = (*Node)(nil)
	_ fusefs.NodeStringLookuper = (*Node)(nil)
	_ fusefs.HandleReadDirAller = (*Node)(nil)
	_ fusefs.HandleReader       = (*Node)(nil)
	_ fusefs.NodeGetxattrer     = (*Node)(nil)
	_ fusefs.NodeListxattrer    = (*Node)(nil)
)

// toErrno maps the core's sentinel error taxonomy onto the errno values
// FUSE clients expect.
func toErrno(err error) error {
	switch {
	case errors.Is(err, volume.ErrNotFound):
		return fuse.ENOENT
	case errors.Is(err, volume.ErrNotDir):
		return fuse.Errno(syscall.ENOTDIR)
	case errors.Is(err, volume.ErrNoData):
		return fuse.Errno(syscall.ENODATA)
	case errors.Is(err, volume.ErrRange):
		return fuse.Errno(syscall.ERANGE)
	case errors.Is(err, volume.ErrCorruptFAT),
		errors.Is(err, volume.ErrCorruptChain),
		errors.Is(err, volume.ErrCorruptName),
		errors.Is(err, volume.ErrIO):
		return fuse.EIO
	default:
		return fuse.EIO
	}
}
