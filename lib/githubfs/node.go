// Copyright 2026 The ForgeFS Authors
// SPDX-License-Identifier: Apache-2.0

package githubfs

import (
	"context"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"
)

// node is a single filesystem node. Every operation derives the node's
// virtual path from its position in the tree and routes through the
// bridge, so nodes themselves carry no materialization state: an inode
// for "alice/repo@dev" and one for "alice/repo" both act on the same
// cache directory.
type node struct {
	gofuse.Inode
	bridge *bridge
}

var _ = (gofuse.NodeLookuper)((*node)(nil))
var _ = (gofuse.NodeGetattrer)((*node)(nil))
var _ = (gofuse.NodeReaddirer)((*node)(nil))
var _ = (gofuse.NodeOpener)((*node)(nil))
var _ = (gofuse.NodeCreater)((*node)(nil))
var _ = (gofuse.NodeMkdirer)((*node)(nil))
var _ = (gofuse.NodeMknoder)((*node)(nil))
var _ = (gofuse.NodeUnlinker)((*node)(nil))
var _ = (gofuse.NodeRmdirer)((*node)(nil))
var _ = (gofuse.NodeRenamer)((*node)(nil))
var _ = (gofuse.NodeSymlinker)((*node)(nil))
var _ = (gofuse.NodeReadlinker)((*node)(nil))
var _ = (gofuse.NodeLinker)((*node)(nil))
var _ = (gofuse.NodeSetattrer)((*node)(nil))
var _ = (gofuse.NodeStatfser)((*node)(nil))

// virtualPath returns the node's path as seen through the mount,
// optionally extended by a child name. The root is "/".
func (n *node) virtualPath(name string) string {
	p := n.Path(n.Root())
	if name != "" {
		if p == "" {
			p = name
		} else {
			p = p + "/" + name
		}
	}
	return "/" + p
}

// localPath resolves the node (or a child of it) to cache storage.
func (n *node) localPath(name string) string {
	local, _ := n.bridge.resolver.Resolve(n.virtualPath(name))
	return local
}

func (n *node) newChild(ctx context.Context, st *syscall.Stat_t) *gofuse.Inode {
	child := &node{bridge: n.bridge}
	return n.NewInode(ctx, child, gofuse.StableAttr{Mode: st.Mode & syscall.S_IFMT, Ino: st.Ino})
}

// Lookup resolves a child entry. Children that exist in cache storage
// report their real metadata; absent identity and repository
// directories are synthesized so traversal can descend into them, which
// is what triggers materialization.
func (n *node) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (inode *gofuse.Inode, errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("lookup", virtual, errno, start) }(time.Now())

	st, synthetic, errno := n.bridge.stat(virtual)
	if errno != 0 {
		return nil, errno
	}
	if synthetic {
		syntheticDir(&out.Attr)
		child := &node{bridge: n.bridge}
		return n.NewInode(ctx, child, gofuse.StableAttr{Mode: syscall.S_IFDIR}), 0
	}

	out.Attr.FromStat(&st)
	return n.newChild(ctx, &st), 0
}

// Getattr reports the node's metadata: real storage attributes when
// the path exists, fabricated directory attributes for unmaterialized
// identity and repository levels.
func (n *node) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) (errno syscall.Errno) {
	if fga, ok := fh.(gofuse.FileGetattrer); ok {
		return fga.Getattr(ctx, out)
	}

	virtual := n.virtualPath("")
	defer func(start time.Time) { n.bridge.logOp("getattr", virtual, errno, start) }(time.Now())

	st, synthetic, errno := n.bridge.stat(virtual)
	if errno != 0 {
		return errno
	}
	if synthetic {
		syntheticDir(&out.Attr)
		return 0
	}
	out.Attr.FromStat(&st)
	return 0
}

// Readdir lists the directory, materializing remote state first where
// the level calls for it.
func (n *node) Readdir(ctx context.Context) (stream gofuse.DirStream, errno syscall.Errno) {
	virtual := n.virtualPath("")
	defer func(start time.Time) { n.bridge.logOp("readdir", virtual, errno, start) }(time.Now())

	entries, errno := n.bridge.readdir(ctx, virtual)
	if errno != 0 {
		return nil, errno
	}
	return gofuse.NewListDirStream(entries), 0
}

// Open opens the backing cache file. All reads and writes go straight
// to storage through the returned handle.
func (n *node) Open(ctx context.Context, flags uint32) (fh gofuse.FileHandle, fuseFlags uint32, errno syscall.Errno) {
	virtual := n.virtualPath("")
	defer func(start time.Time) { n.bridge.logOp("open", virtual, errno, start) }(time.Now())

	fd, err := syscall.Open(n.localPath(""), int(flags), 0)
	if err != nil {
		return nil, 0, gofuse.ToErrno(err)
	}
	return gofuse.NewLoopbackFile(fd), 0, 0
}

// Create makes a new file in cache storage.
func (n *node) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (inode *gofuse.Inode, fh gofuse.FileHandle, fuseFlags uint32, errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("create", virtual, errno, start) }(time.Now())

	local := n.localPath(name)
	fd, err := syscall.Open(local, int(flags)|syscall.O_CREAT, mode)
	if err != nil {
		return nil, nil, 0, gofuse.ToErrno(err)
	}

	var st syscall.Stat_t
	if err := syscall.Fstat(fd, &st); err != nil {
		syscall.Close(fd)
		return nil, nil, 0, gofuse.ToErrno(err)
	}
	out.Attr.FromStat(&st)

	return n.newChild(ctx, &st), gofuse.NewLoopbackFile(fd), 0, 0
}

// Mkdir creates a directory in cache storage.
func (n *node) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (inode *gofuse.Inode, errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("mkdir", virtual, errno, start) }(time.Now())

	local := n.localPath(name)
	if err := syscall.Mkdir(local, mode); err != nil {
		return nil, gofuse.ToErrno(err)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(local, &st); err != nil {
		return nil, gofuse.ToErrno(err)
	}
	out.Attr.FromStat(&st)

	return n.newChild(ctx, &st), 0
}

// Mknod creates a special file in cache storage.
func (n *node) Mknod(ctx context.Context, name string, mode uint32, dev uint32, out *fuse.EntryOut) (inode *gofuse.Inode, errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("mknod", virtual, errno, start) }(time.Now())

	local := n.localPath(name)
	if err := syscall.Mknod(local, mode, int(dev)); err != nil {
		return nil, gofuse.ToErrno(err)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(local, &st); err != nil {
		return nil, gofuse.ToErrno(err)
	}
	out.Attr.FromStat(&st)

	return n.newChild(ctx, &st), 0
}

// Unlink removes a file from cache storage.
func (n *node) Unlink(ctx context.Context, name string) (errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("unlink", virtual, errno, start) }(time.Now())

	if err := syscall.Unlink(n.localPath(name)); err != nil {
		return gofuse.ToErrno(err)
	}
	return 0
}

// Rmdir removes a directory from cache storage.
func (n *node) Rmdir(ctx context.Context, name string) (errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("rmdir", virtual, errno, start) }(time.Now())

	if err := syscall.Rmdir(n.localPath(name)); err != nil {
		return gofuse.ToErrno(err)
	}
	return 0
}

// Rename moves an entry within cache storage.
func (n *node) Rename(ctx context.Context, name string, newParent gofuse.InodeEmbedder, newName string, flags uint32) (errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("rename", virtual, errno, start) }(time.Now())

	np, ok := newParent.(*node)
	if !ok {
		return syscall.EXDEV
	}
	if flags != 0 {
		// RENAME_NOREPLACE and RENAME_EXCHANGE pass straight to storage.
		if err := unix.Renameat2(unix.AT_FDCWD, n.localPath(name), unix.AT_FDCWD, np.localPath(newName), uint(flags)); err != nil {
			return gofuse.ToErrno(err)
		}
		return 0
	}
	if err := syscall.Rename(n.localPath(name), np.localPath(newName)); err != nil {
		return gofuse.ToErrno(err)
	}
	return 0
}

// Symlink creates a symbolic link in cache storage.
func (n *node) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (inode *gofuse.Inode, errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("symlink", virtual, errno, start) }(time.Now())

	local := n.localPath(name)
	if err := syscall.Symlink(target, local); err != nil {
		return nil, gofuse.ToErrno(err)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(local, &st); err != nil {
		return nil, gofuse.ToErrno(err)
	}
	out.Attr.FromStat(&st)

	return n.newChild(ctx, &st), 0
}

// Readlink reads a symbolic link target from cache storage.
func (n *node) Readlink(ctx context.Context) (target []byte, errno syscall.Errno) {
	virtual := n.virtualPath("")
	defer func(start time.Time) { n.bridge.logOp("readlink", virtual, errno, start) }(time.Now())

	buf := make([]byte, 4096)
	nr, err := syscall.Readlink(n.localPath(""), buf)
	if err != nil {
		return nil, gofuse.ToErrno(err)
	}
	return buf[:nr], 0
}

// Link creates a hard link in cache storage.
func (n *node) Link(ctx context.Context, target gofuse.InodeEmbedder, name string, out *fuse.EntryOut) (inode *gofuse.Inode, errno syscall.Errno) {
	virtual := n.virtualPath(name)
	defer func(start time.Time) { n.bridge.logOp("link", virtual, errno, start) }(time.Now())

	tn, ok := target.(*node)
	if !ok {
		return nil, syscall.EXDEV
	}
	local := n.localPath(name)
	if err := syscall.Link(tn.localPath(""), local); err != nil {
		return nil, gofuse.ToErrno(err)
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(local, &st); err != nil {
		return nil, gofuse.ToErrno(err)
	}
	out.Attr.FromStat(&st)

	return n.newChild(ctx, &st), 0
}

// Setattr applies chmod, chown, truncate and utimens to cache storage.
func (n *node) Setattr(ctx context.Context, fh gofuse.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) (errno syscall.Errno) {
	virtual := n.virtualPath("")
	defer func(start time.Time) { n.bridge.logOp("setattr", virtual, errno, start) }(time.Now())

	local := n.localPath("")

	if mode, ok := in.GetMode(); ok {
		if err := syscall.Chmod(local, mode); err != nil {
			return gofuse.ToErrno(err)
		}
	}

	uid, hasUID := in.GetUID()
	gid, hasGID := in.GetGID()
	if hasUID || hasGID {
		u, g := -1, -1
		if hasUID {
			u = int(uid)
		}
		if hasGID {
			g = int(gid)
		}
		if err := syscall.Lchown(local, u, g); err != nil {
			return gofuse.ToErrno(err)
		}
	}

	if size, ok := in.GetSize(); ok {
		if err := syscall.Truncate(local, int64(size)); err != nil {
			return gofuse.ToErrno(err)
		}
	}

	atime, hasATime := in.GetATime()
	mtime, hasMTime := in.GetMTime()
	if hasATime || hasMTime {
		ts := [2]unix.Timespec{
			{Nsec: unix.UTIME_OMIT},
			{Nsec: unix.UTIME_OMIT},
		}
		if hasATime {
			ts[0] = unix.NsecToTimespec(atime.UnixNano())
		}
		if hasMTime {
			ts[1] = unix.NsecToTimespec(mtime.UnixNano())
		}
		if err := unix.UtimesNanoAt(unix.AT_FDCWD, local, ts[:], unix.AT_SYMLINK_NOFOLLOW); err != nil {
			return gofuse.ToErrno(err)
		}
	}

	var st syscall.Stat_t
	if err := syscall.Lstat(local, &st); err != nil {
		return gofuse.ToErrno(err)
	}
	out.Attr.FromStat(&st)
	return 0
}

// Statfs reports the statistics of the filesystem backing the cache.
func (n *node) Statfs(ctx context.Context, out *fuse.StatfsOut) (errno syscall.Errno) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(n.bridge.resolver.CacheRoot(), &st); err != nil {
		return gofuse.ToErrno(err)
	}
	out.FromStatfsT(&st)
	return 0
}
