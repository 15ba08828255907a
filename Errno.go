package pipecheck

import (
	"cmp"

	omap "github.com/akalinux/orderedmap"
	"golang.org/x/sys/unix"
)

// Name used when an errno is neither in ERRNO_NAMES nor known to x/sys/unix.
const UNKNOWN_ERRNO = "UNKNOWN"

type errnoEntry struct {
	Errno unix.Errno
	Name  string
}

// Symbolic names for the errno values this harness expects to run into.
// Entries here win over the x/sys/unix table.
var ERRNO_NAMES = newErrnoCatalog(
	errnoEntry{unix.ECOMM, "ECOMM"},
	errnoEntry{unix.EAGAIN, "EAGAIN"},
	errnoEntry{unix.ENXIO, "ENXIO"},
	errnoEntry{unix.EEXIST, "EEXIST"},
	errnoEntry{unix.ENOENT, "ENOENT"},
	errnoEntry{unix.EACCES, "EACCES"},
	errnoEntry{unix.EPERM, "EPERM"},
	errnoEntry{unix.EINTR, "EINTR"},
	errnoEntry{unix.EBADF, "EBADF"},
	errnoEntry{unix.EINVAL, "EINVAL"},
	errnoEntry{unix.EPIPE, "EPIPE"},
	errnoEntry{unix.ENOTDIR, "ENOTDIR"},
	errnoEntry{unix.EISDIR, "EISDIR"},
	errnoEntry{unix.ELOOP, "ELOOP"},
	errnoEntry{unix.ENAMETOOLONG, "ENAMETOOLONG"},
	errnoEntry{unix.ENOSPC, "ENOSPC"},
	errnoEntry{unix.EROFS, "EROFS"},
)

func newErrnoCatalog(list ...errnoEntry) *omap.SliceTree[unix.Errno, string] {
	tree := omap.NewSliceTree[unix.Errno, string](len(list), cmp.Compare)
	for _, e := range list {
		tree.Put(e.Errno, e.Name)
	}
	return tree
}

// Returns the symbolic name of errno, falling back to the x/sys/unix table and then to UNKNOWN_ERRNO.
func ErrnoName(errno unix.Errno) string {
	return errnoNameFrom(ERRNO_NAMES, errno)
}

func errnoNameFrom(catalog *omap.SliceTree[unix.Errno, string], errno unix.Errno) string {
	if name, ok := catalog.Get(errno); ok && name != "" {
		return name
	}
	if name := unix.ErrnoName(errno); name != "" {
		return name
	}
	return UNKNOWN_ERRNO
}
