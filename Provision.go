package pipecheck

import (
	"strings"

	"golang.org/x/sys/unix"
)

// Owner and group can read and write the FIFO.
const PIPE_MODE = uint32(unix.S_IRUSR | unix.S_IWUSR | unix.S_IRGRP | unix.S_IWGRP)

// The parent directory also gets search bits, without them nothing inside could be opened.
const DIR_MODE = PIPE_MODE | unix.S_IXUSR | unix.S_IXGRP

// (Re)creates the FIFO at path.  Safe to call any number of times for the same path.
//
// An existing file at path is removed first, the parent directory is created when missing.
// Every failure returned here carries ERR_FATAL_SYSCALL.
func MakePipe(sys Sys, path string) error {
	if res := CheckErr(ABORT, sys.Unlink(path), unix.ENOENT); !res.Ok() {
		return res.Err()
	}

	if slash := strings.LastIndex(path, "/"); slash > 0 {
		if res := CheckErr(ABORT, sys.Mkdir(path[:slash], DIR_MODE), unix.EEXIST); !res.Ok() {
			return res.Err()
		}
	}

	return CheckErr(ABORT, sys.Mkfifo(path, PIPE_MODE)).Err()
}
