package wasi

import (
	"io/fs"
	"os"
	"strconv"
	"syscall"
)

// Errno is a WASI preview1 error number. The zero value is success.
type Errno uint16

const (
	ESUCCESS Errno = iota
	E2BIG
	EACCES
	EADDRINUSE
	EADDRNOTAVAIL
	EAFNOSUPPORT
	EAGAIN
	EALREADY
	EBADF
	EBADMSG
	EBUSY
	ECANCELED
	ECHILD
	ECONNABORTED
	ECONNREFUSED
	ECONNRESET
	EDEADLK
	EDESTADDRREQ
	EDOM
	EDQUOT
	EEXIST
	EFAULT
	EFBIG
	EHOSTUNREACH
	EIDRM
	EILSEQ
	EINPROGRESS
	EINTR
	EINVAL
	EIO
	EISCONN
	EISDIR
	ELOOP
	EMFILE
	EMLINK
	EMSGSIZE
	EMULTIHOP
	ENAMETOOLONG
	ENETDOWN
	ENETRESET
	ENETUNREACH
	ENFILE
	ENOBUFS
	ENODEV
	ENOENT
	ENOEXEC
	ENOLCK
	ENOLINK
	ENOMEM
	ENOMSG
	ENOPROTOOPT
	ENOSPC
	ENOSYS
	ENOTCONN
	ENOTDIR
	ENOTEMPTY
	ENOTRECOVERABLE
	ENOTSOCK
	ENOTSUP
	ENOTTY
	ENXIO
	EOVERFLOW
	EOWNERDEAD
	EPERM
	EPIPE
	EPROTO
	EPROTONOSUPPORT
	EPROTOTYPE
	ERANGE
	EROFS
	ESPIPE
	ESRCH
	ESTALE
	ETIMEDOUT
	ETXTBSY
	EXDEV
	ENOTCAPABLE
)

var errnoNames = map[Errno]string{
	ESUCCESS:    `success`,
	EACCES:      `permission denied`,
	EAGAIN:      `resource temporarily unavailable`,
	EBADF:       `bad file descriptor`,
	EEXIST:      `file exists`,
	EFAULT:      `bad address`,
	EINTR:       `interrupted system call`,
	EINVAL:      `invalid argument`,
	EIO:         `input/output error`,
	ENOENT:      `no such file or directory`,
	ENOMEM:      `out of memory`,
	ENOSYS:      `function not implemented`,
	ENOTSOCK:    `not a socket`,
	ENOTSUP:     `not supported`,
	EPERM:       `operation not permitted`,
	EPIPE:       `broken pipe`,
	ETIMEDOUT:   `timed out`,
	ENOTCAPABLE: `capabilities insufficient`,
}

// syscallErrnos maps to the host's errno, for errors.Is.
var syscallErrnos = map[Errno]syscall.Errno{
	EACCES:    syscall.EACCES,
	EAGAIN:    syscall.EAGAIN,
	EBADF:     syscall.EBADF,
	EEXIST:    syscall.EEXIST,
	EFAULT:    syscall.EFAULT,
	EINTR:     syscall.EINTR,
	EINVAL:    syscall.EINVAL,
	EIO:       syscall.EIO,
	ENOENT:    syscall.ENOENT,
	ENOSYS:    syscall.ENOSYS,
	ENOTSOCK:  syscall.ENOTSOCK,
	EPERM:     syscall.EPERM,
	EPIPE:     syscall.EPIPE,
	ETIMEDOUT: syscall.ETIMEDOUT,
}

func (e Errno) Error() string {
	if s, ok := errnoNames[e]; ok {
		return `wasi: ` + s
	}
	return `wasi: errno ` + strconv.Itoa(int(e))
}

// Is matches the equivalent host [syscall.Errno], and the [fs] sentinels.
func (e Errno) Is(target error) bool {
	switch target {
	case fs.ErrNotExist:
		return e == ENOENT
	case fs.ErrExist:
		return e == EEXIST
	case fs.ErrPermission:
		return e == EACCES || e == EPERM || e == ENOTCAPABLE
	case os.ErrDeadlineExceeded:
		return e == ETIMEDOUT
	}
	if target, ok := target.(syscall.Errno); ok {
		if s, ok := syscallErrnos[e]; ok {
			return s == target
		}
	}
	return false
}
