// This is a compatibility shim for POSIX-defined errno codes across platforms.
// The syscall package doesn't define all the values we need on all systems,
// particularly things like EUCLEAN and ENOTRECOVERABLE.

package errors

import (
	"fmt"
)

type Errno int

const (
	EOK Errno = iota
	ENOENT
	EIO
	EFAULT
	EINVAL
	EFBIG
	ENOSPC
	EDOM
	ENAMETOOLONG
	ENODATA
	EUCLEAN
	EMEDIUMTYPE
	ENOTRECOVERABLE
)

// ErrNotFound is returned when a program name has no directory entry.
var ErrNotFound = New(ENOENT)

// ErrIOFailed is returned when a sector transfer fails. The destination of a
// failed transfer must never be trusted.
var ErrIOFailed = New(EIO)

// ErrGeometryViolation is returned when a computed sector or memory address
// falls outside the volume or the destination region. It is always detected
// before any data is transferred.
var ErrGeometryViolation = NewWithMessage(EFAULT, "geometry violation")

// ErrDirectoryUnavailable is returned by directory lookups when the directory
// region could not be loaded.
var ErrDirectoryUnavailable = NewWithMessage(ENODATA, "directory unavailable")

var ErrInvalidArgument = New(EINVAL)
var ErrFileTooLarge = New(EFBIG)
var ErrNoSpaceOnDevice = New(ENOSPC)
var ErrArgumentOutOfRange = New(EDOM)
var ErrNameTooLong = New(ENAMETOOLONG)
var ErrFileSystemCorrupted = New(EUCLEAN)
var ErrInvalidFileSystem = New(EMEDIUMTYPE)

// ErrProgramReturned is raised when a loaded program hands control back to
// the loader, which the loader cannot recover from.
var ErrProgramReturned = NewWithMessage(
	ENOTRECOVERABLE, "loaded program returned control to the kernel")

// errorMessagesByCode is initialized statically rather than in init() so that
// the sentinel errors above get their messages during variable initialization.
var errorMessagesByCode = map[Errno]string{
	ENOENT:          "No such file or directory",
	EIO:             "Input/output error",
	EFAULT:          "Bad address",
	EINVAL:          "Invalid argument",
	EFBIG:           "File too large",
	ENOSPC:          "No space left on device",
	EDOM:            "Numerical argument out of domain",
	ENAMETOOLONG:    "File name too long",
	ENODATA:         "No data available",
	EUCLEAN:         "Structure needs cleaning",
	EMEDIUMTYPE:     "Wrong medium type",
	ENOTRECOVERABLE: "State not recoverable",
}

func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}
