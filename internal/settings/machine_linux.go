//go:build linux

package settings

import (
	"runtime"

	"golang.org/x/sys/unix"
)

func machine() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return runtime.GOARCH
	}
	return unix.ByteSliceToString(u.Machine[:])
}
