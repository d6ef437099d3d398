//go:build !linux

package settings

import "runtime"

func machine() string {
	return runtime.GOARCH
}
