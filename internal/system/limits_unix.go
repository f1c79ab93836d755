//go:build linux || darwin

package system

import (
	"syscall"

	"go.uber.org/zap"
)

// RaiseFileLimit lifts RLIMIT_NOFILE to want (or the hard maximum) so that
// wide worker pools do not run out of descriptors.
func RaiseFileLimit(log *zap.Logger, want uint64) {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn("cannot read open file limit", zap.Error(err))
		return
	}
	if rLimit.Cur >= want {
		return
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn("cannot raise open file limit", zap.Error(err))
		return
	}
	log.Debug("open file limit raised", zap.Uint64("limit", uint64(rLimit.Cur)))
}
