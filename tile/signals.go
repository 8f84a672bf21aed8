// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package tile

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// InstallSignalHandlers arms stop against SIGTERM, SIGINT, and SIGQUIT:
// the first such signal received sets stop (attributing it to the
// signal number), giving every tile sharing it a chance to observe the flag
// and tear down cleanly. If grace elapses without the process having
// exited on its own, the default handler is restored and the signal is
// re-raised against the process: the grace-period fallback described
// for process shutdown. A grace of zero disables the fallback re-raise.
//
// The returned stop function cancels signal delivery to the internal
// channel; callers normally defer it only in tests, since production
// code wants the handler installed for the process lifetime.
func InstallSignalHandlers(stop *StopFlag, grace time.Duration, logger *zap.Logger) (cancel func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigs:
			s, _ := sig.(syscall.Signal)
			logger.Info("tile: signal received, requesting stop", zap.Stringer("signal", s))
			stop.RequestBySignal(int(s))
			if grace > 0 {
				time.AfterFunc(grace, func() {
					logger.Warn("tile: grace period elapsed, re-raising default signal handling", zap.Stringer("signal", s))
					signal.Reset(s)
					_ = syscall.Kill(os.Getpid(), s)
				})
			}
		case <-done:
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigs)
	}
}

// InstallPanicHook wraps f so that a panic sets stop before the panic is
// allowed to propagate to the caller's own recover (if any). Go has no
// process-wide panic-hook registry, so this is realized as a call wrapper
// around the entry point a caller actually uses (typically the goroutine
// that waits on every tile and then os.Exit's), rather than a global
// install.
func InstallPanicHook(stop *StopFlag, f func()) {
	defer func() {
		if r := recover(); r != nil {
			stop.RequestScope()
			panic(r)
		}
	}()
	f()
}
