// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"os"
	"path/filepath"
)

// Namespace resolves the on-disk paths every shared-memory region this
// module creates lives under, mirroring the "named paths" directory
// layout: <base>/<app>/shmem/queues/<name> for queues and
// <base>/<app>/shmem/data/<name> for seqlock arrays and scalar shared
// values.
//
// No directories/XDG-path crate equivalent appears anywhere in the
// retrieved corpus; this one path-joining helper is deliberately built on
// stdlib os/path-filepath rather than introducing a fabricated dependency
// for a single function (see DESIGN.md).
type Namespace struct {
	AppName string
	BaseDir string
}

// DefaultBaseDir returns $XDG_DATA_HOME if set, else
// $HOME/.local/share, else /tmp as a last resort.
func DefaultBaseDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share")
	}
	return os.TempDir()
}

// NewNamespace returns a Namespace for appName, using [DefaultBaseDir] if
// baseDir is empty.
func NewNamespace(appName, baseDir string) Namespace {
	if baseDir == "" {
		baseDir = DefaultBaseDir()
	}
	return Namespace{AppName: appName, BaseDir: baseDir}
}

func (ns Namespace) root() string {
	return filepath.Join(ns.BaseDir, ns.AppName, "shmem")
}

// QueuePath returns the path a queue named name should be created at or
// attached from.
func (ns Namespace) QueuePath(name string) string {
	return filepath.Join(ns.root(), "queues", name)
}

// DataPath returns the path a seqlock array or scalar shared value named
// name should be created at or attached from.
func (ns Namespace) DataPath(name string) string {
	return filepath.Join(ns.root(), "data", name)
}

// LogsPath returns the directory this application's log files live under.
func (ns Namespace) LogsPath() string {
	return filepath.Join(ns.BaseDir, ns.AppName, "logs")
}

// EnsureDirs creates every directory a Namespace resolves paths under,
// a convenience for application startup.
func (ns Namespace) EnsureDirs() error {
	for _, dir := range []string{
		filepath.Join(ns.root(), "queues"),
		filepath.Join(ns.root(), "data"),
		ns.LogsPath(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
