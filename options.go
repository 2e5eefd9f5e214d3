// Copyright 2024 The saferwall/minidump Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package minidump

import "github.com/saferwall/minidump/log"

// Default ceilings applied to untrusted count fields when an Options value
// leaves them at zero. These mirror the teacher's
// MaxDefaultCOFFSymbolsCount/MaxDefaultRelocEntriesCount caps: a corrupt or
// hostile dump can claim an enormous stream count, and without a ceiling a
// single stream decode could allocate gigabytes before the bounds check on
// the backing slice ever fires.
const (
	DefaultMaxThreadCount      = 1 << 16
	DefaultMaxModuleCount      = 1 << 16
	DefaultMaxMemoryRangeCount = 1 << 20
)

// Options configures Read and ReadPath.
type Options struct {
	// Fast, when true, builds only the stream directory: no stream is
	// decoded until explicitly requested via GetStream/GetRawStream.
	Fast bool

	// MaxThreadCount, MaxModuleCount, MaxMemoryRangeCount cap the number of
	// records a single stream decode will materialize, regardless of what
	// the stream's own count field claims. Zero means use the package
	// default; a negative value means unlimited.
	MaxThreadCount      int
	MaxModuleCount      int
	MaxMemoryRangeCount int

	// Logger receives non-fatal warnings (e.g. range-map conflicts). A nil
	// Logger discards them.
	Logger log.Logger
}

func (o *Options) maxThreadCount() uint32      { return resolveMax(o, func(o *Options) int { return o.MaxThreadCount }, DefaultMaxThreadCount) }
func (o *Options) maxModuleCount() uint32      { return resolveMax(o, func(o *Options) int { return o.MaxModuleCount }, DefaultMaxModuleCount) }
func (o *Options) maxMemoryRangeCount() uint32 { return resolveMax(o, func(o *Options) int { return o.MaxMemoryRangeCount }, DefaultMaxMemoryRangeCount) }

func resolveMax(o *Options, field func(*Options) int, def int) uint32 {
	if o == nil {
		return uint32(def)
	}
	v := field(o)
	switch {
	case v < 0:
		return 0 // unlimited
	case v == 0:
		return uint32(def)
	default:
		return uint32(v)
	}
}

func (o *Options) logger() *log.Helper {
	if o == nil {
		return log.NewHelper(nil)
	}
	return log.NewHelper(o.Logger)
}
