package term

import "github.com/pkg/errors"

// ErrOutOfMemory is wrapped and returned by New and Resize when grid
// allocation fails with grid.ErrOutOfMemory; the returned error carries that
// error's message, but errors.Is/errors.Cause resolve to this sentinel.
var ErrOutOfMemory = errors.New("term: out of memory")

// ErrWriteFailure is wrapped and returned by ReportWriteFailure when the
// host's write of drained output to the child process fails. The core
// never attempts that write itself (spec.md §1 scopes the pseudo-terminal
// and its I/O out as an external collaborator); this sentinel exists so the
// host can surface the failure through the same errors.Is/errors.Cause
// vocabulary as the core's own errors.
var ErrWriteFailure = errors.New("term: write to child failed")

// ErrEOF is wrapped and returned by ReportEOF when the host reports the
// child process has closed its output; see spec.md §7.
var ErrEOF = errors.New("term: child EOF")
