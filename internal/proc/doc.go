// Package proc spawns and tracks the session's child processes.
//
// Full process-group termination is only guaranteed on Linux, where signals
// delivered to the child's process group reach every member, including any
// helpers the display server or compatibility layer forks. On Windows the
// package offers best-effort semantics: signals go to the direct child only,
// and anything it spawned must be cleaned up separately by the caller.
package proc
