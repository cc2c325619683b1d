//go:build linux

// Package cpu pins worker goroutines to OS threads and, where the
// platform allows it, to CPU cores.
package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Pin locks the calling goroutine to an OS thread and pins that thread
// to the core derived from id (wrapped into the available range). The
// returned func releases the thread lock; the affinity mask dies with
// the thread.
func Pin(id int) func() {
	runtime.LockOSThread()

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(id % runtime.NumCPU())
	// Thread 0 means the calling thread. A failed pin is not worth
	// surfacing: the worker still runs, just unpinned.
	_ = unix.SchedSetaffinity(0, &mask)

	return runtime.UnlockOSThread
}
