//go:build !linux

// Package cpu pins worker goroutines to OS threads and, where the
// platform allows it, to CPU cores.
package cpu

import "runtime"

// Pin locks the calling goroutine to an OS thread. Core pinning is not
// available on this platform. The returned func releases the lock.
func Pin(id int) func() {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}
