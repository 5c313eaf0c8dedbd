// Package thread runs code on the main OS thread.
// Window libraries want all their calls made from the thread
// the app started on.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import "github.com/faiface/mainthread"

// Wrap runs the app function and serves main thread calls until it returns.
// It should be called from main.
func Wrap(f func()) { mainthread.Run(f) }

// Main calls f on the main thread and waits for it to finish.
// It blocks forever outside of Wrap.
func Main(f func()) { mainthread.Call(f) }

// MainErr is Main for functions with an error.
func MainErr(f func() error) error { return mainthread.CallErr(f) }
