package go_func_utils

import (
	"fmt"
	"log"
	"runtime/debug"
)

func SafeGo(logger *log.Logger, fn func()) {
	// the curses UI swallows up errors to stdout, so capture the panic in
	// our logger before crashing out again...
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Printf("PANIC: %v\n%s", r, debug.Stack())
				panic(r)
			}
		}()
		fn()
	}()
}

// SafeCall runs fn and converts a panic into an error instead of crashing.
// Used for best-effort side channels whose failure must stay local.
func SafeCall(logger *log.Logger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
			err = fmt.Errorf("%s panicked: %v", name, r)
		}
	}()
	return fn()
}
