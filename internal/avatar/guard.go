package avatar

import "fmt"

// guard runs fn and turns a collaborator panic into an error, so engine bugs
// surface in the log instead of unwinding the game loop.
func guard(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", op, r)
		}
	}()
	return fn()
}
