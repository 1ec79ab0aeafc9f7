package eventloop

import "errors"

// ErrClosed is returned when work is posted to a closed loop.
var ErrClosed = errors.New("event loop closed")
