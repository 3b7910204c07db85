package propagation

import "errors"

var ErrQueueStopped = errors.New("propagation queue is stopped")
