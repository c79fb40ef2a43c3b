package errs

import "errors"

// ErrServiceNotReady is the panic value of a Call made without a readiness grant.
var ErrServiceNotReady = errors.New("readygate: service not ready; readiness must be confirmed before invocation")

var ErrLimiterClosed = errors.New("readygate: limiter closed")
