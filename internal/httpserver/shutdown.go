package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown; in-flight streams beyond it are
// dropped.
var ShutdownTimeout = 10 * time.Second
