package utils

import (
	"io"
	"log"
)

// Reporter receives progress and diagnostic lines. *log.Logger satisfies it.
type Reporter interface {
	Printf(format string, v ...any)
}

// DiscardReporter drops everything.
func DiscardReporter() Reporter {
	return log.New(io.Discard, "", 0)
}
