// ABOUTME: Contract violations raised by the rooting layer
// ABOUTME: Coded, unrecoverable errors delivered to the thread's handler

package rooting

import (
	"fmt"
	"log/slog"
	"os"
)

// Code identifies a violated rooting contract.
type Code int

// Stable violation codes - do not change values.
const (
	ViolationWrongPhase          Code = 2001 // GC2001: operation used in the wrong phase
	ViolationNullHandle          Code = 2002 // GC2002: rooting an unwrapped or finalized object
	ViolationNotRooted           Code = 2003 // GC2003: unroot of an identity not in this registry
	ViolationDoubleRelease       Code = 2004 // GC2004: root released twice
	ViolationUseAfterRelease     Code = 2005 // GC2005: root used after release or move
	ViolationLeakedRoot          Code = 2006 // GC2006: roots left when the thread closed
	ViolationBadCast             Code = 2007 // GC2007: widening or trusted conversion failed
	ViolationReentrantInit       Code = 2008 // GC2008: once-cell producer re-entered the cell
	ViolationCollectDuringLayout Code = 2009 // GC2009: collection requested while layout runs
)

// String returns the code as "GC2001" format.
func (c Code) String() string {
	return fmt.Sprintf("GC%d", c)
}

// Violation describes a broken rooting contract. Memory safety may already be
// compromised when one is detected, so it is never returned as an error.
type Violation struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("rooting violation %s: %s", v.Code, v.Message)
}

// exit is replaced in tests of the default handler.
var exit = os.Exit

// AbortHandler returns the default violation handler: it logs the violation
// to logger at error level and exits the process with status 2.
func AbortHandler(logger *slog.Logger) func(*Violation) {
	return func(v *Violation) {
		logger.Error("rooting contract violated",
			slog.String("code", v.Code.String()),
			slog.String("message", v.Message))
		exit(2)
	}
}

// violate reports a violation through the thread's handler. A handler that
// returns does not resume the caller: the violation is raised as a panic.
func (t *Thread) violate(code Code, format string, args ...any) {
	v := &Violation{Code: code, Message: fmt.Sprintf(format, args...)}
	t.onViolation(v)
	panic(v)
}
