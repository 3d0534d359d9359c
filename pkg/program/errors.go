package program

import "errors"

// ErrInvalidArgument is the program's single error outcome: every rejected
// instruction — a bad account, a malformed body, a violated invariant —
// surfaces as exactly this sentinel. The program does not distinguish
// failure reasons to a caller; it only ever logs nothing and returns.
var ErrInvalidArgument = errors.New("program: invalid argument")
