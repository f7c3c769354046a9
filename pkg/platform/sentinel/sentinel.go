package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and the voting service translates them into domain errors:
//   - ErrNotFound: no ballot under that id
//   - ErrAlreadyExists: Create on an id that is taken
//   - ErrConflict: a concurrent writer committed first
//   - ErrUnavailable: backend unreachable or gate wait timed out
//
// Validation and phase errors never come from stores; they live in
// pkg/domain-errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("unavailable")
)
