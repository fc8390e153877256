package repository

import "errors"

// ErrConflict indicates a guarded write matched no row in the expected state.
var ErrConflict = errors.New("record changed concurrently or is locked")
