package repository

import "errors"

// ErrNotFound is returned when a lookup or mutation targets a row that
// does not exist. Callers treat it as a 404, not a storage fault.
var ErrNotFound = errors.New("record not found")
