package storage

import "errors"

// ErrNotFound keeps storage-specific misses consistent across in-memory and
// future implementations. Services translate it into domain error codes; read
// accessors translate it into zero values.
var ErrNotFound = errors.New("record not found")
