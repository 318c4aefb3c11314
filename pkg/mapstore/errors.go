package mapstore

import "errors"

var (
	// ErrNotFound is returned when a checkpoint tag has no snapshot stored.
	ErrNotFound = errors.New("mapstore: checkpoint not found")
	// ErrInvalidTag is returned for an empty checkpoint tag.
	ErrInvalidTag = errors.New("mapstore: invalid checkpoint tag")
	// ErrStoreClosed is returned by any operation after Close.
	ErrStoreClosed = errors.New("mapstore: store closed")
)
