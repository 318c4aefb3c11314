package attribute

import "errors"

var (
	// ErrAlreadyWritten is returned by Insert when the target slot is not
	// empty.
	ErrAlreadyWritten = errors.New("attribute: slot already written")
	// ErrFailedAttributeOp wraps a rejection from a user-supplied Functor
	// (Merge/Split/MergeFromOne/MergeFromNone). It is a domain abort: the
	// enclosing transaction is not retried.
	ErrFailedAttributeOp = errors.New("attribute: attribute operation rejected")
)
