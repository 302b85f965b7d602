package content

import "errors"

var (
	// ErrReadDir indicates the posts directory or one of its entries could not be read.
	ErrReadDir = errors.New("posts directory read failed")
)
