package service

import "errors"

var (
	ErrInvalidPoint    = errors.New("invalid point")
	ErrNoRecordedPoint = errors.New("no point recorded yet")
	ErrInternalServer  = errors.New("internal server error")
)
