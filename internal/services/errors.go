package services

import "errors"

var (
	ErrRoleTaken   = errors.New("role already bound")
	ErrMediaInUse  = errors.New("media is still bound to elements")
	ErrConflict    = errors.New("already exists")
	ErrInvalidName = errors.New("name is required")
)
