package errors

import (
	stderrors "errors"
)

var (
	ErrNotFound     = stderrors.New("NOT FOUND")
	ErrInvalidInput = stderrors.New("INVALID INPUT")
	ErrConflict     = stderrors.New("CONFLICT")
	ErrStorage      = stderrors.New("STORAGE")
	ErrRemote       = stderrors.New("REMOTE")
	ErrInternal     = stderrors.New("INTERNAL")
)
