package models

import "errors"

var (
	ErrUnknownKind  = errors.New("unknown entity kind")
	ErrTimestamp    = errors.New("malformed timestamp")
	ErrInvalidField = errors.New("invalid field value")
	ErrNoRelation   = errors.New("no relation between kinds")
	ErrProtected    = errors.New("field cannot be changed")
)
