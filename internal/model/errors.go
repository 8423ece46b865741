package model

import "errors"

var (
	// ErrFullCapacity is returned when a reservation would exceed a node's capacity.
	ErrFullCapacity = errors.New("full capacity")
	// ErrInvalidWeightVector means the configured constants produced weights
	// that cannot be normalized.
	ErrInvalidWeightVector = errors.New("invalid weight vector")
	ErrEmptyNodeSet        = errors.New("empty node set")
	ErrUnknownNode         = errors.New("unknown node")
	ErrUnknownPolicy       = errors.New("unknown weight policy")
	// ErrInvalidRequest covers duplicate ids and negative or non-finite request values.
	ErrInvalidRequest = errors.New("invalid request")
)
