package gscl

import "errors"

var (
	//ErrInvalidInput is returned when the argument is not a well-formed tree or score table.
	ErrInvalidInput = errors.New("invalid input")
	//ErrDivisionByZero is returned by Normalize when the scores sum to zero.
	ErrDivisionByZero = errors.New("division by zero")
)
