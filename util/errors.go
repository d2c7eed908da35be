package util

const (
	ErrCodeValueNotFoundInContext = 10000 + iota
	ErrCodeInvalidValueInContext
	ErrCodeInvalidDecimal
)
