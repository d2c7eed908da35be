package request

const (
	ErrCodeInvalidSlowRequestThreshold = 11000 + iota
	ErrCodeFailedToCreateRequest
	ErrCodeFailedToSendRequest
	ErrCodeFailedToReadResponseBody
	ErrCodeRequestTimeout
)
