package rate

import (
	"github.com/infigaming-com/gold-monitor/errors"
)

const (
	ErrCodeFeedRequest = 12000 + iota
	ErrCodeFeedStatus
	ErrCodeFeedPayload
)

// IsFeedError reports whether err is a transient upstream failure. The poller
// treats these as retryable.
func IsFeedError(err error) bool {
	return errors.HasCode(err, ErrCodeFeedRequest, ErrCodeFeedStatus, ErrCodeFeedPayload)
}
