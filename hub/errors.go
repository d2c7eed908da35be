package hub

import (
	"github.com/infigaming-com/gold-monitor/errors"
)

const (
	ErrCodeRegistryClosed = 13000 + iota
	ErrCodeDuplicateSubscriber
	ErrCodeSubscriberClosed
	ErrCodeSnapshotEncode
)

var (
	ErrRegistryClosed   = errors.NewError(ErrCodeRegistryClosed, "registry closed", nil)
	ErrSubscriberClosed = errors.NewError(ErrCodeSubscriberClosed, "subscriber closed", nil)
)
