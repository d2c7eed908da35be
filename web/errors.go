package web

const (
	ErrCodeLatestNotFound = 14000 + iota
	ErrCodeLatestUnavailable
	ErrCodeExportFailed
)
