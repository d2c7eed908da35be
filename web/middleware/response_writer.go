package middleware

import (
	"bytes"

	"github.com/gin-gonic/gin"
)

const maxLoggedBody = 1024

// responseWriter keeps the first maxLoggedBody bytes written for logging.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if room := maxLoggedBody - rw.body.Len(); room > 0 {
		rw.body.Write(b[:min(room, len(b))])
	}
	return rw.ResponseWriter.Write(b)
}
