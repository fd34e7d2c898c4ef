package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/request"
	"github.com/eltobrgs/FrontEnd-RFSmartReact-sub000/pkg/validation"
)

const (
	RequestIDHeader = request.IDHeader
	requestIDKey    = "request_id"
)

// RequestID tags each request with an id that is echoed to the client and
// forwarded on backend calls. Caller-supplied ids are kept only when they are
// safe to place in a header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := validation.NormalizeID("request", c.GetHeader(RequestIDHeader))
		if err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDKey, id)
		c.Request = c.Request.WithContext(request.WithID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
