package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/duccv/medrecords-api/internal/constant"
)

func CorrelationIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(constant.HeaderCorrelationID)
		if cid == "" || len(cid) > 128 {
			cid = uuid.NewString()
		}
		ctx := context.WithValue(c.Request.Context(), constant.CorrelationIDKey, cid)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(constant.HeaderCorrelationID, cid)
		c.Next()
	}
}

// CorrelationID returns the id attached by CorrelationIDMiddleware.
func CorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(constant.CorrelationIDKey).(string)
	return cid
}
