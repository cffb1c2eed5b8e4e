package middleware

import (
	"github.com/Delerious28/Andrew-webshop2-sub000/internal/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorMonitor 收集请求处理中产生的错误，供后台统计接口展示
type ErrorMonitor struct {
	analytics *errors.ErrorAnalytics
}

func NewErrorMonitor() *ErrorMonitor {
	return &ErrorMonitor{
		analytics: errors.NewErrorAnalytics(),
	}
}

func (m *ErrorMonitor) GetStats() map[string]interface{} {
	return m.analytics.GetStats()
}

func ErrorMonitorMiddleware(monitor *ErrorMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			userID := 0
			if id, ok := c.Get("user_id"); ok {
				userID = id.(int)
			}
			ctx := errors.ErrorContext{
				UserID: userID,
				Path:   c.Request.URL.Path,
				Method: c.Request.Method,
			}

			for _, e := range c.Errors {
				traced := errors.NewTracedError(e.Err, ctx)
				monitor.analytics.Record(traced)

				if appErr, ok := e.Err.(*errors.AppError); ok {
					zap.L().Error("请求处理错误",
						zap.Int("error_code", int(appErr.Code)),
						zap.String("error_message", appErr.Message),
						zap.Error(appErr.Err),
						zap.String("path", c.Request.URL.Path),
						zap.String("method", c.Request.Method))
				}
			}
		}
	}
}
