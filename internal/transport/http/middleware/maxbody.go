package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "pharma-scanner/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小。
// 商品照片以 data-URI 内嵌在 JSON 里，导入文件也走这里，上限要留宽。
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Err() != nil && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeBadRequest, "request body too large"))
		}
	}
}
