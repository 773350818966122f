package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/core/auth"
	resp "pharma-scanner/internal/transport/http/response"
)

// AuthJWT 校验 Bearer token，把数字用户 ID 和角色塞进上下文。
// requireRole 非空时还要求角色匹配（管理端传 "admin"）。
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("userId", claims.UID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
