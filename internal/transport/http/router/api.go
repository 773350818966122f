package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pharma-scanner/internal/core/auth"
	"pharma-scanner/internal/service"
	mdw "pharma-scanner/internal/transport/http/middleware"
)

// Deps 用户端路由需要的全部服务。
type Deps struct {
	Auth     *service.AuthService
	Products *service.ProductService
	Stats    *service.StatsService
	Settings *service.SettingsService
	Backup   *service.BackupService
	JWTer    *auth.JWTer
}

func NewAPIEngine(l *zap.Logger, d Deps) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20), // 照片 data-URI 和导入文件都内嵌在 JSON 里
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// PWA 前端跨域访问
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 前缀
	api := r.Group("/api/v1")

	// 鉴权分组（商品/统计/设置/备份全在这里）
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWTer, ""))

	reg := NewRegistry()
	reg.Register(&authModule{auth: d.Auth})
	reg.Register(&productModule{products: d.Products})
	reg.Register(&statsModule{stats: d.Stats})
	reg.Register(&settingsModule{settings: d.Settings})
	reg.Register(&backupModule{backup: d.Backup})
	reg.MountAllAPI(api, authed)

	return r
}

// paramID 解析 :id 路径参数；非数字一律按"不存在"处理。
func paramID(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
