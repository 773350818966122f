package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/query"
	"pharma-scanner/internal/service"
	httpez "pharma-scanner/internal/transport/http/ez"
)

// statsModule 库存仪表盘。
type statsModule struct {
	stats *service.StatsService
}

func (m *statsModule) MountAPI(_, authed *gin.RouterGroup) {
	ez := httpez.New(authed)

	httpez.Register(ez, httpez.Action[struct{}, *query.Dashboard]{
		Method: http.MethodGet,
		Path:   "/stats",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*query.Dashboard, error) {
			return m.stats.Dashboard(c.Request.Context(), httpez.UserID(c))
		},
	})
}
