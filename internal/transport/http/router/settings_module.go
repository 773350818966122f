package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/service"
	httpez "pharma-scanner/internal/transport/http/ez"
)

// settingsModule 每用户的偏好（语言/主题/通知开关）。
type settingsModule struct {
	settings *service.SettingsService
}

func (m *settingsModule) MountAPI(_, authed *gin.RouterGroup) {
	ez := httpez.New(authed)

	httpez.Register(ez, httpez.Action[struct{}, *domain.Settings]{
		Method: http.MethodGet,
		Path:   "/settings",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Settings, error) {
			return m.settings.Get(c.Request.Context(), httpez.UserID(c))
		},
	})

	httpez.Register(ez, httpez.Action[service.SettingsInput, *domain.Settings]{
		Method: http.MethodPut,
		Path:   "/settings",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.SettingsInput) (*domain.Settings, error) {
			return m.settings.Put(c.Request.Context(), httpez.UserID(c), *in)
		},
	})
}
