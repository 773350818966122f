package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/service"
	httpez "pharma-scanner/internal/transport/http/ez"
)

// backupModule 全量导出/导入/清空。
type backupModule struct {
	backup *service.BackupService
}

func (m *backupModule) Priority() int { return 90 }

func (m *backupModule) MountAPI(_, authed *gin.RouterGroup) {
	ez := httpez.New(authed)

	httpez.Register(ez, httpez.Action[struct{}, *domain.ExportEnvelope]{
		Method: http.MethodGet,
		Path:   "/export",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.ExportEnvelope, error) {
			return m.backup.Export(c.Request.Context(), httpez.UserID(c))
		},
	})

	httpez.Register(ez, httpez.Action[domain.ExportEnvelope, *domain.ImportResult]{
		Method: http.MethodPost,
		Path:   "/import",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.ExportEnvelope) (*domain.ImportResult, error) {
			return m.backup.Import(c.Request.Context(), httpez.UserID(c), in)
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/data",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := m.backup.Clear(c.Request.Context(), httpez.UserID(c)); err != nil {
				return nil, err
			}
			return gin.H{"cleared": true}, nil
		},
	})
}
