package router

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pharma-scanner/internal/core/auth"
	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/service"
	httpez "pharma-scanner/internal/transport/http/ez"
	mdw "pharma-scanner/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, users domain.UserRepository, backup *service.BackupService) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, "admin"))

	reg := NewRegistry()
	reg.Register(&adminUserModule{users: users, backup: backup})
	reg.MountAllAdmin(admin)

	return r
}

// adminUserModule 用户列表和封禁。
type adminUserModule struct {
	users  domain.UserRepository
	backup *service.BackupService
}

func (m *adminUserModule) MountAdmin(admin *gin.RouterGroup) {
	ez := httpez.New(admin)

	// --- GET /admin/v1/users  用户列表 ---
	type listQ struct {
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=20"`
		Q      string `form:"q"` // 按 email/username 模糊搜
	}
	type row struct {
		ID        uint      `json:"id"`
		Email     string    `json:"email"`
		Username  string    `json:"username"`
		CreatedAt time.Time `json:"createdAt"`
	}
	type listOut struct {
		Total int64 `json:"total"`
		Items []row `json:"items"`
	}
	httpez.Register(ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := m.users.List(c.Request.Context(), in.Offset, in.Limit, in.Q)
			if err != nil {
				return listOut{}, httpez.Internal("list users failed", err)
			}
			out := listOut{Total: total, Items: make([]row, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, row{
					ID: u.ID, Email: u.Email, Username: u.Username, CreatedAt: u.CreatedAt,
				})
			}
			return out, nil
		},
	})

	// --- POST /admin/v1/users/:id/ban  封禁：删账号并清走全部数据 ---
	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, ok := paramID(c)
			if !ok {
				return nil, httpez.BadRequest("missing id")
			}
			u, err := m.users.GetByID(c.Request.Context(), id)
			if err != nil {
				return nil, httpez.Internal("load user failed", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			if err := m.backup.ClearAndDeleteUser(c.Request.Context(), id); err != nil {
				return nil, httpez.Internal("ban user failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})
}
