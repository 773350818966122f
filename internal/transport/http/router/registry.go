package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// APIModule 挂载用户端路由；public 无需登录，authed 已过 JWT 中间件。
type APIModule interface {
	MountAPI(public, authed *gin.RouterGroup)
}

// AdminModule 挂载管理端路由（分组整体要求 admin 角色）。
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// Registry 每个 engine 一份，不做包级全局（测试里会建多个 engine）。
type Registry struct {
	mu        sync.RWMutex
	apiMods   []APIModule
	adminMods []AdminModule
}

func NewRegistry() *Registry { return &Registry{} }

// Register 统一注册入口：根据类型断言分发到 API/Admin 列表
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(APIModule); ok {
		r.apiMods = append(r.apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.adminMods = append(r.adminMods, m)
	}
}

// MountAllAPI 在 /api/v1 上挂载所有已注册的 API 模块
func (r *Registry) MountAllAPI(public, authed *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]APIModule(nil), r.apiMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAPI(public, authed)
	}
}

// MountAllAdmin 在 /admin/v1 上挂载所有已注册的 Admin 模块
func (r *Registry) MountAllAdmin(admin *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]AdminModule(nil), r.adminMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountAdmin(admin)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
