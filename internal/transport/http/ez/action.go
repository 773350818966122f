package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/service"
	resp "pharma-scanner/internal/transport/http/response"
)

/* ================== 轻封装 ================== */

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// UserID 取鉴权中间件塞进来的用户 ID；拿不到返回 0。
func UserID(c *gin.Context) uint {
	v, ok := c.Get("userId")
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}

/* ================== Action（非 CRUD 一行注册） ================== */

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// mapErr 把领域/服务层错误统一翻译成业务码。
// 处理函数既可以直接上抛领域错误，也可以用上面的构造器细化文案。
func mapErr(err error) (int, string) {
	var ae *AErr
	switch {
	case errors.As(err, &ae):
		return ae.Code, ae.Error()
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidImportFormat):
		return resp.CodeBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return resp.CodeUnauthorized, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return resp.CodeNotFound, err.Error()
	case errors.Is(err, domain.ErrDuplicateEmail),
		errors.Is(err, domain.ErrDuplicateUsername):
		return resp.CodeConflict, err.Error()
	default:
		return resp.CodeServerError, err.Error()
	}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/products/:id/favorite"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

// Register 在当前 EZ 下注册动作接口
func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if UserID(c) == 0 {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 {
				role := c.GetString("role")
				ok := false
				for _, r := range a.Roles {
					if role == r {
						ok = true
						break
					}
				}
				if !ok {
					c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
					return
				}
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			code, msg := mapErr(err)
			c.JSON(http.StatusOK, resp.Error(code, msg))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
