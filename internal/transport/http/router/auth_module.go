package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/service"
	httpez "pharma-scanner/internal/transport/http/ez"
	mdw "pharma-scanner/internal/transport/http/middleware"
)

func rateLimitAuth() gin.HandlerFunc { return mdw.RateLimitPerIP(5, 10) }

// authModule 注册/登录/个人资料。
type authModule struct {
	auth *service.AuthService
}

func (m *authModule) Priority() int { return 10 }

type tokenOut struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (m *authModule) MountAPI(public, authed *gin.RouterGroup) {
	// 登录注册单独做每 IP 限速，防爆破
	authGrp := public.Group("/auth")
	authGrp.Use(rateLimitAuth())
	ezPublic := httpez.New(authGrp)

	httpez.Register(ezPublic, httpez.Action[service.SignupInput, tokenOut]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.SignupInput) (tokenOut, error) {
			u, tok, err := m.auth.Signup(c.Request.Context(), *in)
			if err != nil {
				return tokenOut{}, err
			}
			return tokenOut{Token: tok, User: u}, nil
		},
	})

	type loginIn struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	httpez.Register(ezPublic, httpez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			u, tok, err := m.auth.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return tokenOut{}, err
			}
			return tokenOut{Token: tok, User: u}, nil
		},
	})

	ezAuth := httpez.New(authed)

	httpez.Register(ezAuth, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			u, err := m.auth.GetUser(c.Request.Context(), httpez.UserID(c))
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			return u, nil
		},
	})

	type profileIn struct {
		Username *string `json:"username"`
		Photo    *string `json:"photo"`
	}
	httpez.Register(ezAuth, httpez.Action[profileIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileIn) (*domain.User, error) {
			return m.auth.UpdateProfile(c.Request.Context(), httpez.UserID(c),
				domain.UserUpdate{Username: in.Username, Photo: in.Photo})
		},
	})
}
