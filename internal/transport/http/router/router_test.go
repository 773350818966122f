package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pharma-scanner/internal/core/auth"
	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/repo"
	"pharma-scanner/internal/service"
	"pharma-scanner/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	engine *gin.Engine
	admin  *gin.Engine
	jwter  *auth.JWTer
	db     *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Product{}, &domain.Settings{}))

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "pharma-scanner", TTL: time.Hour}
	users := repo.NewUserRepo(db)
	products := repo.NewProductRepo(db)
	settings := repo.NewSettingsRepo(db)

	stats := service.NewStatsService(products, nil)
	backup := service.NewBackupService(db, users, products, settings, stats)
	deps := Deps{
		Auth:     service.NewAuthService(users, settings, jwter),
		Products: service.NewProductService(products, nil, stats),
		Stats:    stats,
		Settings: service.NewSettingsService(settings),
		Backup:   backup,
		JWTer:    jwter,
	}
	return &fixture{
		engine: NewAPIEngine(zap.NewNop(), deps),
		admin:  NewAdminEngine(zap.NewNop(), jwter, users, backup),
		jwter:  jwter,
		db:     db,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (f *fixture) do(t *testing.T, engine *gin.Engine, method, path, token string, body any) envelope {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func (f *fixture) signup(t *testing.T, email, username string) string {
	t.Helper()
	env := f.do(t, f.engine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"username": username, "email": email,
		"password": "secret1", "passwordConfirm": "secret1",
	})
	require.Equal(t, response.CodeOK, env.Code, env.Msg)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestSignupLoginMe(t *testing.T) {
	f := newFixture(t)
	tok := f.signup(t, "a@b.fr", "alice")

	env := f.do(t, f.engine, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var me domain.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "alice", me.Username)

	// 重复邮箱 → 409
	env = f.do(t, f.engine, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"username": "alice2", "email": "a@b.fr",
		"password": "secret1", "passwordConfirm": "secret1",
	})
	assert.Equal(t, response.CodeConflict, env.Code)

	// 错密码 → 401
	env = f.do(t, f.engine, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email": "a@b.fr", "password": "wrong!",
	})
	assert.Equal(t, response.CodeUnauthorized, env.Code)

	// 没带 token → 401
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, response.CodeUnauthorized, env.Code)
}

func TestProductEndpoints(t *testing.T) {
	f := newFixture(t)
	tok := f.signup(t, "a@b.fr", "alice")

	// 创建
	env := f.do(t, f.engine, http.MethodPost, "/api/v1/products", tok, gin.H{
		"name": "Doliprane", "barcode": "340093", "price": 2.5, "category": "painkiller",
	})
	require.Equal(t, response.CodeOK, env.Code, env.Msg)
	var created domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &created))
	require.NotZero(t, created.ID)

	// 列表 + 过滤
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/products?search=doli", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var list struct {
		Total int              `json:"total"`
		Items []domain.Product `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)

	// 收藏切换
	env = f.do(t, f.engine, http.MethodPost, "/api/v1/products/"+itoa(created.ID)+"/favorite", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var favOut struct {
		Favorite bool `json:"favorite"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &favOut))
	assert.True(t, favOut.Favorite)

	// 条码精查
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/products/barcode/340093", tok, nil)
	assert.Equal(t, response.CodeOK, env.Code)

	// 没有匹配不是错误：code 0，data 为 null
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/products/barcode/000000", tok, nil)
	assert.Equal(t, response.CodeOK, env.Code)
	assert.Equal(t, "null", string(env.Data))

	// 扫码：本地命中
	env = f.do(t, f.engine, http.MethodPost, "/api/v1/scan", tok, gin.H{"barcode": "340093"})
	require.Equal(t, response.CodeOK, env.Code)
	var scan service.ScanResult
	require.NoError(t, json.Unmarshal(env.Data, &scan))
	assert.True(t, scan.Known)

	// 不存在的商品 → 404
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/products/99999", tok, nil)
	assert.Equal(t, response.CodeNotFound, env.Code)

	// 别人的商品等同不存在
	tok2 := f.signup(t, "b@b.fr", "bob")
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/products/"+itoa(created.ID), tok2, nil)
	assert.Equal(t, response.CodeNotFound, env.Code)

	// 删除幂等
	env = f.do(t, f.engine, http.MethodDelete, "/api/v1/products/"+itoa(created.ID), tok, nil)
	assert.Equal(t, response.CodeOK, env.Code)
	env = f.do(t, f.engine, http.MethodDelete, "/api/v1/products/"+itoa(created.ID), tok, nil)
	assert.Equal(t, response.CodeOK, env.Code)
}

func TestStatsAndSettings(t *testing.T) {
	f := newFixture(t)
	tok := f.signup(t, "a@b.fr", "alice")

	f.do(t, f.engine, http.MethodPost, "/api/v1/products", tok, gin.H{"name": "A", "price": 10})
	f.do(t, f.engine, http.MethodPost, "/api/v1/products", tok, gin.H{"name": "B", "price": 30})

	env := f.do(t, f.engine, http.MethodGet, "/api/v1/stats", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var stats struct {
		Total   int     `json:"total"`
		Average float64 `json:"average"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 20.0, stats.Average)

	// 注册时写入的缺省设置
	env = f.do(t, f.engine, http.MethodGet, "/api/v1/settings", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var st domain.Settings
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "fr", st.Language)

	env = f.do(t, f.engine, http.MethodPut, "/api/v1/settings", tok, gin.H{
		"language": "en", "theme": "dark", "notifications": true,
	})
	require.Equal(t, response.CodeOK, env.Code)

	// 非法主题 → 400
	env = f.do(t, f.engine, http.MethodPut, "/api/v1/settings", tok, gin.H{
		"language": "en", "theme": "neon",
	})
	assert.Equal(t, response.CodeBadRequest, env.Code)
}

func TestBackupEndpoints(t *testing.T) {
	f := newFixture(t)
	tok := f.signup(t, "a@b.fr", "alice")
	f.do(t, f.engine, http.MethodPost, "/api/v1/products", tok, gin.H{"name": "Doliprane", "price": 2.5})

	env := f.do(t, f.engine, http.MethodGet, "/api/v1/export", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var exported domain.ExportEnvelope
	require.NoError(t, json.Unmarshal(env.Data, &exported))
	assert.Equal(t, domain.ExportVersion, exported.Version)
	assert.Len(t, exported.Products, 1)

	// 清空后再导入回来
	env = f.do(t, f.engine, http.MethodDelete, "/api/v1/data", tok, nil)
	require.Equal(t, response.CodeOK, env.Code)

	env = f.do(t, f.engine, http.MethodPost, "/api/v1/import", tok, exported)
	require.Equal(t, response.CodeOK, env.Code)
	var res domain.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.ProductsImported)

	// 无效文件 → 400
	env = f.do(t, f.engine, http.MethodPost, "/api/v1/import", tok, gin.H{"version": 1})
	assert.Equal(t, response.CodeBadRequest, env.Code)
}

func TestAdminEndpoints(t *testing.T) {
	f := newFixture(t)
	userTok := f.signup(t, "a@b.fr", "alice")

	// 普通用户 token 进管理端 → 403
	env := f.do(t, f.admin, http.MethodGet, "/admin/v1/users", userTok, nil)
	assert.Equal(t, response.CodeForbidden, env.Code)

	adminTok, err := f.jwter.Issue(1, "admin")
	require.NoError(t, err)

	env = f.do(t, f.admin, http.MethodGet, "/admin/v1/users", adminTok, nil)
	require.Equal(t, response.CodeOK, env.Code)
	var list struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.Total)

	// 封禁：删账号和数据
	env = f.do(t, f.admin, http.MethodPost, "/admin/v1/users/1/ban", adminTok, nil)
	require.Equal(t, response.CodeOK, env.Code)

	env = f.do(t, f.admin, http.MethodPost, "/admin/v1/users/1/ban", adminTok, nil)
	assert.Equal(t, response.CodeNotFound, env.Code)
}

func itoa(v uint) string { return strconv.FormatUint(uint64(v), 10) }
