package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharma-scanner/internal/domain"
	"pharma-scanner/internal/service"
	httpez "pharma-scanner/internal/transport/http/ez"
)

// productModule 商品 CRUD + 收藏 + 条码 + 扫码。
type productModule struct {
	products *service.ProductService
}

func (m *productModule) Priority() int { return 20 }

func (m *productModule) MountAPI(_, authed *gin.RouterGroup) {
	ez := httpez.New(authed)

	type listQ struct {
		Search   string `form:"search"`
		Category string `form:"category"`
		Sort     string `form:"sort"`
	}
	type listOut struct {
		Total int              `json:"total"`
		Items []domain.Product `json:"items"`
	}
	httpez.Register(ez, httpez.Action[listQ, listOut]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listQ) (listOut, error) {
			items, err := m.products.List(c.Request.Context(), httpez.UserID(c), in.Search, in.Category, in.Sort)
			if err != nil {
				return listOut{}, err
			}
			if items == nil {
				items = []domain.Product{}
			}
			return listOut{Total: len(items), Items: items}, nil
		},
	})

	httpez.Register(ez, httpez.Action[service.CreateProductInput, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *service.CreateProductInput) (*domain.Product, error) {
			return m.products.Create(c.Request.Context(), httpez.UserID(c), *in)
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			id, ok := paramID(c)
			if !ok {
				return nil, httpez.NotFound("product not found")
			}
			p, err := m.products.Get(c.Request.Context(), httpez.UserID(c), id)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			return p, nil
		},
	})

	type updateIn struct {
		Barcode     *string    `json:"barcode"`
		Name        *string    `json:"name"`
		Price       *float64   `json:"price"`
		Category    *string    `json:"category"`
		Description *string    `json:"description"`
		ExpiryDate  *time.Time `json:"expiryDate"`
		Quantity    *int       `json:"quantity"`
		Favorite    *bool      `json:"favorite"`
		Photo       *string    `json:"photo"`
	}
	httpez.Register(ez, httpez.Action[updateIn, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *updateIn) (*domain.Product, error) {
			id, ok := paramID(c)
			if !ok {
				return nil, httpez.NotFound("product not found")
			}
			return m.products.Update(c.Request.Context(), httpez.UserID(c), id, domain.ProductUpdate{
				Barcode:     in.Barcode,
				Name:        in.Name,
				Price:       in.Price,
				Category:    in.Category,
				Description: in.Description,
				ExpiryDate:  in.ExpiryDate,
				Quantity:    in.Quantity,
				Favorite:    in.Favorite,
				Photo:       in.Photo,
			})
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, ok := paramID(c)
			if !ok {
				return gin.H{"deleted": false}, nil
			}
			if err := m.products.Delete(c.Request.Context(), httpez.UserID(c), id); err != nil {
				return nil, err
			}
			return gin.H{"deleted": true}, nil
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/products/:id/favorite",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, ok := paramID(c)
			if !ok {
				return nil, httpez.NotFound("product not found")
			}
			fav, err := m.products.ToggleFavorite(c.Request.Context(), httpez.UserID(c), id)
			if err != nil {
				return nil, err
			}
			return gin.H{"favorite": fav}, nil
		},
	})

	httpez.Register(ez, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/barcode/:code",
		Binder: httpez.BindNone,
		Auth:   true,
		// 没有匹配不是错误：照常回 code 0，data 为 null
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			return m.products.GetByBarcode(c.Request.Context(), httpez.UserID(c), c.Param("code"))
		},
	})

	type scanIn struct {
		Barcode string `json:"barcode" binding:"required"`
	}
	httpez.Register(ez, httpez.Action[scanIn, *service.ScanResult]{
		Method: http.MethodPost,
		Path:   "/scan",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *scanIn) (*service.ScanResult, error) {
			return m.products.Scan(c.Request.Context(), httpez.UserID(c), in.Barcode)
		},
	})
}
