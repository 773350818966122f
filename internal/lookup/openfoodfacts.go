package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"pharma-scanner/internal/domain"
)

// OpenFoodFacts 按条码查公共商品库，给扫码到的未知条码预填名称/品牌。
// 查询失败只记日志不上抛致命错误，上层把它当"查不到"处理。
type OpenFoodFacts struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewOpenFoodFacts(baseURL string, timeout time.Duration, log *zap.Logger) *OpenFoodFacts {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OpenFoodFacts{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// 响应里只取用得上的字段，其余忽略
type offResponse struct {
	Status  int `json:"status"` // 1=found, 0=not found
	Product struct {
		ProductName string `json:"product_name"`
		Brands      string `json:"brands"`
		Categories  string `json:"categories"`
	} `json:"product"`
}

func (o *OpenFoodFacts) Lookup(ctx context.Context, barcode string) (*domain.ProductMetadata, error) {
	u := fmt.Sprintf("%s/api/v0/product/%s.json", o.baseURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Warn("product lookup request failed", zap.String("barcode", barcode), zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		o.log.Warn("product lookup unexpected status", zap.String("barcode", barcode), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("lookup: unexpected status %d", resp.StatusCode)
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("lookup: decode response: %w", err)
	}
	if body.Status != 1 || body.Product.ProductName == "" {
		return nil, nil
	}
	return &domain.ProductMetadata{
		Barcode:  barcode,
		Name:     body.Product.ProductName,
		Brand:    firstCSV(body.Product.Brands),
		Category: firstCSV(body.Product.Categories),
	}, nil
}

// firstCSV 取逗号分隔列表的第一项（OFF 的 brands/categories 都是这种格式）。
func firstCSV(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
