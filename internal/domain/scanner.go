package domain

import "context"

// Decoder 是条码识别的插拔点：一帧图像进、一个条码出。
// 具体解码器（摄像头、硬件扫描枪、第三方库）在服务外部实现，
// API 只接收已经解码好的条码字符串。
type Decoder interface {
	Decode(frame []byte) (barcode string, ok bool)
}

// ProductMetadata 外部商品库按条码返回的猜测信息。
type ProductMetadata struct {
	Barcode  string `json:"barcode"`
	Name     string `json:"name"`
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
}

// MetadataLookup 按条码查公共商品库；查不到返回 (nil, nil)。
type MetadataLookup interface {
	Lookup(ctx context.Context, barcode string) (*ProductMetadata, error)
}
