package domain

import "time"

const ExportVersion = 1

// ExportUser 导出文件里的用户摘要（不含口令摘要）。
type ExportUser struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportEnvelope 带版本号的全量快照。
//
// 往返约定：导入后每件商品除 id（丢弃重新分配）和 userId（绑到导入者）
// 外其余字段逐一还原。未知字段在导入时忽略。
type ExportEnvelope struct {
	Version    int        `json:"version"`
	ExportDate time.Time  `json:"exportDate"`
	User       ExportUser `json:"user"`
	Products   []Product  `json:"products"`
	Settings   *Settings  `json:"settings,omitempty"`
}

// ImportResult 汇报一次导入的规模。
type ImportResult struct {
	ProductsImported int  `json:"productsImported"`
	SettingsImported bool `json:"settingsImported"`
}
