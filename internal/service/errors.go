package service

import "errors"

var (
	// ErrInvalidInput 请求参数没过校验（长度、格式、枚举、取值范围）。
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials 登录失败统一报这个，不区分"邮箱不存在"和"密码错"。
	ErrInvalidCredentials = errors.New("invalid credentials")
)
