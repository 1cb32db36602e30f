package handler

import (
	"campus_lostfound/internal/infrastructure/validation"
)

// Validate 翻译 gin 参数校验错误的全局校验器
var Validate *validation.Validator

// InitTrans 初始化 gin 校验引擎的翻译器
// locale 参数指定语言，例如 "zh" 或 "en"
func InitTrans(locale string) (err error) {
	Validate, err = validation.InitGin(locale)
	return err
}
