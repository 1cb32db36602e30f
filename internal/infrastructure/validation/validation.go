// Package validation 封装 go-playground/validator
// 客户端表单校验与开发后端的 gin 参数绑定共用同一套规则（binding 标签）和翻译
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"campus_lostfound/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator 校验器与对应语言的翻译器
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New 创建独立的校验器，locale 为 "en" 或 "zh"，其他值按 "en" 处理
func New(locale string) (*Validator, error) {
	v := validator.New()
	v.SetTagName("binding")
	trans, err := configure(v, locale)
	if err != nil {
		return nil, err
	}
	return &Validator{validate: v, trans: trans}, nil
}

// InitGin 把同样的规则与翻译装进 gin 的默认校验引擎
// 返回的 Validator 复用 gin 的引擎，用于翻译 ShouldBind 返回的错误
func InitGin(locale string) (*Validator, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("validation: unexpected gin validator engine %T", binding.Validator.Engine())
	}
	trans, err := configure(v, locale)
	if err != nil {
		return nil, err
	}
	return &Validator{validate: v, trans: trans}, nil
}

func configure(v *validator.Validate, locale string) (ut.Translator, error) {
	// 报错信息使用 json tag 作为字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	if err := v.RegisterValidation("itemtype", func(fl validator.FieldLevel) bool {
		return model.ItemType(fl.Field().String()).Valid()
	}); err != nil {
		return nil, err
	}

	zhT := zh.New()
	enT := en.New()
	// 第一个参数是 fallback 语言
	uni := ut.New(enT, zhT, enT)

	trans, ok := uni.GetTranslator(locale)
	if !ok {
		trans, _ = uni.GetTranslator("en")
		locale = "en"
	}

	var err error
	itemTypeMsg := "{0} must be one of the listed categories"
	switch locale {
	case "zh":
		err = zh_translations.RegisterDefaultTranslations(v, trans)
		itemTypeMsg = "{0}必须是列出的物品分类之一"
	default:
		err = en_translations.RegisterDefaultTranslations(v, trans)
	}
	if err != nil {
		return nil, err
	}

	err = v.RegisterTranslation("itemtype", trans,
		func(ut ut.Translator) error {
			return ut.Add("itemtype", itemTypeMsg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("itemtype", fe.Field())
			return msg
		},
	)
	return trans, err
}

// Struct 校验结构体
func (v *Validator) Struct(obj any) error {
	return v.validate.Struct(obj)
}

// Translate 把校验错误翻译为 字段 -> 提示 的映射，非校验错误返回 nil
func (v *Validator) Translate(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	return RemoveTopStruct(validationErrs.Translate(v.trans))
}

// FirstMessage 返回一条可直接展示的提示，按字段名排序保证稳定
func (v *Validator) FirstMessage(err error) string {
	fields := v.Translate(err)
	if len(fields) == 0 {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fields[keys[0]]
}

// RemoveTopStruct 去除提示信息中的结构体名称前缀，如 "SignupRequest.email"
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string)
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}
