// Package validation はフォーム入力の型付きペイロードと、その検証を提供します。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yourusername/members-only/internal/models"
)

// カスタムタグ
const (
	// tagUTF16Max は UTF-16 コード単位で数えた最大長です。
	// 20 単位は最大 60 バイトで、bcrypt の 72 バイト制限に収まります。
	tagUTF16Max = "utf16max"
	// tagEmailTLD はドメイン部にトップレベルドメインがあることを要求します。
	tagEmailTLD = "email_tld"
)

// SignupRequest は /submitUser のフォーム入力です。
type SignupRequest struct {
	Name     string `form:"name" validate:"required,utf16max=20"`
	Password string `form:"password" validate:"required,utf16max=20"`
	Email    string `form:"email" validate:"required,email,email_tld"`
}

// LoginRequest は /loggingin のフォーム入力です。パスワードはハッシュ照合前に検証しません。
type LoginRequest struct {
	Email    string `form:"email" validate:"required,email,email_tld"`
	Password string `form:"password"`
}

// AdminActionRequest は /handleAdminClick のフォーム入力です。
type AdminActionRequest struct {
	ID     string `form:"id" validate:"omitempty,uuid"`
	Name   string `form:"name" validate:"required,alphanum,max=20"`
	Action string `form:"action" validate:"required,oneof=promote demote"`
}

// Target は検証済みの入力からロール変更の対象を返します。ID が空なら名前のみで一致させます。
func (r AdminActionRequest) Target() models.RoleTarget {
	target := models.RoleTarget{Name: r.Name}
	if id, err := uuid.Parse(r.ID); err == nil {
		target.ID = id
	}
	return target
}

// Role は検証済みの action に対応するロールを返します。
func (r AdminActionRequest) Role() models.Role {
	if r.Action == "promote" {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// Error は最初に検証に失敗したフィールドを表します。
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validator は validator.Validate をラップし、フィールド名にフォーム名を使います。
type Validator struct {
	v *validator.Validate
}

// New は Validator を作成します。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// 登録は固定のタグ名と関数なので失敗しない
	_ = v.RegisterValidation(tagUTF16Max, utf16Max)
	_ = v.RegisterValidation(tagEmailTLD, emailHasTLD)
	return &Validator{v: v}
}

func utf16Max(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(utf16.Encode([]rune(fl.Field().String()))) <= limit
}

func emailHasTLD(fl validator.FieldLevel) bool {
	email := fl.Field().String()
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 {
		return false
	}
	tld := domain[dot+1:]
	if len(tld) < 2 {
		return false
	}
	for _, r := range tld {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Struct は payload を検証します。成功時は nil、失敗時は *Error を返します。
func (v *Validator) Struct(payload any) error {
	err := v.v.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	return &Error{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	field := fmt.Sprintf("%q", fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max", tagUTF16Max:
		return fmt.Sprintf("%s length must be less than or equal to %s characters long", field, fe.Param())
	case "email", tagEmailTLD:
		return field + " must be a valid email"
	case "alphanum":
		return field + " must only contain alpha-numeric characters"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(strings.Fields(fe.Param()), ", "))
	case "uuid":
		return field + " must be a valid GUID"
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}

// NormalizeEmail は前後の空白を取り除き小文字化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
