package handlers

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"debate_room/internal/utils"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的驗證器上註冊自訂規則，可重複呼叫
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("roomcode", roomCodeValidator)
	})
}

// roomCodeValidator 只檢查長度；字元不在字母表內的代碼交給查詢回報房間不存在
func roomCodeValidator(fl validator.FieldLevel) bool {
	code := strings.TrimSpace(fl.Field().String())
	return len(code) == utils.RoomCodeLength
}
