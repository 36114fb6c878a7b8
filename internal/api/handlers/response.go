package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"debate_room/internal/service"
	"debate_room/pkg/log"
)

// Response 所有 API 回應的外層格式
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

// badRequest 請求內容無法解析或未通過欄位驗證
func badRequest(c *gin.Context, err error) {
	message := "Invalid request body"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		message = "Invalid field: " + verrs[0].Field()
	}
	fail(c, http.StatusBadRequest, string(service.KindValidation), message)
}

var kindStatus = map[service.ErrorKind]int{
	service.KindNotFound:     http.StatusNotFound,
	service.KindInvalidState: http.StatusConflict,
	service.KindConflict:     http.StatusConflict,
	service.KindForbidden:    http.StatusForbidden,
	service.KindValidation:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindExternal:     http.StatusBadGateway,
}

// respondError 將服務錯誤轉成 HTTP 狀態碼；未分類的錯誤只回傳通用訊息
func respondError(c *gin.Context, err error) {
	var serr *service.Error
	if errors.As(err, &serr) {
		if status, ok := kindStatus[serr.Kind]; ok {
			if serr.Err != nil {
				log.Ctx(c.Request.Context()).Warn().Err(serr.Err).Str("kind", string(serr.Kind)).Msg(serr.Message)
			}
			fail(c, status, string(serr.Kind), serr.Message)
			return
		}
	}

	log.Ctx(c.Request.Context()).Error().Err(err).Msg("unhandled error")
	fail(c, http.StatusInternalServerError, string(service.KindInternal), "Internal server error")
}

// currentUserID 由 AuthMiddleware 放入的用戶 ID
func currentUserID(c *gin.Context) uint {
	id, _ := c.Get("userID")
	userID, _ := id.(uint)
	return userID
}

// paramID 解析路徑中的數字 ID，失敗時已寫入回應
func paramID(c *gin.Context, name string, notFound *service.Error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, notFound)
		return 0, false
	}
	return uint(id), true
}
