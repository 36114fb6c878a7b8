package handlers

import (
	"github.com/gin-gonic/gin"

	"debate_room/internal/models"
	"debate_room/internal/service"
)

// AuthHandler 處理註冊、登入與個人資料
type AuthHandler struct {
	userService *service.UserService
}

func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}

type ProfileInput struct {
	Name            *string `json:"name" binding:"omitempty,max=100"`
	Bio             *string `json:"bio" binding:"omitempty,max=1000"`
	ExperienceLevel *string `json:"experienceLevel"`
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, LoginResult{Token: token, User: user})
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), currentUserID(c), service.ProfileUpdate{
		Name:            input.Name,
		Bio:             input.Bio,
		ExperienceLevel: input.ExperienceLevel,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, user)
}

// History 用戶建立或參與過的辯論
func (h *AuthHandler) History(c *gin.Context) {
	history, err := h.userService.DebateHistory(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, history)
}
