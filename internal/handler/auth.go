package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortlink/internal/middleware"
	"shortlink/internal/model"
	auth "shortlink/pkg/jwt"
)

// AuthHandler 包含认证相关的处理器
type AuthHandler struct {
	db         *gorm.DB
	jwtManager *auth.TokenManager
}

// NewAuthHandler 创建一个新的 AuthHandler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.TokenManager) *AuthHandler {
	return &AuthHandler{db: db, jwtManager: jwtManager}
}

// LoginRequest 定义了登录请求的结构体
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin"`
}

// AuthResponse 定义了认证成功后的响应
type AuthResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// Login godoc
// @Summary 用户登录
// @Description 使用用户名和密码获取 JWT 令牌
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param   account  body   LoginRequest  true  "登录凭据"
// @Success 200 {object} Response{data=AuthResponse} "成功响应"
// @Failure 400 {object} Response "请求无效"
// @Failure 401 {object} Response "认证失败"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	var user model.User
	if err := h.db.WithContext(c.Request.Context()).Where("username = ?", req.Username).First(&user).Error; err != nil {
		fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		return
	}
	if !user.CheckPassword(req.Password) {
		fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS")
		return
	}
	if !user.IsActive {
		fail(c, http.StatusForbidden, "ACCOUNT_DISABLED")
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		zap.S().Errorf("生成令牌失败: %v", err)
		fail(c, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(&user).Update("last_login", time.Now()).Error; err != nil {
		zap.S().Warnf("更新登录时间失败: %v", err)
	}
	ok(c, http.StatusOK, AuthResponse{Token: token})
}

// GetCurrentUser godoc
// @Summary 获取当前用户信息
// @Description 获取当前已登录用户的信息
// @Tags User
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} Response{data=model.User} "成功响应"
// @Failure 401 {object} Response "未认证"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/me [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED")
		return
	}

	var user model.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		fail(c, http.StatusNotFound, "NOT_FOUND")
		return
	}
	ok(c, http.StatusOK, user)
}

// EnsureAdmin 用户名不存在时创建管理员账号，已存在则不做修改
func EnsureAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return errors.New("管理员用户名和密码不能为空")
	}
	var existing model.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := model.User{Username: username, Role: model.RoleAdmin, IsActive: true}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	zap.S().Infow("✅ 默认管理员创建成功", "username", username)
	return nil
}
