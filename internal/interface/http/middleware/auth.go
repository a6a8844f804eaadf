package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/shopadmin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/shopadmin/pkg/jwt"
	"github.com/xiebiao/shopadmin/pkg/response"
)

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 后台不负责签发Token(统一身份服务签发),这里只做验证
// 2. 从Header提取Token → 查黑名单 → 验证并解析Claims
// 3. 将管理员信息注入Context,供Handler取用
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	tokenStore *redis.TokenStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, tokenStore *redis.TokenStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		tokenStore: tokenStore,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1/admin")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorWithCode(c, 40100, "请先登录")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, 40101, "Token格式错误")
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 黑名单检查:管理员被停用或主动登出后,Token立即失效
		isBlacklisted, err := m.tokenStore.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.ErrorWithCode(c, 50000, "验证Token失败")
			c.Abort()
			return
		}
		if isBlacklisted {
			response.ErrorWithCode(c, 40102, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err) // 自动处理ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		c.Set("admin_id", claims.AdminID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetAdminID 从Context获取当前管理员ID
func GetAdminID(c *gin.Context) uint {
	if adminID, exists := c.Get("admin_id"); exists {
		if id, ok := adminID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetUsername 从Context获取当前管理员用户名
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// MustGetAdminID 从Context获取管理员ID（不存在则panic）
// 说明：用于已经通过RequireAuth中间件的Handler
func MustGetAdminID(c *gin.Context) uint {
	adminID := GetAdminID(c)
	if adminID == 0 {
		panic("admin_id not found in context")
	}
	return adminID
}
