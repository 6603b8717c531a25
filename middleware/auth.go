package middleware

import (
	"net/http"
	"strings"

	"fintrack/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	authSecret   []byte
	authIssuer   string
	authAudience string
)

// InitAuth 初始化认证中间件
// 令牌由外部身份服务签发，这里只持有共享密钥做校验，本服务不签发令牌
func InitAuth(cfg *config.Config) {
	authSecret = []byte(cfg.Auth.Secret)
	authIssuer = cfg.Auth.Issuer
	authAudience = cfg.Auth.Audience
}

// IdentityClaims 外部身份服务令牌中本服务关心的声明
type IdentityClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// ParseToken 校验令牌并返回声明，sub 为空视为无效
func ParseToken(tokenString string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
	}
	if authIssuer != "" {
		opts = append(opts, jwt.WithIssuer(authIssuer))
	}
	if authAudience != "" {
		opts = append(opts, jwt.WithAudience(authAudience))
	}

	claims := &IdentityClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return authSecret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}
	return claims, nil
}

// ParseSubject 校验令牌并返回 sub 声明（用户标识）
func ParseSubject(tokenString string) (string, error) {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Auth 认证中间件
// 从 Authorization: Bearer <token> 中取出令牌，校验通过后把 sub 写入上下文
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "缺少认证令牌",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "认证头格式错误，应为: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "无效或过期的令牌",
			})
			c.Abort()
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("userEmail", claims.Email)
		c.Next()
	}
}

// GetCurrentUserID 获取当前登录用户标识（外部身份服务的 sub）
func GetCurrentUserID(c *gin.Context) string {
	return c.GetString("userID")
}

// GetCurrentUserEmail 获取当前登录用户邮箱（令牌中的 email 声明，可能为空）
func GetCurrentUserEmail(c *gin.Context) string {
	return c.GetString("userEmail")
}
