package jwt

import (
	"errors"
	"fmt"
	"time"

	"study-assistant/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTService 提供 JWT 生成与校验能力
// 使用对称密钥 HS256
// Subject 为用户名，ID（jti）为客户端会话ID，每次登录生成一个新的

type JWTService struct {
	secretKey   []byte        // 对称密钥
	issuer      string        // 签发者
	expireAfter time.Duration // 过期时间
	now         func() time.Time
}

// CustomClaims 自定义声明载荷
type CustomClaims struct {
	jwtv5.RegisteredClaims
}

// Token 签发结果
type Token struct {
	AccessToken string
	ClientID    string
	ExpiresAt   time.Time
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
		now:         time.Now,
	}
}

// GenerateToken 为用户签发访问令牌，同时分配新的客户端ID
func (s *JWTService) GenerateToken(username string) (*Token, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}

	now := s.now()
	expiresAt := now.Add(s.expireAfter)
	clientID := uuid.NewString()

	claims := &CustomClaims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        clientID,
			Issuer:    s.issuer,
			Subject:   username,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("sign token failed: %w", err)
	}
	return &Token{AccessToken: signed, ClientID: clientID, ExpiresAt: expiresAt}, nil
}

// ValidateToken 校验并解析令牌
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			// 验证签名方法
			if token.Method != jwtv5.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("token missing subject or id")
	}
	return claims, nil
}
