package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// 摘要方案
const (
	// SchemeSHA256 无盐 SHA-256 十六进制摘要，与历史 users.json 兼容
	SchemeSHA256 = "sha256"
	// SchemeBcrypt 加盐的 bcrypt 摘要
	SchemeBcrypt = "bcrypt"
)

// TemporaryLength 重置密码时生成的临时密码长度
const TemporaryLength = 8

// Hash 生成密码摘要，未知方案按 sha256 处理
func Hash(scheme, plain string) (string, error) {
	if scheme == SchemeBcrypt {
		bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return "", err
		}
		return string(bytes), nil
	}
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

// Verify 校验密码，根据摘要前缀自动识别方案
func Verify(plain, hash string) bool {
	if isBcrypt(hash) {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
	}
	sum := sha256.Sum256([]byte(plain))
	want := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(want), []byte(hash)) == 1
}

// NewTemporary 生成一次性临时密码
func NewTemporary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:TemporaryLength]
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
