package random

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Digits 生成指定位数的安全随机数字串（用于验证码），允许前导 0
func Digits(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
