package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// BytesMD5 计算字节数组MD5
func BytesMD5(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

// CacheKey 拼接缓存键，例如 CacheKey("upscale", md5, "4") => "upscale:<md5>:4"
func CacheKey(parts ...string) string {
	return strings.Join(parts, ":")
}
