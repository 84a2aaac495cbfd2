// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindID 解析路径中的正整数 ID
func BindID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// BindReplaceExisting 解析 replace_existing 查询参数
func BindReplaceExisting(c *gin.Context, defaultVal bool) (bool, bool) {
	return parseBoolWithDefault(c.Query("replace_existing"), defaultVal)
}

func parseBoolWithDefault(s string, defaultVal bool) (bool, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal, true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return defaultVal, false
	}
	return v, true
}

// FullAudioRequest 整书音频生成参数
type FullAudioRequest struct {
	Voice  string `json:"voice,omitempty"`
	Format string `json:"format,omitempty" binding:"omitempty,oneof=mp3 opus aac flac wav pcm"`
}
