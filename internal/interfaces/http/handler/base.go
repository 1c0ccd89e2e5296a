// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"bookforge-api/internal/interfaces/http/dto"
)

// pathID 解析路径中的整型 id 参数，失败时写入 400 响应
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		dto.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
