// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bookforge-api/pkg/errors"
)

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Message string `json:"message"`
}

// OK 返回 200 响应，资源直接作为响应体
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created 返回 201 响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 返回 204 响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorResponse{Message: message})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 返回 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 返回 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// HandleError 将应用错误映射为 HTTP 响应
// AppError 按其错误码对应的状态码返回，其余错误按 500 处理
func HandleError(c *gin.Context, err error, fallbackMessage string) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		Error(c, appErr.HTTPStatus, appErr.Message)
		return
	}
	InternalError(c, fallbackMessage)
}
