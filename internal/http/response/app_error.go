package response

import "github.com/gin-gonic/gin"

// AppError 接口错误
// Message 面向调用方；Err 为原始错误，只进日志。
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Internal 是否为需要记录原始错误的内部错误
func (e *AppError) Internal() bool {
	return e.Code >= CodeInternal
}

// WrapError 以固定提示包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// FromBusinessError 业务错误文本即拒绝原因，直接作为提示
func FromBusinessError(code int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Err:     err,
	}
}

// Fail 写出 AppError 对应的错误响应
func Fail(c *gin.Context, appErr *AppError) {
	Error(c, appErr.Code, appErr.Message)
}
