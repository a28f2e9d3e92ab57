package response

import "errors"

// AppError 携带业务码的错误
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

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// ErrorClass 错误类别到业务码的映射；Expose 为 false 时对外只返回通用提示
type ErrorClass struct {
	Target error
	Code   int
	Expose bool
}

// Classify 按顺序匹配错误类别，均未命中时归为内部错误
func Classify(err error, classes []ErrorClass) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, class := range classes {
		if !errors.Is(err, class.Target) {
			continue
		}
		if class.Expose {
			return &AppError{Code: class.Code, Message: err.Error()}
		}
		return WrapError(class.Code, "internal error", err)
	}
	return WrapError(CodeInternal, "internal error", err)
}
