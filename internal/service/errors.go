package service

import "errors"

// 错误类别，具体错误通过 errors.Is 归属到其中之一
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrDependency = errors.New("dependency error")
	ErrConflict   = errors.New("conflict")
)

type classedError struct {
	msg   string
	class error
}

func (e *classedError) Error() string {
	return e.msg
}

func (e *classedError) Is(target error) bool {
	return target == e.class
}

func validationError(msg string) error {
	return &classedError{msg: msg, class: ErrValidation}
}

func notFoundError(msg string) error {
	return &classedError{msg: msg, class: ErrNotFound}
}

func dependencyError(msg string) error {
	return &classedError{msg: msg, class: ErrDependency}
}

func conflictError(msg string) error {
	return &classedError{msg: msg, class: ErrConflict}
}

// 业务错误
var (
	ErrAdminRequired          = validationError("admin privileges required")
	ErrActorRequired          = validationError("authenticated user required")
	ErrPromotionInvalid       = validationError("invalid promotion parameters")
	ErrPromotionMediaRequired = validationError("promotion type requires media url")
	ErrPromotionMediaInvalid  = validationError("invalid promotion media url")
	ErrTransactionInvalid     = validationError("invalid transaction parameters")
	ErrPropertyNotFound       = notFoundError("property not found")
	ErrPromotionNotFound      = notFoundError("promotion not found")
	ErrTransactionNotFound    = notFoundError("transaction not found")
	ErrNotificationNotFound   = notFoundError("notification not found")
	ErrStoreUnavailable       = dependencyError("record store unavailable")
	ErrQueueUnavailable       = dependencyError("task queue unavailable")
	ErrJobAlreadyRunning      = conflictError("job already running")
)

// 邮件错误
var (
	ErrEmailServiceDisabled      = dependencyError("email service disabled")
	ErrEmailServiceNotConfigured = dependencyError("email service not configured")
	ErrInvalidEmail              = validationError("invalid email address")
	ErrEmailRecipientRejected    = dependencyError("email recipient rejected")
)

// isEmailNotConfigured 邮件未启用/未配置，调用方视为非致命
func isEmailNotConfigured(err error) bool {
	return errors.Is(err, ErrEmailServiceDisabled) || errors.Is(err, ErrEmailServiceNotConfigured)
}
