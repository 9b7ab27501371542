package errors

import "errors"

// SkipMessageError 表示消息无需处理也无需重试，消费者应直接 ack。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

func IsSkipMessageError(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}

// NonRetryableError 表示投递失败且重试不可能成功，例如收件人拉黑了 bot。
type NonRetryableError struct {
	Code    string
	Message string
	Context string
}

func (e *NonRetryableError) Error() string {
	return e.Code + ": " + e.Message + " (" + e.Context + ")"
}

func NewNonRetryableError(code, message, context string) *NonRetryableError {
	return &NonRetryableError{Code: code, Message: message, Context: context}
}

func IsNonRetryableError(err error) bool {
	var nr *NonRetryableError
	return errors.As(err, &nr)
}
