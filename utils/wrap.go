package utils

import "fmt"

// WrapError 在 err 外包一层上下文信息，保留原错误用于 errors.Is / errors.As。
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", msg, err)
}

func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	return WrapError(err, fmt.Sprintf(format, args...))
}
