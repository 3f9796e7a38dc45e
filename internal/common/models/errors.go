package models

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindUnknownIntent         ErrorKind = "UnknownIntent"
	KindInvalidPipeline       ErrorKind = "InvalidPipeline"
	KindDataSourceUnavailable ErrorKind = "DataSourceUnavailable"
	KindFieldNotFound         ErrorKind = "FieldNotFound"
	KindNoValidData           ErrorKind = "NoValidData"
	KindDegenerateChart       ErrorKind = "DegenerateChart"
	KindRenderError           ErrorKind = "RenderError"
	KindInvalidRequest        ErrorKind = "InvalidRequest"
	KindNotFound              ErrorKind = "NotFound"
)

// AppError is a failure classified by kind. errors.Is matches any AppError of
// the same kind against the sentinel values below.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

var (
	ErrUnknownIntent         = &AppError{Kind: KindUnknownIntent}
	ErrInvalidPipeline       = &AppError{Kind: KindInvalidPipeline}
	ErrDataSourceUnavailable = &AppError{Kind: KindDataSourceUnavailable}
	ErrFieldNotFound         = &AppError{Kind: KindFieldNotFound}
	ErrNoValidData           = &AppError{Kind: KindNoValidData}
	ErrDegenerateChart       = &AppError{Kind: KindDegenerateChart}
	ErrRenderError           = &AppError{Kind: KindRenderError}
	ErrInvalidRequest        = &AppError{Kind: KindInvalidRequest}
	ErrNotFound              = &AppError{Kind: KindNotFound}
)

func NewError(kind ErrorKind, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapError(kind ErrorKind, err error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first AppError in err's chain, or "" for
// unclassified errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
