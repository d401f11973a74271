// Package errors classifies resolver failures into short names for metric tags
// and log fields.
package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"github.com/target/jobz/internal/querystring"
)

// Classify returns a normalized error class. Known resolver failures get a
// stable name; anything else falls back to the innermost concrete type.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *model.APIError
	var decodeErr *querystring.DecodeError
	switch {
	case goerrors.As(err, &apiErr):
		return "api_" + statusClass(apiErr.Status)
	case goerrors.As(err, &decodeErr):
		return "decode"
	case goerrors.Is(err, jobtype.ErrUnsupportedType):
		return "unsupported_type"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case apperrors.IsUpstream(err):
		return "upstream"
	case apperrors.IsValidation(err):
		return "validation"
	}

	return typeName(err)
}

// statusClass buckets an HTTP status as "4xx"/"5xx"; zero means the request
// never produced a response.
func statusClass(status int) string {
	if status <= 0 {
		return "transport"
	}
	return strconv.Itoa(status/100) + "xx"
}

func typeName(err error) string {
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
