package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/target/jobz/internal/domain/jobtype"
	"github.com/target/jobz/internal/domain/model"
	apperrors "github.com/target/jobz/internal/errors"
	"github.com/target/jobz/internal/querystring"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"api 5xx", fmt.Errorf("stats: %w", &model.APIError{Status: 500}), "api_5xx"},
		{"api 4xx", &model.APIError{Status: 404}, "api_4xx"},
		{"api transport", &model.APIError{}, "api_transport"},
		{"decode", fmt.Errorf("search: %w", &querystring.DecodeError{Expr: "x"}), "decode"},
		{"unsupported", fmt.Errorf("bind: %w", jobtype.ErrUnsupportedType), "unsupported_type"},
		{"canceled", fmt.Errorf("get: %w", context.Canceled), "canceled"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"upstream timeout", apperrors.Wrap(context.DeadlineExceeded, apperrors.ErrCodeUpstream, "get"), "timeout"},
		{"upstream", apperrors.Wrap(goerrors.New("refused"), apperrors.ErrCodeUpstream, "get"), "upstream"},
		{"validation", fmt.Errorf("resolve: %w", apperrors.Validation("id")), "validation"},
		{"innermost type", fmt.Errorf("wrap: %w", customErr{}), "errors_customerr"},
		{"plain", goerrors.New("boom"), "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
