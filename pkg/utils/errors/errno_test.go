package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestMakeAndParseCode(t *testing.T) {
	code := MakeCode(ServiceDataSphere, CategoryResource, 1)
	assert.Equal(t, 2004001, code)

	service, category, seq := ParseCode(code)
	assert.Equal(t, ServiceDataSphere, service)
	assert.Equal(t, CategoryResource, category)
	assert.Equal(t, 1, seq)
	assert.True(t, IsClientError(code))
	assert.False(t, IsClientError(ErrDatabase.Code))
}

func TestCategoryConstructors(t *testing.T) {
	tests := []struct {
		name     string
		errno    *Errno
		wantHTTP int
		wantGRPC codes.Code
	}{
		{"request", ErrInvalidURL, http.StatusBadRequest, codes.InvalidArgument},
		{"auth", ErrInvalidToken, http.StatusUnauthorized, codes.Unauthenticated},
		{"account", ErrAccountNotFound, http.StatusUnauthorized, codes.Unauthenticated},
		{"permission", ErrForbidden, http.StatusForbidden, codes.PermissionDenied},
		{"not found", ErrDatasetNotFound, http.StatusNotFound, codes.NotFound},
		{"conflict", ErrUserAlreadyExists, http.StatusConflict, codes.AlreadyExists},
		{"database", ErrDatabase, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantHTTP, tt.errno.HTTPStatus())
			assert.Equal(t, tt.wantGRPC, tt.errno.GRPCStatus())
			registered, ok := Lookup(tt.errno.Code)
			assert.True(t, ok)
			assert.Same(t, tt.errno, registered)
		})
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewRequestErr(ServiceDataSphere, 1, "duplicate", "")
	})
}

func TestWithMessageKeepsIdentity(t *testing.T) {
	e := ErrBadRequest.WithMessage("Title and URL are required")

	assert.Equal(t, "Title and URL are required", e.MessageEN)
	assert.Equal(t, "Bad request", ErrBadRequest.MessageEN)
	assert.True(t, stderrors.Is(e, ErrBadRequest))
	assert.False(t, stderrors.Is(e, ErrNotFound))
}

func TestWithCauseUnwraps(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	e := ErrDatabase.WithCause(cause)

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "connection refused")
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("load dataset: %w", ErrDatasetNotFound)
	assert.Equal(t, ErrDatasetNotFound.Code, FromError(wrapped).Code)
	assert.True(t, IsCode(wrapped, ErrDatasetNotFound.Code))

	plain := stderrors.New("boom")
	got := FromError(plain)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.ErrorIs(t, got, plain)
}

func TestMessageLanguage(t *testing.T) {
	assert.Equal(t, "数据集不存在", ErrDatasetNotFound.Message("zh-CN"))
	assert.Equal(t, "Dataset not found", ErrDatasetNotFound.Message("en"))
}
