package errors

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

func validateCodeParams(service, category, sequence int) {
	if service < 0 || service > 99 {
		panic(fmt.Sprintf("errors: service code must be 0-99, got %d", service))
	}
	if category < 0 || category > 99 {
		panic(fmt.Sprintf("errors: category code must be 0-99, got %d", category))
	}
	if sequence < 0 || sequence > 999 {
		panic(fmt.Sprintf("errors: sequence must be 0-999, got %d", sequence))
	}
}

// NewError creates and registers a new Errno with the given parameters.
// Panics if registration fails or if messageEN is empty.
func NewError(service, category, sequence int, httpStatus int, grpcCode codes.Code, messageEN, messageZH string) *Errno {
	validateCodeParams(service, category, sequence)
	if messageEN == "" {
		panic("errors: english message is required")
	}

	return Register(&Errno{
		Code:      MakeCode(service, category, sequence),
		HTTP:      httpStatus,
		GRPCCode:  grpcCode,
		MessageEN: messageEN,
		MessageZH: messageZH,
	})
}

// NewRequestErr creates and registers a request/validation error (HTTP 400).
func NewRequestErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryRequest, sequence, http.StatusBadRequest, codes.InvalidArgument, en, zh)
}

// NewAuthErr creates and registers an authentication error (HTTP 401).
func NewAuthErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryAuth, sequence, http.StatusUnauthorized, codes.Unauthenticated, en, zh)
}

// NewPermissionErr creates and registers a permission error (HTTP 403).
func NewPermissionErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryPermission, sequence, http.StatusForbidden, codes.PermissionDenied, en, zh)
}

// NewNotFoundErr creates and registers a not found error (HTTP 404).
func NewNotFoundErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryResource, sequence, http.StatusNotFound, codes.NotFound, en, zh)
}

// NewConflictErr creates and registers a conflict error (HTTP 409).
func NewConflictErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryConflict, sequence, http.StatusConflict, codes.AlreadyExists, en, zh)
}

// NewInternalErr creates and registers an internal error (HTTP 500).
func NewInternalErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryInternal, sequence, http.StatusInternalServerError, codes.Internal, en, zh)
}

// NewDatabaseErr creates and registers a database error (HTTP 500).
func NewDatabaseErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryDatabase, sequence, http.StatusInternalServerError, codes.Internal, en, zh)
}

// NewCacheErr creates and registers a cache error (HTTP 500).
func NewCacheErr(service, sequence int, en, zh string) *Errno {
	return NewError(service, CategoryCache, sequence, http.StatusInternalServerError, codes.Internal, en, zh)
}
