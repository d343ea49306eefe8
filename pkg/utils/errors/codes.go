package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// Predefined common errors. Keep the taxonomy small: callers distinguish
// "who are you" (auth), "you may not" (permission), "we don't know"
// (database/cache/timeout) and plain bad input.
var (
	// ErrInvalidParam indicates a request validation failure.
	ErrInvalidParam = New(
		MakeCode(ServiceCommon, CategoryRequest, 1),
		http.StatusBadRequest, codes.InvalidArgument,
		"Invalid parameter", "参数无效")

	// ErrUnauthorized indicates the caller's identity could not be resolved.
	// This is an authentication failure, never a silent denial.
	ErrUnauthorized = New(
		MakeCode(ServiceCommon, CategoryAuth, 1),
		http.StatusUnauthorized, codes.Unauthenticated,
		"Unauthorized", "未认证")

	// ErrTokenInvalid indicates a malformed or expired token.
	ErrTokenInvalid = New(
		MakeCode(ServiceCommon, CategoryAuth, 2),
		http.StatusUnauthorized, codes.Unauthenticated,
		"Invalid or expired token", "令牌无效或已过期")

	// ErrNoPermission indicates a denied authorization decision. The message
	// is deliberately generic: it must not leak which permission failed.
	ErrNoPermission = New(
		MakeCode(ServiceCommon, CategoryPermission, 1),
		http.StatusForbidden, codes.PermissionDenied,
		"Forbidden", "无权限")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = New(
		MakeCode(ServiceCommon, CategoryResource, 1),
		http.StatusNotFound, codes.NotFound,
		"Resource not found", "资源不存在")

	// ErrAlreadyExists indicates a uniqueness conflict, e.g. inserting a
	// policy rule whose full tuple already exists.
	ErrAlreadyExists = New(
		MakeCode(ServiceCommon, CategoryConflict, 1),
		http.StatusConflict, codes.AlreadyExists,
		"Resource already exists", "资源已存在")

	// ErrInternal indicates an unexpected internal error.
	ErrInternal = New(
		MakeCode(ServiceCommon, CategoryInternal, 1),
		http.StatusInternalServerError, codes.Internal,
		"Internal server error", "服务器内部错误")

	// ErrDatabase indicates a storage infrastructure failure.
	ErrDatabase = New(
		MakeCode(ServiceInfraDB, CategoryDatabase, 1),
		http.StatusInternalServerError, codes.Internal,
		"Database error", "数据库错误")

	// ErrCache indicates a cache infrastructure failure.
	ErrCache = New(
		MakeCode(ServiceInfraCache, CategoryCache, 1),
		http.StatusInternalServerError, codes.Internal,
		"Cache error", "缓存错误")

	// ErrTimeout indicates a storage or cache call exceeded its deadline.
	ErrTimeout = New(
		MakeCode(ServiceCommon, CategoryTimeout, 1),
		http.StatusGatewayTimeout, codes.DeadlineExceeded,
		"Operation timed out", "操作超时")
)
