package errors

// Common errors shared by every service (service code 00).
var (
	ErrBadRequest       = NewRequestErr(ServiceCommon, 1, "Bad request", "请求错误")
	ErrValidationFailed = NewRequestErr(ServiceCommon, 2, "Validation failed", "参数校验失败")

	ErrUnauthorized = NewAuthErr(ServiceCommon, 1, "Unauthorized", "未认证")
	ErrMissingToken = NewAuthErr(ServiceCommon, 2, "Unauthorized: No token", "缺少令牌")
	ErrInvalidToken = NewAuthErr(ServiceCommon, 3, "Unauthorized: Invalid token", "令牌无效")

	ErrForbidden = NewPermissionErr(ServiceCommon, 1, "Forbidden: Insufficient permissions", "权限不足")

	ErrNotFound = NewNotFoundErr(ServiceCommon, 1, "Resource not found", "资源不存在")

	ErrAlreadyExists = NewConflictErr(ServiceCommon, 1, "Resource already exists", "资源已存在")

	ErrInternal = NewInternalErr(ServiceCommon, 1, "Internal server error", "服务器内部错误")
	ErrPanic    = NewInternalErr(ServiceCommon, 2, "Internal server error", "服务器内部错误")

	ErrDatabase = NewDatabaseErr(ServiceCommon, 1, "Database error", "数据库错误")

	ErrCache = NewCacheErr(ServiceCommon, 1, "Cache error", "缓存错误")
)
