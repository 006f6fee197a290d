package errors

// DataSphere domain errors (service code 20).
var (
	ErrMissingTitleOrURL  = NewRequestErr(ServiceDataSphere, 1, "Title and URL are required", "标题和链接为必填项")
	ErrInvalidURL         = NewRequestErr(ServiceDataSphere, 2, "Invalid URL format", "链接格式无效")
	ErrHostNotAllowed     = NewRequestErr(ServiceDataSphere, 3, "Only Google Drive links are allowed", "仅允许 Google Drive 链接")
	ErrInvalidCommentText = NewRequestErr(ServiceDataSphere, 4, "Invalid comment text", "评论内容无效")
	ErrInvalidRole        = NewRequestErr(ServiceDataSphere, 5, "Invalid role", "角色无效")
	ErrNothingToUpdate    = NewRequestErr(ServiceDataSphere, 6, "Nothing to update. Provide name or avatar.", "没有需要更新的内容")
	ErrInvalidName        = NewRequestErr(ServiceDataSphere, 7, "Name must be at least 2 characters", "名称至少 2 个字符")
	ErrInvalidAvatar      = NewRequestErr(ServiceDataSphere, 8, "Avatar must be a valid URL", "头像链接无效")
	ErrEmailRequired      = NewRequestErr(ServiceDataSphere, 9, "Email is required", "邮箱为必填项")

	// ErrAccountNotFound is returned when a verified token has no local account.
	// It is an authentication failure so that token validity is not confirmed.
	ErrAccountNotFound = NewAuthErr(ServiceDataSphere, 1, "User not found", "用户不存在")

	ErrDatasetNotFound = NewNotFoundErr(ServiceDataSphere, 1, "Dataset not found", "数据集不存在")
	ErrCommentNotFound = NewNotFoundErr(ServiceDataSphere, 2, "Comment not found", "评论不存在")
	ErrUserNotFound    = NewNotFoundErr(ServiceDataSphere, 3, "User not found", "用户不存在")

	ErrUserAlreadyExists = NewConflictErr(ServiceDataSphere, 1, "User already exists.", "用户已存在")
	ErrLikeConflict      = NewConflictErr(ServiceDataSphere, 2, "Like state changed concurrently", "点赞状态冲突")
)
