// Package biz holds the DataSphere business rules. Handlers validate
// transport concerns, biz authorizes and applies the rules, store persists.
package biz

import (
	"time"

	"github.com/kart-io/datasphere/internal/datasphere/cache"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/pkg/infra/pool"
	"github.com/kart-io/datasphere/pkg/security/authz"
)

// Services groups every business service of the API.
type Services struct {
	Datasets      *DatasetService
	Likes         *LikeService
	Comments      *CommentService
	Notifications *NotificationService
	Users         *UserService
	Admin         *AdminService
	Leaderboard   *LeaderboardService
}

// New wires the services on top of one store factory.
func New(s store.Factory, a *authz.Authorizer, c cache.Cache, p *pool.Pool, cacheTTL time.Duration) *Services {
	return &Services{
		Datasets:      NewDatasetService(s, a, p),
		Likes:         NewLikeService(s),
		Comments:      NewCommentService(s, a),
		Notifications: NewNotificationService(s),
		Users:         NewUserService(s),
		Admin:         NewAdminService(s, a),
		Leaderboard:   NewLeaderboardService(s, c, cacheTTL),
	}
}
