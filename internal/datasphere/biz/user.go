package biz

import (
	"context"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/security/auth/identity"
	"github.com/kart-io/datasphere/pkg/utils/errors"
	"github.com/kart-io/datasphere/pkg/utils/validator"
)

// minNameLength is the shortest accepted display name.
const minNameLength = 2

// UserService handles accounts and profiles.
type UserService struct {
	store store.Factory
}

// NewUserService creates a new UserService.
func NewUserService(s store.Factory) *UserService {
	return &UserService{store: s}
}

// PublicUser is the part of an account anyone may see.
type PublicUser struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Avatar        *string         `json:"avatar"`
	Contributions int             `json:"contributions"`
	CreatedAt     time.Time       `json:"createdAt"`
	Datasets      []model.Dataset `json:"datasets,omitempty"`
}

func publicUser(u *model.User) *PublicUser {
	return &PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Avatar:        u.Avatar,
		Contributions: u.Contributions,
		CreatedAt:     u.CreatedAt,
		Datasets:      u.Datasets,
	}
}

// Standing is the leaderboard position of a user.
type Standing struct {
	Rank int64  `json:"rank"`
	Tier string `json:"tier"`
}

// Tier names the contributor band of rank.
func Tier(rank int64) string {
	switch {
	case rank <= 3:
		return "Top 3 Contributor"
	case rank <= 10:
		return "Top 10 Contributor"
	case rank <= 50:
		return "Top 50 Contributor"
	case rank <= 100:
		return "Top 100 Contributor"
	case rank <= 500:
		return "Top 100+ Contributor"
	default:
		return "Top 500+ Contributor"
	}
}

func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < minNameLength {
		return "", errors.ErrInvalidName
	}
	return name, nil
}

func checkAvatar(avatar string) (string, error) {
	avatar = strings.TrimSpace(avatar)
	if err := validator.Var(avatar, validator.TagHTTPURL); err != nil {
		return "", errors.ErrInvalidAvatar
	}
	return avatar, nil
}

// SignUp creates the account of a verified identity.
func (s *UserService) SignUp(ctx context.Context, id *identity.Identity, name string, avatar *string) (*model.User, error) {
	name, err := checkName(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id.Email) == "" {
		return nil, errors.ErrEmailRequired
	}

	user := &model.User{ID: id.UID, Name: name, Email: id.Email}
	if avatar != nil && strings.TrimSpace(*avatar) != "" {
		a, err := checkAvatar(*avatar)
		if err != nil {
			return nil, err
		}
		user.Avatar = &a
	}

	exists, err := s.store.Users().ExistsByIDOrEmail(ctx, id.UID, id.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrUserAlreadyExists
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Infow("User signed up", "user_id", user.ID)
	return user, nil
}

// List returns public profiles ordered by contributions, most first.
func (s *UserService) List(ctx context.Context, offset, limit int) (*PageResult[*PublicUser], error) {
	_, limit = UserPager.Normalize(1, limit)
	if offset < 0 {
		offset = 0
	}

	total, users, err := s.store.Users().ListByContributions(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*PublicUser, 0, len(users))
	for _, u := range users {
		items = append(items, publicUser(u))
	}
	return &PageResult[*PublicUser]{Items: items, Total: total, Limit: limit}, nil
}

// Profile returns the public profile of a user with their datasets.
func (s *UserService) Profile(ctx context.Context, id string) (*PublicUser, error) {
	user, err := s.store.Users().GetWithDatasets(ctx, id)
	if err != nil {
		return nil, err
	}
	return publicUser(user), nil
}

// Me returns the caller's account and leaderboard standing. The rank is one
// plus the number of users with strictly more contributions.
func (s *UserService) Me(ctx context.Context, uid string) (*model.User, *Standing, error) {
	user, err := s.store.Users().GetWithDatasets(ctx, uid)
	if err != nil {
		return nil, nil, err
	}

	above, err := s.store.Users().CountAbove(ctx, user.Contributions)
	if err != nil {
		return nil, nil, err
	}
	rank := above + 1
	return user, &Standing{Rank: rank, Tier: Tier(rank)}, nil
}

// UpdateMe changes the caller's name and/or avatar. Empty values count as absent.
func (s *UserService) UpdateMe(ctx context.Context, uid string, name, avatar *string) (*model.User, error) {
	hasName := name != nil && *name != ""
	hasAvatar := avatar != nil && *avatar != ""
	if !hasName && !hasAvatar {
		return nil, errors.ErrNothingToUpdate
	}

	fields := make(map[string]interface{}, 2)
	if hasName {
		n, err := checkName(*name)
		if err != nil {
			return nil, err
		}
		fields["name"] = n
	}
	if hasAvatar {
		a, err := checkAvatar(*avatar)
		if err != nil {
			return nil, err
		}
		fields["avatar"] = a
	}

	if _, err := s.store.Users().Get(ctx, uid); err != nil {
		return nil, err
	}
	if err := s.store.Users().Update(ctx, uid, fields); err != nil {
		return nil, err
	}
	return s.store.Users().Get(ctx, uid)
}

// DeleteAccount removes the caller's account with their likes, comments,
// datasets and notifications in one transaction.
func (s *UserService) DeleteAccount(ctx context.Context, uid string) error {
	if _, err := s.store.Users().Get(ctx, uid); err != nil {
		return err
	}

	err := s.store.TX(ctx, func(ctx context.Context) error {
		if err := s.store.Likes().DeleteByUser(ctx, uid); err != nil {
			return err
		}
		if err := s.store.Comments().DeleteByUser(ctx, uid); err != nil {
			return err
		}
		if _, err := s.store.Datasets().DeleteByOwner(ctx, uid); err != nil {
			return err
		}
		if err := s.store.Notifications().DeleteByUser(ctx, uid); err != nil {
			return err
		}
		return s.store.Users().Delete(ctx, uid)
	})
	if err != nil {
		return err
	}

	logger.Infow("Account deleted", "user_id", uid)
	return nil
}
