package biz

import (
	"context"
	"strings"

	"github.com/kart-io/datasphere/internal/datasphere/store"
	"github.com/kart-io/datasphere/internal/model"
	"github.com/kart-io/datasphere/pkg/security/authz"
	"github.com/kart-io/datasphere/pkg/utils/errors"
)

// CommentService handles dataset comments.
type CommentService struct {
	store store.Factory
	authz *authz.Authorizer
}

// NewCommentService creates a new CommentService.
func NewCommentService(s store.Factory, a *authz.Authorizer) *CommentService {
	return &CommentService{store: s, authz: a}
}

// List returns one page of a dataset's comments, newest first.
func (s *CommentService) List(ctx context.Context, datasetID string, page, limit int) (*PageResult[*model.Comment], error) {
	page, limit = CommentPager.Normalize(page, limit)
	total, items, err := s.store.Comments().ListByDataset(ctx, datasetID, Offset(page, limit), limit)
	if err != nil {
		return nil, err
	}
	return &PageResult[*model.Comment]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Add posts a comment and notifies the dataset owner.
func (s *CommentService) Add(ctx context.Context, uid, datasetID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.ErrInvalidCommentText
	}

	dataset, err := s.store.Datasets().Get(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	user, err := actor(ctx, s.store, uid)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{Text: text, UserID: uid, DatasetID: datasetID}
	err = s.store.TX(ctx, func(ctx context.Context) error {
		if err := s.store.Comments().Create(ctx, comment); err != nil {
			return err
		}
		return notifyOwner(ctx, s.store, model.NotificationComment, user, dataset)
	})
	if err != nil {
		return nil, err
	}

	comment.User = user
	return comment, nil
}

// Delete removes a comment for its author or a moderator.
func (s *CommentService) Delete(ctx context.Context, uid, datasetID, commentID string) error {
	comment, err := s.store.Comments().Get(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.DatasetID != datasetID {
		return errors.ErrCommentNotFound
	}
	if !s.authz.CanAct(ctx, uid, comment.UserID, authz.CapModerateContent) {
		return errors.ErrForbidden
	}
	return s.store.Comments().Delete(ctx, commentID)
}
