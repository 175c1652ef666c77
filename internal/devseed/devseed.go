// Package devseed populates a development database with accounts and sample
// data so the API is usable immediately after startup. It only runs in dev
// mode and every step is idempotent.
package devseed

import (
	"context"
	"log/slog"

	"github.com/promptline/promptline-api/internal/apperrors"
	"github.com/promptline/promptline-api/internal/core"
	"github.com/promptline/promptline-api/internal/domain/model"
	"github.com/promptline/promptline-api/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Auth          *service.AuthService
	Conversations core.ConversationRepository
}

// Run executes the development seeding workflow. Existing accounts are left
// untouched so repeated startups do not error.
func Run(ctx context.Context, svcs Services, logger *slog.Logger) error {
	accounts := []model.RegisterRequest{
		{Username: "dev", Email: "dev@promptline.local", Password: "devpassword1"},
		{Username: "alice", Email: "alice@promptline.local", Password: "devpassword1"},
	}

	for i := range accounts {
		req := accounts[i]
		user, err := svcs.Auth.Register(ctx, &req)
		if err != nil {
			if apperrors.IsConflict(err) {
				if logger != nil {
					logger.InfoContext(ctx, "dev account already exists", "username", req.Username)
				}
				continue
			}
			return err
		}
		if logger != nil {
			logger.InfoContext(ctx, "dev account created", "username", user.Username, "user_id", user.ID)
		}
		if err := seedConversation(ctx, svcs.Conversations, user.ID); err != nil {
			if logger != nil {
				logger.WarnContext(ctx, "failed to seed sample conversation", "username", user.Username, "error", err)
			}
		}
	}
	return nil
}

// seedConversation gives a freshly created account one conversation so list
// endpoints return data out of the box.
func seedConversation(ctx context.Context, repo core.ConversationRepository, ownerID string) error {
	if repo == nil {
		return nil
	}
	_, err := repo.Create(ctx, &model.CreateConversationRequest{
		OwnerID: ownerID,
		Messages: []model.ChatMessage{
			{Role: model.ChatRoleUser, Content: "Hello!"},
			{Role: model.ChatRoleAssistant, Content: "Hi! Ask me anything."},
		},
	})
	return err
}
