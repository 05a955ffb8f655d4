// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	channelstore "github.com/harborteam/harbor/internal/app/store/channels"
	conversationstore "github.com/harborteam/harbor/internal/app/store/conversations"
	"github.com/harborteam/harbor/internal/app/store/emailverify"
	memberstore "github.com/harborteam/harbor/internal/app/store/members"
	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	"github.com/harborteam/harbor/internal/app/store/oauthstate"
	reactionstore "github.com/harborteam/harbor/internal/app/store/reactions"
	uploadstore "github.com/harborteam/harbor/internal/app/store/uploads"
	userstore "github.com/harborteam/harbor/internal/app/store/users"
	workspacestore "github.com/harborteam/harbor/internal/app/store/workspaces"
	"go.mongodb.org/mongo-driver/mongo"
)

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
Errors are aggregated so every problem is visible and startup can fail
fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var problems []string
	ensure := func(name string, fn func(context.Context) error) {
		if err := fn(ctx); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	ensure("users", userstore.New(db).EnsureIndexes)
	ensure("workspaces", workspacestore.New(db).EnsureIndexes)
	ensure("members", memberstore.New(db).EnsureIndexes)
	ensure("channels", channelstore.New(db).EnsureIndexes)
	ensure("conversations", conversationstore.New(db).EnsureIndexes)
	ensure("messages", messagestore.New(db).EnsureIndexes)
	ensure("reactions", reactionstore.New(db).EnsureIndexes)
	ensure("email_verifications", emailverify.New(db, 0).EnsureIndexes)
	ensure("oauth_states", oauthstate.New(db).EnsureIndexes)
	ensure("uploads", uploadstore.New(db).EnsureIndexes)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
