// internal/app/features/messages/enrich.go
package messages

import (
	"context"

	messagestore "github.com/harborteam/harbor/internal/app/store/messages"
	"github.com/harborteam/harbor/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// enrich decorates raw message rows with author profiles, reaction
// summaries, and (for root timelines) thread summaries, batching every
// lookup so a page costs a fixed number of queries.
//
// Enrichment degrades instead of failing the page: a reply whose author
// membership is gone renders with an empty author rather than erroring,
// thread summaries for deleted parents simply come back empty, and a
// failed reaction or thread aggregation logs and leaves those fields
// empty so the messages themselves still get delivered.
func (h *Handler) enrich(ctx context.Context, msgs []models.Message, withThreads bool) ([]messageResponse, error) {
	out := make([]messageResponse, 0, len(msgs))
	if len(msgs) == 0 {
		return out, nil
	}

	msgIDs := make([]primitive.ObjectID, 0, len(msgs))
	memberSet := make(map[primitive.ObjectID]struct{})
	rootIDs := make([]primitive.ObjectID, 0, len(msgs))
	for _, m := range msgs {
		msgIDs = append(msgIDs, m.ID)
		memberSet[m.MemberID] = struct{}{}
		if m.IsRoot() {
			rootIDs = append(rootIDs, m.ID)
		}
	}

	reactions, err := h.Reactions.SummaryFor(ctx, msgIDs)
	if err != nil {
		h.Log.Warn("reaction summary failed; rendering page without reactions", zap.Error(err))
		reactions = nil
	}

	var threads map[primitive.ObjectID]messagestore.ThreadMeta
	if withThreads && len(rootIDs) > 0 {
		threads, err = h.Messages.ThreadMetaFor(ctx, rootIDs)
		if err != nil {
			h.Log.Warn("thread summary failed; rendering page without threads", zap.Error(err))
			threads = nil
		}
		for _, meta := range threads {
			memberSet[meta.LastMemberID] = struct{}{}
		}
	}

	memberIDs := make([]primitive.ObjectID, 0, len(memberSet))
	for id := range memberSet {
		memberIDs = append(memberIDs, id)
	}
	members, err := h.Members.GetMany(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	userIDs := make([]primitive.ObjectID, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}
	users, err := h.Users.GetMany(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	userFor := func(memberID primitive.ObjectID) (models.Member, models.User, bool) {
		member, ok := members[memberID]
		if !ok {
			return models.Member{}, models.User{}, false
		}
		user, ok := users[member.UserID]
		return member, user, ok
	}

	for _, m := range msgs {
		resp := baseResponse(m)

		if member, user, ok := userFor(m.MemberID); ok {
			resp.Author = authorView{
				MemberID: member.ID.Hex(),
				UserID:   user.ID.Hex(),
				Name:     user.Name,
				Image:    user.Image,
			}
		}

		for _, s := range reactions[m.ID] {
			rv := reactionView{Value: s.Value, Count: s.Count, MemberIDs: make([]string, 0, len(s.MemberIDs))}
			for _, id := range s.MemberIDs {
				rv.MemberIDs = append(rv.MemberIDs, id.Hex())
			}
			resp.Reactions = append(resp.Reactions, rv)
		}

		if meta, ok := threads[m.ID]; ok {
			tv := &threadView{Count: meta.ReplyCount, LastReplyAt: meta.LastReplyAt}
			if _, user, ok := userFor(meta.LastMemberID); ok {
				tv.LastAuthorName = user.Name
				tv.LastAuthorImage = user.Image
			}
			resp.Thread = tv
		}

		out = append(out, resp)
	}
	return out, nil
}
