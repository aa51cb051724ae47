package conversation

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/repository"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// List returns conversations sorted by last activity, newest first.
// Archived conversations are excluded unless includeArchived is set.
func (u *UseCase) List(ctx context.Context, includeArchived bool) ([]*model.Conversation, error) {
	var filters []repository.ConversationFilter
	if !includeArchived {
		filters = append(filters, repository.NotArchived())
	}

	convs, err := u.repo.ListConversations(ctx, filters...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations")
	}

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastActivity.After(convs[j].LastActivity)
	})
	return convs, nil
}

// Semantic search tuning. The floor keeps weakly related conversations
// out of literal-match results.
const (
	semanticSearchLimit = 10
	semanticSearchFloor = 0.5
)

// Search returns non-archived conversations whose title or tags contain
// the query, case-insensitive, plus conversations whose stored turns are
// semantically close to it, sorted by last activity.
func (u *UseCase) Search(ctx context.Context, query string) ([]*model.Conversation, error) {
	raw := strings.TrimSpace(query)
	lowered := strings.ToLower(raw)
	if lowered == "" {
		return nil, goerr.New("search query is empty", goerr.T(model.ErrTagValidation))
	}

	match := func(c *model.Conversation) bool {
		if strings.Contains(strings.ToLower(c.Title), lowered) {
			return true
		}
		for _, tag := range c.Tags {
			if strings.Contains(strings.ToLower(tag), lowered) {
				return true
			}
		}
		return false
	}

	convs, err := u.repo.ListConversations(ctx, repository.NotArchived(), match)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search conversations")
	}

	convs = append(convs, u.searchSemantic(ctx, raw, convs)...)

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastActivity.After(convs[j].LastActivity)
	})
	return convs, nil
}

// searchSemantic resolves memory records similar to the query into their
// owning conversations, skipping archived ones and any already in seen.
// Retrieval failures degrade to no extra results.
func (u *UseCase) searchSemantic(ctx context.Context, query string, seen []*model.Conversation) []*model.Conversation {
	if u.retriever == nil {
		return nil
	}

	found := map[model.ConversationID]bool{}
	for _, c := range seen {
		found[c.ID] = true
	}

	var extra []*model.Conversation
	for _, m := range u.retriever.RetrieveContext(ctx, query, semanticSearchLimit, memory.ScopeAll) {
		id := m.Record.ConversationID
		if id == "" || found[id] || m.Similarity < semanticSearchFloor {
			continue
		}
		found[id] = true

		conv, err := u.repo.GetConversation(ctx, id)
		if err != nil {
			logging.From(ctx).Warn("skipping unresolvable conversation in search",
				"conversation_id", id, "error", err)
			continue
		}
		if conv.Archived {
			continue
		}
		extra = append(extra, conv)
	}
	return extra
}
