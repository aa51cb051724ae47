package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
)

// ScopeAll widens retrieval to every conversation. An empty ConversationID
// cannot be the sentinel because standalone document records carry one.
const ScopeAll model.ConversationID = "*"

// Match is a scored retrieval result
type Match struct {
	Record     *Record
	Similarity float64
}

// Retriever assembles prompt context from the memory store: semantic
// matches against the query embedding plus the most recent literal turns.
type Retriever struct {
	store  *Store
	gemini adapter.Gemini
}

// NewRetriever creates a retriever over the given store
func NewRetriever(store *Store, gemini adapter.Gemini) *Retriever {
	return &Retriever{
		store:  store,
		gemini: gemini,
	}
}

// RetrieveContext returns up to limit records most similar to the query,
// sorted by descending similarity with insertion order as tie-break.
// Scope is a conversation ID or ScopeAll. Embedding failures degrade to an
// empty result, never an error: the chat path must not depend on the
// embedding provider being up.
func (r *Retriever) RetrieveContext(ctx context.Context, query string, limit int, scope model.ConversationID) []Match {
	if query == "" || limit <= 0 {
		return nil
	}

	vector, err := r.gemini.Embedding(ctx, query)
	if err != nil {
		logging.From(ctx).Warn("embedding failed, skipping memory retrieval", "error", err)
		return nil
	}

	var candidates []*Record
	if scope == ScopeAll {
		candidates = r.store.QueryAll()
	} else {
		candidates = r.store.QueryByConversation(scope)
	}

	return rank(ctx, vector, candidates, limit)
}

// SearchFile scores the query against the document chunks of one file
func (r *Retriever) SearchFile(ctx context.Context, query string, fileID model.FileID, limit int) []Match {
	if query == "" || limit <= 0 {
		return nil
	}

	vector, err := r.gemini.Embedding(ctx, query)
	if err != nil {
		logging.From(ctx).Warn("embedding failed, skipping document search", "error", err)
		return nil
	}

	return rank(ctx, vector, r.store.Query(ByFile(fileID)), limit)
}

// rank scores candidates against the query vector, sorts descending and
// truncates. Candidates arrive in insertion order; the stable sort keeps
// that order for equal scores so results are deterministic.
func rank(ctx context.Context, vector []float32, candidates []*Record, limit int) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, rec := range candidates {
		sim, err := Cosine(vector, rec.Vector)
		if err != nil {
			logging.From(ctx).Warn("skipping record with mismatched vector",
				"record_id", rec.ID, "error", err)
			continue
		}
		matches = append(matches, Match{Record: rec, Similarity: sim})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// RecentTurns returns up to limit of the latest user/assistant turns of a
// conversation, oldest first, to preserve short-term conversational flow.
func (r *Retriever) RecentTurns(conversationID model.ConversationID, limit int) []model.Turn {
	records := r.store.Query(
		ByConversation(conversationID),
		ByRole(model.RoleUser, model.RoleAssistant),
	)

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].seq < records[j].seq
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	turns := make([]model.Turn, 0, len(records))
	for _, rec := range records {
		turns = append(turns, model.Turn{
			Role:      rec.Role,
			Text:      rec.Text,
			CreatedAt: rec.CreatedAt,
		})
	}
	return turns
}

// Render builds the prompt context block. Section order: profile context,
// semantic matches (with cross-conversation provenance), recent literal
// turns, then free-form extra context.
func Render(scope model.ConversationID, profileContext string, matches []Match, turns []model.Turn, extra string) string {
	var sb strings.Builder

	if profileContext != "" {
		sb.WriteString("=== Student Profile ===\n")
		sb.WriteString(profileContext)
		sb.WriteString("\n\n")
	}

	if len(matches) > 0 {
		sb.WriteString("=== Related Memory ===\n")
		for _, m := range matches {
			provenance := ""
			if m.Record.ConversationID != "" && m.Record.ConversationID != scope {
				provenance = fmt.Sprintf(" [from conversation %s]", m.Record.ConversationID)
			} else if m.Record.Meta.FileName != "" {
				provenance = fmt.Sprintf(" [from file %s]", m.Record.Meta.FileName)
			}
			fmt.Fprintf(&sb, "- (%.2f)%s %s\n", m.Similarity, provenance, m.Record.Text)
		}
		sb.WriteString("\n")
	}

	if len(turns) > 0 {
		sb.WriteString("=== Recent Conversation ===\n")
		for _, turn := range turns {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Text)
		}
		sb.WriteString("\n")
	}

	if extra != "" {
		sb.WriteString("=== Additional Context ===\n")
		sb.WriteString(extra)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
