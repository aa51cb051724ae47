package chat

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sensei-tutor/sensei/pkg/adapter"
	"github.com/sensei-tutor/sensei/pkg/memory"
	"github.com/sensei-tutor/sensei/pkg/model"
	"github.com/sensei-tutor/sensei/pkg/profile"
	"github.com/sensei-tutor/sensei/pkg/service/dspy"
	"github.com/sensei-tutor/sensei/pkg/utils/logging"
	"google.golang.org/genai"
)

const (
	// MaxAttachments limits files per chat request
	MaxAttachments = 5

	// contextLimit is the number of semantic matches for a normal turn;
	// recallLimit applies when the message asks about past conversations
	contextLimit    = 5
	recallLimit     = 10
	recentTurnLimit = 6
)

// Attachment is a file sent along with a chat message
type Attachment struct {
	Name     string
	MimeType string
	Data     []byte
}

// RespondInput is one chat request
type RespondInput struct {
	Message        string
	ConversationID model.ConversationID // empty starts a new conversation
	UserID         string
	Subject        string
	Difficulty     string
	Attachments    []Attachment
	ExtraContext   string
}

// RespondOutput is the result of one chat turn
type RespondOutput struct {
	Text           string
	ConversationID model.ConversationID
	FilesProcessed int

	// Enhanced is true when the DSPy service produced the response; the
	// structured fields below are only set in that case
	Enhanced    bool
	Explanation string
	NextSteps   []string
	Confidence  float64
}

// phase is one step of the response state machine
type phase int

const (
	phaseStart phase = iota
	phaseFileIngest
	phaseContextBuild
	phaseGeneratePrimary
	phaseGenerateFallback
	phasePersist
	phaseDone
	phaseError
)

func (p phase) String() string {
	switch p {
	case phaseStart:
		return "start"
	case phaseFileIngest:
		return "file_ingest"
	case phaseContextBuild:
		return "context_build"
	case phaseGeneratePrimary:
		return "generate_primary"
	case phaseGenerateFallback:
		return "generate_fallback"
	case phasePersist:
		return "persist"
	case phaseDone:
		return "done"
	case phaseError:
		return "error"
	default:
		return "unknown"
	}
}

type respondState struct {
	input          *RespondInput
	conversationID model.ConversationID
	profile        *profile.Profile

	fileContext    string
	filesProcessed int
	contextBlock   string

	reply    string
	enhanced *dspy.ChatResponse
	err      error
}

// Respond runs one chat turn through the phase machine. Context retrieval
// and persistence failures are absorbed; only validation and generation
// failures reach the caller.
func (u *UseCase) Respond(ctx context.Context, input *RespondInput) (*RespondOutput, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, goerr.New("message is empty", goerr.T(model.ErrTagValidation))
	}
	if len(input.Attachments) > MaxAttachments {
		return nil, goerr.New("too many attachments",
			goerr.V("count", len(input.Attachments)), goerr.V("max", MaxAttachments),
			goerr.T(model.ErrTagValidation))
	}

	st := &respondState{
		input:          input,
		conversationID: input.ConversationID,
		profile:        u.profiles.Get(input.Subject),
	}
	if st.conversationID == "" {
		st.conversationID = model.NewConversationID()
	}

	for ph := phaseStart; ph != phaseDone; {
		next := u.step(ctx, ph, st)
		logging.From(ctx).Debug("chat phase transition", "from", ph.String(), "to", next.String())
		if next == phaseError {
			return nil, st.err
		}
		ph = next
	}

	out := &RespondOutput{
		Text:           st.reply,
		ConversationID: st.conversationID,
		FilesProcessed: st.filesProcessed,
	}
	if st.enhanced != nil {
		out.Enhanced = true
		out.Explanation = st.enhanced.Explanation
		out.NextSteps = st.enhanced.NextSteps
		out.Confidence = st.enhanced.Confidence
	}
	return out, nil
}

func (u *UseCase) step(ctx context.Context, ph phase, st *respondState) phase {
	switch ph {
	case phaseStart:
		if len(st.input.Attachments) > 0 {
			return phaseFileIngest
		}
		return phaseContextBuild

	case phaseFileIngest:
		st.fileContext, st.filesProcessed = u.ingestAttachments(ctx, st.input.Attachments)
		return phaseContextBuild

	case phaseContextBuild:
		u.buildContext(ctx, st)
		return phaseGeneratePrimary

	case phaseGeneratePrimary:
		return u.generatePrimary(ctx, st)

	case phaseGenerateFallback:
		return u.generateDirect(ctx, st)

	case phasePersist:
		u.persist(ctx, st)
		return phaseDone

	default:
		st.err = goerr.New("invalid chat phase", goerr.V("phase", ph.String()))
		return phaseError
	}
}

// buildContext assembles semantic matches and recent turns. A message that
// refers back to past conversations widens the scope to every conversation
// and raises the match limit. Never fails: retrieval errors degrade to an
// empty context block.
func (u *UseCase) buildContext(ctx context.Context, st *respondState) {
	scope := st.conversationID
	limit := contextLimit
	if memory.IsRecallQuery(st.input.Message) {
		scope = memory.ScopeAll
		limit = recallLimit
	}

	matches := u.retriever.RetrieveContext(ctx, st.input.Message, limit, scope)
	turns := u.retriever.RecentTurns(st.conversationID, recentTurnLimit)

	extra := st.input.ExtraContext
	if st.fileContext != "" {
		if extra != "" {
			extra += "\n"
		}
		extra += st.fileContext
	}

	st.contextBlock = memory.Render(st.conversationID, "", matches, turns, extra)
}

// generatePrimary routes to the enhanced service when it is enabled and its
// cached health check passes; otherwise direct generation is the primary.
func (u *UseCase) generatePrimary(ctx context.Context, st *respondState) phase {
	if u.enhanced == nil || !u.enhanced.Healthy(ctx) {
		return u.generateDirect(ctx, st)
	}

	resp, err := u.enhanced.Chat(ctx, &dspy.ChatRequest{
		Message:         st.input.Message,
		ConversationID:  string(st.conversationID),
		UserID:          st.input.UserID,
		Subject:         st.profile.Subject,
		DifficultyLevel: st.input.Difficulty,
		Context: map[string]any{
			"memory": st.contextBlock,
		},
	})
	if err != nil {
		logging.From(ctx).Warn("enhanced generation failed", "error", err)
		if u.fallback {
			return phaseGenerateFallback
		}
		st.err = goerr.Wrap(err, "generation failed", goerr.T(model.ErrTagProvider))
		return phaseError
	}

	st.reply = resp.Response
	st.enhanced = resp
	return phasePersist
}

// generateDirect calls the Gemini API with the assembled system prompt
func (u *UseCase) generateDirect(ctx context.Context, st *respondState) phase {
	systemPrompt, err := buildSystemPrompt(st.profile, st.input.Difficulty, st.contextBlock)
	if err != nil {
		st.err = err
		return phaseError
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(st.input.Message, genai.RoleUser),
	}

	resp, err := u.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		st.err = goerr.Wrap(err, "generation failed", goerr.T(model.ErrTagProvider))
		return phaseError
	}

	text := adapter.ResponseText(resp)
	if text == "" {
		st.err = goerr.New("generation returned no text", goerr.T(model.ErrTagProvider))
		return phaseError
	}

	st.reply = text
	return phasePersist
}

// persist writes the user turn and the generated turn into the memory store
// and updates the conversation aggregate. Failures are logged, never fatal:
// the student still gets their answer.
func (u *UseCase) persist(ctx context.Context, st *respondState) {
	u.remember(ctx, st, model.RoleUser, st.input.Message)
	u.remember(ctx, st, model.RoleAssistant, st.reply)

	conv, err := u.repo.GetConversation(ctx, st.conversationID)
	if err != nil {
		if !goerr.HasTag(err, model.ErrTagNotFound) {
			logging.From(ctx).Warn("failed to load conversation for update", "error", err)
			return
		}
		conv = model.NewConversation(st.conversationID, st.input.UserID, st.profile.Subject, st.input.Message)
	}

	conv.Touch(2)
	if err := u.repo.PutConversation(ctx, conv); err != nil {
		logging.From(ctx).Warn("failed to save conversation", "error", err,
			"conversation_id", st.conversationID)
	}
}

func (u *UseCase) remember(ctx context.Context, st *respondState, role model.Role, text string) {
	vector, err := u.gemini.Embedding(ctx, text)
	if err != nil {
		logging.From(ctx).Warn("embedding failed, skipping memory write",
			"role", role, "error", err)
		return
	}

	if _, err := u.store.Insert(&memory.Record{
		Vector:         vector,
		Text:           text,
		ConversationID: st.conversationID,
		Role:           role,
		CreatedAt:      time.Now(),
		Meta:           memory.Meta{Subject: st.profile.Subject},
	}); err != nil {
		logging.From(ctx).Warn("failed to insert memory record", "role", role, "error", err)
	}
}
