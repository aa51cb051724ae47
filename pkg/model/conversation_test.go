package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sensei-tutor/sensei/pkg/model"
)

func TestNewConversation(t *testing.T) {
	id := model.NewConversationID()
	conv := model.NewConversation(id, "user-1", "math", "How do I factor quadratics?")

	gt.Equal(t, conv.ID, id)
	gt.Equal(t, conv.UserID, "user-1")
	gt.Equal(t, conv.Subject, "math")
	gt.Equal(t, conv.Title, "How do I factor quadratics?")
	gt.V(t, conv.MessageCount).Equal(0)
	gt.False(t, conv.Archived)
	gt.False(t, conv.CreatedAt.IsZero())
}

func TestNewConversationLongTitle(t *testing.T) {
	long := strings.Repeat("a", 100)
	conv := model.NewConversation(model.NewConversationID(), "u", "general", long)

	gt.True(t, strings.HasSuffix(conv.Title, "..."))
	gt.True(t, len([]rune(conv.Title)) < 70)
}

func TestConversationTouch(t *testing.T) {
	conv := model.NewConversation(model.NewConversationID(), "u", "general", "hi")
	before := conv.LastActivity

	conv.Touch(2)
	gt.V(t, conv.MessageCount).Equal(2)
	gt.False(t, conv.LastActivity.Before(before))

	conv.Touch(2)
	gt.V(t, conv.MessageCount).Equal(4)
}
