package memory_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/sensei-tutor/sensei/pkg/memory"
)

func TestIsRecallQuery(t *testing.T) {
	recall := []string{
		"Do you remember what we covered?",
		"I remembered you explained this",
		"Can you recall my last question?",
		"As I said in a previous session",
		"We discussed this earlier",
		"Last time you explained pointers",
		"You mentioned slices before",
		"we talked about interfaces",
		"you told me to practice recursion",
	}
	for _, msg := range recall {
		gt.True(t, memory.IsRecallQuery(msg))
	}

	plain := []string{
		"What is a goroutine?",
		"Explain binary search",
		"How do I reverse a string?",
		"The membrane of a cell",
		"An ember from the campfire",
	}
	for _, msg := range plain {
		gt.False(t, memory.IsRecallQuery(msg))
	}
}
