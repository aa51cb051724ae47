package memory

import (
	"time"

	"github.com/sensei-tutor/sensei/pkg/model"
)

// Meta carries auxiliary fields of a memory record. Known fields are typed;
// anything else goes into Extra.
type Meta struct {
	FileName   string
	FileID     model.FileID
	ChunkIndex int
	Subject    string
	Extra      map[string]string
}

// Record is a single stored embedding with its original text.
// Records are immutable once inserted.
type Record struct {
	ID             string
	Vector         []float32
	Text           string
	ConversationID model.ConversationID
	Role           model.Role
	CreatedAt      time.Time
	Meta           Meta

	// seq is the insertion order, used as a stable tie-break when
	// similarity scores are equal.
	seq int
}

// Seq returns the insertion sequence number assigned by the store.
func (r *Record) Seq() int {
	return r.seq
}

// Filter is a function to filter records in query operations
type Filter func(*Record) bool

// ByConversation matches records of a single conversation
func ByConversation(id model.ConversationID) Filter {
	return func(r *Record) bool {
		return r.ConversationID == id
	}
}

// ByFile matches document records of a single uploaded file
func ByFile(id model.FileID) Filter {
	return func(r *Record) bool {
		return r.Meta.FileID == id
	}
}

// ByRole matches records with one of the given roles
func ByRole(roles ...model.Role) Filter {
	return func(r *Record) bool {
		for _, role := range roles {
			if r.Role == role {
				return true
			}
		}
		return false
	}
}
