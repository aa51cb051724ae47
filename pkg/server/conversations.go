package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sensei-tutor/sensei/pkg/model"
)

// ConversationSummary is the list representation of a conversation
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Subject      string    `json:"subject,omitempty"`
	MessageCount int       `json:"message_count"`
	Tags         []string  `json:"tags,omitempty"`
	Archived     bool      `json:"archived"`
	LastActivity time.Time `json:"last_activity"`
}

func toSummaries(convs []*model.Conversation) []ConversationSummary {
	out := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		out = append(out, ConversationSummary{
			ID:           string(conv.ID),
			Title:        conv.Title,
			Subject:      conv.Subject,
			MessageCount: conv.MessageCount,
			Tags:         conv.Tags,
			Archived:     conv.Archived,
			LastActivity: conv.LastActivity,
		})
	}
	return out
}

func (s *Server) handleListConversations(c echo.Context) error {
	includeArchived := c.QueryParam("archived") == "true"

	convs, err := s.convs.List(c.Request().Context(), includeArchived)
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"conversations": toSummaries(convs)})
}

func (s *Server) handleSearchConversations(c echo.Context) error {
	convs, err := s.convs.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"conversations": toSummaries(convs)})
}

func (s *Server) handleArchiveConversation(c echo.Context) error {
	id := model.ConversationID(c.Param("id"))
	if err := s.convs.Archive(c.Request().Context(), id); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "archived"})
}

func (s *Server) handleDeleteConversation(c echo.Context) error {
	id := model.ConversationID(c.Param("id"))
	if err := s.convs.Delete(c.Request().Context(), id); err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleMemoryStats(c echo.Context) error {
	stats, err := s.convs.Stats(c.Request().Context())
	if err != nil {
		return s.httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
