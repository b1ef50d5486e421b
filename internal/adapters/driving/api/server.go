package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
	"github.com/YusuphaJuwara/chatbotgermano/internal/core/ports/driving"
	"github.com/YusuphaJuwara/chatbotgermano/internal/logger"
)

// Default pagination limits, matching the CLI defaults.
const (
	defaultSessionLimit = 100
	defaultMessageLimit = 1000
)

// CorpusReader exposes the indexed corpus to the document lookup
// endpoint. Positions are the ids carried by retrieved chunks and
// citations.
type CorpusReader interface {
	Document(position int) (domain.Document, bool)
	Len() int
}

// Server is the HTTP front end for chat sessions.
type Server struct {
	engine   *gin.Engine
	sessions driving.SessionService
	corpus   CorpusReader
}

// NewServer builds the router. The corpus reader may be nil, in which
// case the document lookup endpoint reports an empty corpus.
func NewServer(sessions driving.SessionService, corpus CorpusReader) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:   gin.New(),
		sessions: sessions,
		corpus:   corpus,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestLogger())

	s.engine.GET("/", s.root)
	s.engine.POST("/sessions", s.createSession)
	s.engine.GET("/sessions", s.listSessions)
	s.engine.GET("/sessions/:id", s.getSession)
	s.engine.POST("/sessions/:id/messages", s.sendMessage)
	s.engine.GET("/sessions/:id/messages", s.listMessages)
	s.engine.POST("/documents", s.lookupDocuments)
	s.engine.GET("/citations/:id", s.getCitation)

	return s
}

// Handler returns the router for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP on addr until the listener fails.
func (s *Server) Run(addr string) error {
	logger.Info("api: listening on %s", addr)
	return s.engine.Run(addr)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("api: %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

type createSessionRequest struct {
	Title string `json:"title"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type citationResponse struct {
	ID          int64    `json:"id"`
	MessageID   int64    `json:"message_id"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Text        string   `json:"text"`
	DocumentIDs []string `json:"doc_ids"`
}

type messageResponse struct {
	ID        int64              `json:"id"`
	SessionID string             `json:"session_id"`
	Role      string             `json:"role"`
	Content   string             `json:"content"`
	AIModel   string             `json:"ai_model,omitempty"`
	Link      string             `json:"link,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Citations []citationResponse `json:"citations"`
}

type documentLookupRequest struct {
	DocumentIDs []string `json:"doc_ids"`
}

type documentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the germano chat API!"})
}

func (s *Server) createSession(c *gin.Context) {
	// The body is optional: a bare POST creates a session with the
	// default title.
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
	}

	session, err := s.sessions.CreateSession(c.Request.Context(), req.Title)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(session))
}

func (s *Server) listSessions(c *gin.Context) {
	skip, limit := pagination(c, defaultSessionLimit)

	sessions, err := s.sessions.ListSessions(c.Request.Context(), skip, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, toSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getSession(c *gin.Context) {
	session, err := s.sessions.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(session))
}

func (s *Server) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	msg, err := s.sessions.SendMessage(c.Request.Context(), c.Param("id"), req.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (s *Server) listMessages(c *gin.Context) {
	skip, limit := pagination(c, defaultMessageLimit)

	msgs, err := s.sessions.ListMessages(c.Request.Context(), c.Param("id"), skip, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]messageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, toMessageResponse(&msgs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) lookupDocuments(c *gin.Context) {
	var req documentLookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if len(req.DocumentIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No document IDs provided"})
		return
	}

	out := make([]documentResponse, 0, len(req.DocumentIDs))
	if s.corpus != nil {
		for _, id := range req.DocumentIDs {
			pos, err := strconv.Atoi(id)
			if err != nil {
				continue
			}
			doc, ok := s.corpus.Document(pos)
			if !ok {
				continue
			}
			out = append(out, documentResponse{ID: id, Title: doc.Title, Text: doc.Text})
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getCitation(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid citation id"})
		return
	}

	citation, err := s.sessions.GetCitation(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCitationResponse(*citation))
}

// fail maps domain errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
	case errors.Is(err, domain.ErrTurnInProgress):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	default:
		logger.Error("api: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	}
}

func pagination(c *gin.Context, defaultLimit int) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", ""))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if skip < 0 {
		skip = 0
	}
	return skip, limit
}

func toSessionResponse(s *domain.ChatSession) sessionResponse {
	return sessionResponse{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt}
}

func toMessageResponse(m *domain.Message) messageResponse {
	citations := make([]citationResponse, 0, len(m.Citations))
	for _, c := range m.Citations {
		citations = append(citations, toCitationResponse(c))
	}
	return messageResponse{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      m.Role,
		Content:   m.Content,
		AIModel:   m.AIModel,
		Link:      m.Link,
		Timestamp: m.CreatedAt,
		Citations: citations,
	}
}

func toCitationResponse(c domain.Citation) citationResponse {
	return citationResponse{
		ID:          c.ID,
		MessageID:   c.MessageID,
		Start:       c.Start,
		End:         c.End,
		Text:        c.Text,
		DocumentIDs: c.DocumentIDs,
	}
}
