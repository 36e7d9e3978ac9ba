package deliverytest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/deliverykit/jsonvalue"
	"github.com/kbukum/deliverykit/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Path is the route the fake endpoint serves.
const Path = "/rest/v1/delivery/"

// Captured is one request received by the server.
type Captured struct {
	ClientCode string
	SessionID  string
	Body       jsonvalue.Value
}

// Reply is a scripted response. Raw, when set, is sent verbatim.
type Reply struct {
	Status int
	Body   any
	Raw    []byte
}

// Server is a fake delivery endpoint backed by httptest.Server. Replies are
// consumed in order; once exhausted every request gets 200 {"status":200}.
type Server struct {
	mu       sync.Mutex
	ts       *httptest.Server
	engine   *gin.Engine
	replies  []Reply
	requests []Captured
	log      *logger.Logger
}

// NewServer creates a stopped server.
func NewServer() *Server {
	s := &Server{log: logger.NewDefault("deliverytest")}
	s.engine = gin.New()
	s.engine.POST(Path, s.handle)
	return s
}

// Start begins serving on a random local port.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts != nil {
		return fmt.Errorf("deliverytest: server already started")
	}
	s.ts = httptest.NewServer(s.engine)
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return nil
	}
	s.ts.Close()
	s.ts = nil
	return nil
}

// BaseURL returns "http://127.0.0.1:PORT", or "" when stopped.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ts == nil {
		return ""
	}
	return s.ts.URL
}

// Reply queues a JSON response.
func (s *Server) Reply(status int, body any) {
	s.Script(Reply{Status: status, Body: body})
}

// Script queues replies.
func (s *Server) Script(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Captured(nil), s.requests...)
}

// Reset drops queued replies and captured requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = nil
	s.requests = nil
}

func (s *Server) handle(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	body, err := jsonvalue.Parse(raw)
	if err != nil {
		s.log.Warn("unparseable request body", logger.Fields(logger.FieldError, err.Error()))
	}

	s.mu.Lock()
	s.requests = append(s.requests, Captured{
		ClientCode: c.Query("client"),
		SessionID:  c.Query("sessionId"),
		Body:       body,
	})
	reply := Reply{Status: http.StatusOK, Body: gin.H{"status": http.StatusOK}}
	if len(s.replies) > 0 {
		reply = s.replies[0]
		s.replies = s.replies[1:]
	}
	s.mu.Unlock()

	if reply.Raw != nil {
		c.Data(reply.Status, "application/json", reply.Raw)
		return
	}
	c.JSON(reply.Status, reply.Body)
}
