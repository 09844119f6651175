// Package stub implements a development backend for the chat widget. It
// answers POST /llm by echoing the message back as JSON, as an SSE stream,
// as plain text lines or as an error, so every client path can be exercised
// without a real model behind it.
package stub

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/chatwidget/pkg/client"
	"github.com/papercomputeco/chatwidget/pkg/sse"
	"github.com/papercomputeco/chatwidget/pkg/utils"
)

// UnavailableDetail is the detail returned in ModeError.
const UnavailableDetail = "model unavailable"

// Server is the stub backend.
type Server struct {
	config Config
	logger *slog.Logger
	app    *fiber.App
}

// detailResponse mirrors the {"detail": ...} error body the client parses.
type detailResponse struct {
	Detail string `json:"detail"`
}

// resultResponse is the buffered reply of ModeJSON.
type resultResponse struct {
	Result string `json:"result"`
}

// New creates a new stub Server. A zero Mode defaults to ModeSSE.
func New(config Config, logger *slog.Logger) *Server {
	if config.Mode == "" {
		config.Mode = ModeSSE
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/llm", s.handleChat)

	return s
}

// Run starts the stub backend on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting stub backend",
		"listen", s.config.ListenAddr,
		"mode", s.config.Mode,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the stub backend using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting stub backend",
		"listen", listener.Addr().String(),
		"mode", s.config.Mode,
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the stub backend.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Handler exposes the stub as a net/http handler. Streamed bodies are
// buffered by the adapter, so use Run or RunWithListener to observe
// incremental delivery.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	requestID := c.Get(client.RequestIDHeader)
	if requestID != "" {
		c.Set(client.RequestIDHeader, requestID)
	}

	var req client.Request
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		s.logger.Debug("invalid chat request", "request_id", requestID, "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(detailResponse{Detail: "invalid request body"})
	}

	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(detailResponse{Detail: "message must not be empty"})
	}

	s.logger.Info("chat request",
		"request_id", requestID,
		"mode", s.config.Mode,
		"message", utils.Truncate(req.Message, 64),
	)

	// Collapsing whitespace keeps every streamed chunk on a single non-blank line.
	reply := "You said: " + strings.Join(strings.Fields(req.Message), " ")

	switch s.config.Mode {
	case ModeJSON:
		return c.JSON(resultResponse{Result: reply})
	case ModeError:
		return c.Status(fiber.StatusInternalServerError).JSON(detailResponse{Detail: UnavailableDetail})
	case ModeText:
		c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
		return s.stream(c, textLines(Chunks(reply)))
	default:
		c.Set(fiber.HeaderContentType, "text/event-stream")
		return s.stream(c, sseLines(Chunks(reply)))
	}
}

// stream writes lines to the client one chunk at a time.
func (s *Server) stream(c *fiber.Ctx, lines []string) error {
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// pw.Write blocks until fasthttp reads from the pipe and flushes the
	// chunk, so each line reaches the socket before the next delay starts.
	pr, pw := io.Pipe()
	go s.writeLines(pw, lines)

	// Unknown size (-1) selects chunked transfer encoding.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

func (s *Server) writeLines(pw *io.PipeWriter, lines []string) {
	defer pw.Close()

	for i, line := range lines {
		if i > 0 && s.config.Delay > 0 {
			time.Sleep(s.config.Delay)
		}
		if _, err := io.WriteString(pw, line); err != nil {
			s.logger.Debug("client went away mid-stream", "error", err, "chunks", i)
			return
		}
	}
}

// Chunks splits a reply into word-sized pieces whose concatenation is the
// reply itself. Every piece after the first keeps its leading space.
func Chunks(reply string) []string {
	words := strings.Split(reply, " ")
	chunks := make([]string, 0, len(words))
	for i, w := range words {
		if i > 0 {
			w = " " + w
		}
		chunks = append(chunks, w)
	}
	return chunks
}

func sseLines(chunks []string) []string {
	lines := make([]string, 0, len(chunks)+1)
	for _, chunk := range chunks {
		lines = append(lines, sse.DataPrefix+chunk+"\n\n")
	}
	return append(lines, sse.DataPrefix+sse.DoneSentinel+"\n\n")
}

func textLines(chunks []string) []string {
	lines := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		lines = append(lines, chunk+"\n")
	}
	return lines
}
