package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salama135/discord-bots/internal/activity"
	"github.com/salama135/discord-bots/internal/commands"
	"github.com/salama135/discord-bots/internal/stats"
	"github.com/salama135/discord-bots/internal/views"
)

const maxMessageSize = 4 << 10

type messageRequest struct {
	Text string `json:"text" binding:"required"`
}

type commandRequest struct {
	Command string   `json:"command" binding:"required"`
	Args    []string `json:"args"`
}

type replyResponse struct {
	Success bool              `json:"success"`
	Handled bool              `json:"handled"`
	Outcome *commands.Outcome `json:"outcome,omitempty"`
	Reply   string            `json:"reply,omitempty"`
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		badRequest(c, "user id is required")
		return "", false
	}
	return id, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) reply(c *gin.Context, out commands.Outcome) {
	c.JSON(http.StatusOK, replyResponse{
		Success: out.Kind == commands.KindSuccess,
		Handled: true,
		Outcome: &out,
		Reply:   views.RenderReply(out, s.dispatcher.Prefix()),
	})
}

func (s *Server) handleMessage(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(req.Text) > maxMessageSize {
		badRequest(c, "text exceeds maximum size of 4KB")
		return
	}

	out, handled := s.dispatcher.DispatchText(c.Request.Context(), user, req.Text)
	if !handled {
		c.JSON(http.StatusOK, replyResponse{Success: false, Handled: false})
		return
	}
	s.reply(c, out)
}

func (s *Server) handleCommand(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	inv, err := commands.NewInvocation(s.dispatcher.Prefix(), req.Command, req.Args)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	s.reply(c, s.dispatcher.Dispatch(c.Request.Context(), user, inv))
}

func (s *Server) handleLogs(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", activity.FormatJSON)))
	data, err := s.logs.Export(c.Request.Context(), user, format)
	switch {
	case errors.Is(err, activity.ErrUnknownFormat):
		badRequest(c, err.Error())
		return
	case errors.Is(err, activity.ErrNoLog):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	contentType := "application/json; charset=utf-8"
	if format == activity.FormatCSV {
		contentType = "text/csv; charset=utf-8"
		c.Header("Content-Disposition", `attachment; filename="`+user+`_log.csv"`)
	}
	c.Data(http.StatusOK, contentType, data)
}

// handleStats runs the stats command so the view is logged like any other.
func (s *Server) handleStats(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(stats.DefaultWindowDays)))
	if err != nil || days < 1 {
		badRequest(c, "days must be a positive integer")
		return
	}
	inv, err := commands.NewInvocation(s.dispatcher.Prefix(), commands.NameStats, []string{strconv.Itoa(days)})
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	out := s.dispatcher.Dispatch(c.Request.Context(), user, inv)
	report, ok := out.Payload.(stats.Report)
	if out.Kind != commands.KindSuccess || !ok {
		status := http.StatusInternalServerError
		if out.Kind == commands.KindValidationError {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": out.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"period":  report.Period(),
		"report":  report,
	})
}
