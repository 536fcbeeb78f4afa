package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/learnedu/learnedu-backend/internal/attempt"
	"github.com/learnedu/learnedu-backend/internal/middleware"
	"github.com/learnedu/learnedu-backend/internal/model"
	"github.com/learnedu/learnedu-backend/internal/store"
	ws "github.com/learnedu/learnedu-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live attempt: countdown pushes down, answer and
// navigation actions up, the graded result on close.
type WSHandler struct {
	manager  *attempt.Manager
	kv       store.KV
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(manager *attempt.Manager, kv store.KV, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		manager:  manager,
		kv:       kv,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/exams/:exam_id/stream
// Upgrades to WebSocket for a running attempt. The attempt must have been
// started over REST first.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()
	conn := ws.NewConn(raw)

	studentID := claims.UserID.String()

	a, ok := h.manager.Get(studentID, examID.String())
	if !ok {
		conn.WriteError("no running attempt for this exam")
		return
	}

	wsLog := h.log.With().
		Str("student_id", studentID).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("Student connected")

	done := make(chan struct{})
	go h.pushTicks(conn, a, studentID, done, wsLog)
	defer close(done)

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionSelectAnswer:
			h.handleSelectAnswer(conn, a, &msg)
		case ws.ActionToggleFlag:
			h.handleToggleFlag(conn, a, &msg)
		case ws.ActionNavigate:
			h.handleNavigate(conn, a, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(c.Request.Context(), conn, studentID, examID.String(), wsLog)
			return
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// pushTicks sends the countdown once per second. When the attempt closes
// under the connection (timer expiry auto-submit), the graded result is
// pushed from the user's store before the loop exits.
func (h *WSHandler) pushTicks(conn *ws.Conn, a *attempt.Attempt, studentID string, done chan struct{}, wsLog zerolog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if a.Phase() == attempt.PhaseSubmitted {
				h.pushGradedFromStore(conn, a, studentID, wsLog)
				return
			}
			conn.WriteTyped(ws.TickResponse{
				Event:     ws.EventTick,
				Remaining: a.Remaining(),
				Answered:  a.AnsweredCount(),
			})
		}
	}
}

func (h *WSHandler) pushGradedFromStore(conn *ws.Conn, a *attempt.Attempt, studentID string, wsLog zerolog.Logger) {
	state := store.NewUserState(h.kv, studentID)
	result, err := state.LastResult(context.Background())
	if err != nil || result.ExamID != a.ExamID {
		wsLog.Warn().Err(err).Msg("graded result unavailable after auto-submit")
		conn.WriteError("attempt closed")
		return
	}
	writeGraded(conn, result)
}

func (h *WSHandler) handleSelectAnswer(conn *ws.Conn, a *attempt.Attempt, msg *ws.RequestPayload) {
	if msg.QID == "" || msg.Answer == "" {
		conn.WriteError("q_id and ans are required")
		return
	}
	if _, err := uuid.Parse(msg.QID); err != nil {
		conn.WriteError("invalid q_id format")
		return
	}

	if err := a.SelectAnswer(msg.QID, msg.Answer); err != nil {
		switch {
		case errors.Is(err, attempt.ErrAnswerLocked):
			conn.WriteError("answer change is not allowed on this exam")
		case errors.Is(err, attempt.ErrUnknownQuestion):
			conn.WriteError("unknown question")
		default:
			conn.WriteError("attempt already submitted")
		}
		return
	}

	conn.WriteTyped(ws.SuccessResponse{Event: ws.EventSuccess, Status: "saved"})
}

func (h *WSHandler) handleToggleFlag(conn *ws.Conn, a *attempt.Attempt, msg *ws.RequestPayload) {
	if msg.QID == "" {
		conn.WriteError("q_id is required")
		return
	}

	flagged, err := a.ToggleFlag(msg.QID)
	if err != nil {
		conn.WriteError("flag failed")
		return
	}

	conn.WriteTyped(ws.FlaggedResponse{Event: ws.EventFlagged, QID: msg.QID, Flagged: flagged})
}

func (h *WSHandler) handleNavigate(conn *ws.Conn, a *attempt.Attempt, msg *ws.RequestPayload) {
	position, err := a.Navigate(msg.Delta)
	if err != nil {
		if errors.Is(err, attempt.ErrNavigationDisabled) {
			conn.WriteError("navigation applies to one-by-one exams only")
			return
		}
		conn.WriteError("navigation failed")
		return
	}

	conn.WriteTyped(ws.MovedResponse{Event: ws.EventMoved, Position: position})
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *ws.Conn, studentID, examID string, wsLog zerolog.Logger) {
	result, err := h.manager.Submit(ctx, studentID, examID)
	if err != nil {
		if errors.Is(err, attempt.ErrClosed) {
			conn.WriteError("already submitted")
			return
		}
		wsLog.Error().Err(err).Msg("submit failed")
		conn.WriteError("submit failed")
		return
	}
	writeGraded(conn, result)
}

func writeGraded(conn *ws.Conn, result *model.ExamResult) {
	conn.WriteTyped(ws.GradedResponse{
		Event:      ws.EventGraded,
		Score:      result.Score,
		TotalMarks: result.TotalMarks,
		Percentage: result.Percentage,
		TimeTaken:  result.TimeTaken,
	})
}
