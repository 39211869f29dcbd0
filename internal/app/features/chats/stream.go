// internal/app/features/chats/stream.go
package chats

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/dalemusser/collabhub/internal/app/features/errors"
	chatstore "github.com/dalemusser/collabhub/internal/app/store/chats"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const writeWait = 10 * time.Second

// Stream handles GET /projects/{projectID}/chats/{chatID}/stream and
// upgrades to a WebSocket that carries one JSON Message per frame.
//
// Delivery contract: history after ?after_seq is replayed first, then
// live messages follow, in sequence order with no gaps or duplicates.
// The hub subscription is taken before the history read, so a message
// sent during replay appears in both; the live loop drops anything at
// or below the last replayed sequence.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	_, uid, projectID, ok := h.memberGate(w, r)
	if !ok {
		return
	}
	chatID := chi.URLParam(r, "chatID")
	afterSeq, _ := strconv.ParseInt(r.URL.Query().Get("after_seq"), 10, 64)

	// The chat must exist before we upgrade; a plain error response is
	// still possible here.
	if _, err := h.Chats.ListMessages(r.Context(), projectID, chatID, 0, 1); err != nil {
		if errors.Is(err, chatstore.ErrChatNotFound) {
			apierrors.RenderNotFound(w, "Channel not found.")
			return
		}
		h.ErrLog.LogServerError(w, r, "stream open failed", err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.Log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// Subscribe before reading history so no message falls in the gap.
	sub := h.Hub.Subscribe(projectID, chatID)
	defer sub.Cancel()

	// We never expect client frames; CloseRead gives us a context that
	// ends when the peer disconnects.
	ctx := conn.CloseRead(r.Context())

	history, err := h.Chats.ListMessages(ctx, projectID, chatID, afterSeq, 0)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "history unavailable")
		return
	}

	lastSeq := afterSeq
	for _, msg := range history {
		if err := writeMessage(ctx, conn, msg); err != nil {
			return
		}
		lastSeq = msg.Seq
	}

	h.Log.Debug("chat stream open",
		zap.String("project_id", projectID.Hex()),
		zap.String("chat_id", chatID),
		zap.String("user_id", uid.Hex()),
		zap.Int64("replayed_through", lastSeq))

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg, ok := <-sub.C():
			if !ok {
				// Detached as a slow consumer.
				conn.Close(websocket.StatusPolicyViolation, "too slow")
				return
			}
			if msg.Seq <= lastSeq {
				continue // already replayed from history
			}
			if err := writeMessage(ctx, conn, msg); err != nil {
				return
			}
			lastSeq = msg.Seq
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg models.Message) error {
	wctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(wctx, conn, msg)
}
