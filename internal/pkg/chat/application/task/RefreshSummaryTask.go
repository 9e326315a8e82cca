package task

import (
	"context"
	"encoding/json"
	"time"

	queueport "mentorchat/internal/infrastructure/queue/port"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

// RefreshSummaryTaskType is the queue task name for recomputing a
// conversation's denormalized last-message summary from the message log. The
// send path bumps the summary inline; this task is the repair path that keeps
// the directory ordering source of truth honest after crashes or races.
const RefreshSummaryTaskType = "chat:refresh_summary"

// RefreshSummaryPayload is the JSON payload transported via the queue.
type RefreshSummaryPayload struct {
	ConversationID string `json:"conversationId"`
}

// RegisterRefreshSummaryTask binds the task handler to the provided server.
func RegisterRefreshSummaryTask(srv queueport.Server, repo repository.ChatRepository) {
	srv.Register(RefreshSummaryTaskType, func(ctx context.Context, t queueport.Task) error {
		var p RefreshSummaryPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}
		if p.ConversationID == "" {
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		return repo.RefreshSummary(ctx, p.ConversationID)
	})
}

// EnqueueRefreshSummary schedules a summary repair for the conversation.
// Best-effort: a nil client or enqueue failure is ignored, the inline bump
// already happened.
func EnqueueRefreshSummary(ctx context.Context, q queueport.Client, conversationID string) {
	if q == nil || conversationID == "" {
		return
	}
	payload, err := json.Marshal(RefreshSummaryPayload{ConversationID: conversationID})
	if err != nil {
		return
	}
	_, _ = q.Enqueue(ctx, queueport.Task{Type: RefreshSummaryTaskType, Payload: payload}, queueport.EnqueueOption{
		Queue:     "chat",
		ProcessIn: 5 * time.Second,
		MaxRetry:  3,
		UniqueTTL: 30 * time.Second,
	})
}
