package client

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	chat "mentorchat/internal/pkg/chat/application/domain"
)

// Roster holds the candidate counterparts for starting new conversations:
// mentors for a mentee, mentees for a mentor or admin.
type Roster struct {
	self chat.User
	api  Backend
	log  zerolog.Logger

	mu    sync.Mutex
	users []chat.User
}

func NewRoster(self chat.User, api Backend, log zerolog.Logger) *Roster {
	return &Roster{self: self, api: api, log: log}
}

// Refresh fetches the candidate set. A failed fetch keeps the previous set;
// stale-but-available beats empty.
func (r *Roster) Refresh(ctx context.Context) error {
	users, err := r.api.ListCounterparts(ctx, r.self.Role)
	if err != nil {
		return transient("load counterparts", err)
	}

	r.mu.Lock()
	r.users = users
	r.mu.Unlock()
	return nil
}

// Filter returns candidates whose display name contains query,
// case-insensitive. An empty query returns everyone.
func (r *Roster) Filter(query string) []chat.User {
	query = strings.ToLower(strings.TrimSpace(query))

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]chat.User, 0, len(r.users))
	for _, u := range r.users {
		if query == "" || strings.Contains(strings.ToLower(u.DisplayName), query) {
			out = append(out, u)
		}
	}
	return out
}
