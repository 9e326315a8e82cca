package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	cacheport "mentorchat/internal/infrastructure/cache/port"
	chat "mentorchat/internal/pkg/chat/application/domain"
	repository "mentorchat/internal/pkg/chat/persistence/repository/port"
)

const rosterCacheTTL = 30 * time.Second

// ListCounterpartsInput carries the requesting user's role and an optional
// case-insensitive display-name filter.
type ListCounterpartsInput struct {
	Role  chat.Role
	Query string
}

// ListCounterpartsUseCase returns the set of users the caller may open a
// conversation with: mentors for a mentee, mentees for a mentor or admin.
// The role listing is cached briefly; the cache is optional and a cache
// failure never fails the request.
type ListCounterpartsUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache
}

func NewListCounterpartsUseCase(repo repository.ChatRepository, cache cacheport.Cache) *ListCounterpartsUseCase {
	return &ListCounterpartsUseCase{Repo: repo, Cache: cache}
}

func (uc *ListCounterpartsUseCase) Execute(ctx context.Context, in ListCounterpartsInput) ([]chat.User, error) {
	if !in.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}

	target := in.Role.Counterpart()
	users, err := uc.listByRole(ctx, target)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(in.Query))
	if query == "" {
		return users, nil
	}

	filtered := make([]chat.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.DisplayName), query) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (uc *ListCounterpartsUseCase) listByRole(ctx context.Context, role chat.Role) ([]chat.User, error) {
	key := "roster:" + string(role)

	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var users []chat.User
			if json.Unmarshal([]byte(raw), &users) == nil {
				return users, nil
			}
		}
	}

	users, err := uc.Repo.ListUsersByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(users); err == nil {
			_ = uc.Cache.Set(ctx, key, string(raw), rosterCacheTTL)
		}
	}
	return users, nil
}
