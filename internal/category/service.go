package category

import (
	"context"
	"encoding/json"
	"time"

	"github.com/byoma-kusuma/sangha-management-backend/utils"
)

const listCacheKey = "cache:event_categories"
const listCacheTTL = 12 * time.Hour

// Service wraps category lookups with a Redis read-through cache.
// Categories are immutable reference data, so a long TTL is safe.
type Service struct {
	Repo *Repository
}

func NewService(r *Repository) *Service {
	return &Service{Repo: r}
}

func (s *Service) GetByID(id uint) (*EventCategory, error) {
	return s.Repo.GetByID(id)
}

func (s *Service) GetByCode(code string) (*EventCategory, error) {
	return s.Repo.GetByCode(code)
}

func (s *Service) List(ctx context.Context) ([]EventCategory, error) {
	if cached, err := utils.CacheGet(ctx, listCacheKey); err == nil && cached != "" {
		var cats []EventCategory
		if err := json.Unmarshal([]byte(cached), &cats); err == nil {
			return cats, nil
		}
	}

	cats, err := s.Repo.List()
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cats); err == nil {
		_ = utils.CacheSet(ctx, listCacheKey, string(payload), listCacheTTL)
	}

	return cats, nil
}
