// README: Plan archive service: marshal, persist, and fetch computed plans.
package plans

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"carpool/internal/modules/carpool"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Archive stores a computed plan and returns the archive row id.
func (s *Service) Archive(ctx context.Context, resp carpool.Response) (string, error) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	rec := &Record{
		ID:        uuid.NewString(),
		PlanDate:  resp.Date,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// Latest returns the most recently archived plan for a service date.
func (s *Service) Latest(ctx context.Context, date string) (carpool.Response, error) {
	payload, err := s.store.Latest(ctx, date)
	if err != nil {
		return carpool.Response{}, err
	}
	var resp carpool.Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return carpool.Response{}, err
	}
	return resp, nil
}
