package rest

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/repository"
)

type carRepository struct {
	client *Client
}

func NewCarRepository(client *Client) repository.CarRepository {
	return &carRepository{client: client}
}

// List fetches the catalog, pushing the cheap filters to the server.
// Availability is a calendar concern and is resolved by the caller.
func (r *carRepository) List(ctx context.Context, filters domain.FilterSet) ([]domain.Car, error) {
	q := url.Values{}
	if v := strings.TrimSpace(filters.Gear); v != "" {
		q.Set("filters[gear]", v)
	}
	if v := strings.TrimSpace(filters.Fuel); v != "" {
		q.Set("filters[fuel]", v)
	}
	if v := strings.TrimSpace(filters.Brand); v != "" {
		q.Set("filters[brand]", v)
	}
	if v := strings.TrimSpace(filters.Search); v != "" {
		q.Set("search", v)
	}
	cars, err := listAll[domain.Car](ctx, r.client, "/cars", q)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return cars, nil
}
