package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"rentacar-calendar/internal/domain"
	"rentacar-calendar/internal/repository"
)

type bookingRepository struct {
	client *Client
}

func NewBookingRepository(client *Client) repository.BookingRepository {
	return &bookingRepository{client: client}
}

// WindowQuery builds the filters for GET /bookings. The caller adds page.
func WindowQuery(window domain.VisibleWindow) (url.Values, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if window.IsMonth() {
		q.Set("filters[month]", window.Month)
	} else {
		q.Set("filters[week]", strconv.Itoa(window.ISOWeek))
		q.Set("filters[year]", strconv.Itoa(window.ISOYear))
	}
	q.Add("include[]", "car")
	return q, nil
}

func (r *bookingRepository) ListByWindow(ctx context.Context, window domain.VisibleWindow) ([]domain.Booking, error) {
	q, err := WindowQuery(window)
	if err != nil {
		return nil, err
	}
	bookings, err := listAll[domain.Booking](ctx, r.client, "/bookings", q)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", window, err)
	}
	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.Booking, error) {
	raw, err := r.client.do(ctx, http.MethodPost, "/bookings", nil, req)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	var b domain.Booking
	if err := decodeData(raw, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Update(ctx context.Context, id domain.ID, patch domain.BookingPatch) (*domain.Booking, error) {
	if id == "" {
		return nil, domain.ErrMissingBookingID
	}
	path := "/bookings/" + url.PathEscape(string(id))
	raw, err := r.client.do(ctx, http.MethodPut, path, nil, patch)
	if err != nil {
		return nil, fmt.Errorf("update booking %s: %w", id, err)
	}
	var b domain.Booking
	if err := decodeData(raw, &b); err != nil {
		return nil, err
	}
	if b.ID == "" {
		b.ID = id
	}
	return &b, nil
}

func (r *bookingRepository) CreatePayment(ctx context.Context, id domain.ID, req *domain.PaymentRequest) (*domain.Payment, error) {
	if id == "" {
		return nil, domain.ErrMissingBookingID
	}
	path := "/bookings/" + url.PathEscape(string(id)) + "/payments"
	raw, err := r.client.do(ctx, http.MethodPost, path, nil, req)
	if err != nil {
		return nil, fmt.Errorf("record payment for booking %s: %w", id, err)
	}
	var p domain.Payment
	if err := decodeData(raw, &p); err != nil {
		return nil, err
	}
	if p.BookingID == "" {
		p.BookingID = id
	}
	return &p, nil
}
