package rest

import "rentacar-calendar/internal/repository"

type Store struct {
	client *Client
	repository.BookingRepository
	repository.CarRepository
}

func NewStore(client *Client) *Store {
	return &Store{
		client:            client,
		BookingRepository: NewBookingRepository(client),
		CarRepository:     NewCarRepository(client),
	}
}
