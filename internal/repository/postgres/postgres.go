package postgres

import (
	"database/sql"

	"rentacar-calendar/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.FilterRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:               db,
		FilterRepository: NewFilterRepository(db),
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
