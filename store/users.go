package store

import (
	"context"

	"github.com/uptrace/bun/dialect"

	"github.com/padraicbc/regattaapi/models"
)

// GetUser loads a user by name.
func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	if err := s.db.NewSelect().Model(u).Where("username = ?", username).Scan(ctx); err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// SaveUser creates the user or replaces its password hash.
func (s *Store) SaveUser(ctx context.Context, username, passwordHash string) error {
	q := s.db.NewInsert().Model(&models.User{Username: username, Password: passwordHash})
	if s.db.Dialect().Name() == dialect.MySQL {
		q = q.On("DUPLICATE KEY UPDATE").Set("password = VALUES(password)")
	} else {
		q = q.On("CONFLICT (username) DO UPDATE").Set("password = EXCLUDED.password")
	}
	_, err := q.Exec(ctx)
	return err
}
