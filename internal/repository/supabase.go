package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/hybrid-recommender/internal/domain"
	"github.com/supabase-community/supabase-go"
)

// Supabase tables keep the schema of the service's first deployment.
const (
	tablePreferences = "PREFERENCIA"
	tableMovies      = "PELICULA"
	tableUsers       = "USUARIO"
)

// SupabaseRepository reads the same data as Repository through the Supabase
// REST API. Snapshots are fetched in one request each.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseRepository{client: client}, nil
}

type preferenceRow struct {
	UserID int64   `json:"id_usuario"`
	ItemID int64   `json:"id_pelicula"`
	Rating float64 `json:"puntaje"`
}

type movieRow struct {
	ID    int64   `json:"id_pelicula"`
	Title string  `json:"titulo"`
	Genre *string `json:"genero"`
	// Older rows carry the description without the accent.
	Description      *string `json:"descripción"`
	DescriptionPlain *string `json:"descripcion"`
}

func (m movieRow) toItem() domain.Item {
	it := domain.Item{ID: m.ID, Title: m.Title}
	if m.Genre != nil {
		it.Genre = *m.Genre
	}
	switch {
	case m.Description != nil:
		it.Description = *m.Description
	case m.DescriptionPlain != nil:
		it.Description = *m.DescriptionPlain
	}
	return it
}

type userRow struct {
	ID         int64          `json:"id_usuario"`
	Username   string         `json:"username"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  *time.Time     `json:"created_at"`
}

func (u userRow) toUser() *domain.User {
	user := &domain.User{ID: u.ID, Username: u.Username, Attributes: u.Attributes}
	if u.CreatedAt != nil {
		user.CreatedAt = *u.CreatedAt
	}
	return user
}

func (s *SupabaseRepository) FetchInteractions(ctx context.Context) ([]domain.Interaction, error) {
	var rows []preferenceRow
	if _, err := s.client.From(tablePreferences).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tablePreferences, err)
	}

	interactions := make([]domain.Interaction, 0, len(rows))
	for _, r := range rows {
		interactions = append(interactions, domain.Interaction{UserID: r.UserID, ItemID: r.ItemID, Rating: r.Rating})
	}
	return interactions, nil
}

func (s *SupabaseRepository) FetchItems(ctx context.Context) ([]domain.Item, error) {
	var rows []movieRow
	if _, err := s.client.From(tableMovies).Select("*", "", false).ExecuteTo(&rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", tableMovies, err)
	}

	items := make([]domain.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
	}
	return items, nil
}

func (s *SupabaseRepository) GetUserByID(ctx context.Context, userID int64) (*domain.User, error) {
	var rows []userRow
	_, err := s.client.From(tableUsers).
		Select("*", "", false).
		Eq("id_usuario", strconv.FormatInt(userID, 10)).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("query user id=%d: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return rows[0].toUser(), nil
}

func (s *SupabaseRepository) CreateUser(ctx context.Context, username string, attributes map[string]any) (*domain.User, error) {
	payload := map[string]any{"username": username}
	if attributes != nil {
		payload["attributes"] = attributes
	}

	var rows []userRow
	_, err := s.client.From(tableUsers).
		Insert(payload, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		if strings.Contains(err.Error(), uniqueViolation) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user %q: %w", username, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert user %q: no row returned", username)
	}
	return rows[0].toUser(), nil
}
