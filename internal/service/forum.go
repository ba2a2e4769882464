package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Skotchmaster/geo_forum/internal/events"
	"github.com/Skotchmaster/geo_forum/internal/models"
	"github.com/Skotchmaster/geo_forum/internal/policy"
	"github.com/Skotchmaster/geo_forum/internal/repo"
	"github.com/Skotchmaster/geo_forum/internal/search"
	"github.com/Skotchmaster/geo_forum/internal/transport"
	"github.com/Skotchmaster/geo_forum/pkg/logging"
)

// ForumService owns countries, cities, places and comments. Every write
// resolves the target first, then checks the policy, then validates input.
type ForumService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  search.Index
}

func mapRepoErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func validate(v interface{ Validate() error }) error {
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (s *ForumService) emit(ctx context.Context, kind, action string, id uint, name, userID string) {
	events.Emit(ctx, s.Events, events.TopicForumEvents, strconv.FormatUint(uint64(id), 10), events.Event{
		Type:     kind + "_" + action,
		EntityID: id,
		Name:     name,
		UserID:   userID,
	})
}

func (s *ForumService) index(ctx context.Context, doc search.Document) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, doc); err != nil {
		logging.FromContext(ctx).Error("search_index_error", "doc", doc.ID(), "error", err)
	}
}

func (s *ForumService) unindex(ctx context.Context, kind string, ids ...uint) {
	if s.Index == nil {
		return
	}
	for _, id := range ids {
		if err := s.Index.Delete(ctx, kind, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_error", "doc", search.DocID(kind, id), "error", err)
		}
	}
}

// Countries

func (s *ForumService) ListCountries(ctx context.Context) ([]models.Country, error) {
	return s.Repo.ListCountries(ctx)
}

func (s *ForumService) GetCountry(ctx context.Context, id uint) (*models.Country, error) {
	c, err := s.Repo.GetCountry(ctx, id)
	return c, mapRepoErr(err)
}

func (s *ForumService) CreateCountry(ctx context.Context, who *policy.Identity, req transport.CountryRequest) (*models.Country, error) {
	if err := policy.Check(policy.CountryCreate, who, ""); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	c := &models.Country{Name: req.Name, Description: req.Description, UserID: who.Subject}
	if err := s.Repo.CreateCountry(ctx, c); err != nil {
		return nil, err
	}

	s.index(ctx, search.Document{Kind: models.EntityCountry, EntityID: c.ID, Name: c.Name, Description: c.Description})
	s.emit(ctx, models.EntityCountry, "created", c.ID, c.Name, who.Subject)
	return c, nil
}

func (s *ForumService) UpdateCountry(ctx context.Context, who *policy.Identity, id uint, req transport.CountryRequest) (*models.Country, error) {
	c, err := s.GetCountry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.CountryUpdate, who, c.UserID); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	c.Name, c.Description = req.Name, req.Description
	if err := s.Repo.UpdateCountry(ctx, c); err != nil {
		return nil, err
	}

	s.index(ctx, search.Document{Kind: models.EntityCountry, EntityID: c.ID, Name: c.Name, Description: c.Description})
	s.emit(ctx, models.EntityCountry, "updated", c.ID, c.Name, who.Subject)
	return c, nil
}

func (s *ForumService) DeleteCountry(ctx context.Context, who *policy.Identity, id uint) error {
	c, err := s.GetCountry(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(policy.CountryDelete, who, c.UserID); err != nil {
		return err
	}

	cascade, err := s.Repo.DeleteCountry(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}

	s.unindex(ctx, models.EntityCountry, id)
	s.unindex(ctx, models.EntityCity, cascade.CityIDs...)
	s.unindex(ctx, models.EntityPlace, cascade.PlaceIDs...)
	s.emit(ctx, models.EntityCountry, "deleted", id, c.Name, who.Subject)
	return nil
}

// Cities

func (s *ForumService) ListCities(ctx context.Context, countryID uint) ([]models.City, error) {
	if _, err := s.GetCountry(ctx, countryID); err != nil {
		return nil, err
	}
	return s.Repo.ListCities(ctx, countryID)
}

// GetCity returns ErrNotFound unless the city belongs to countryID.
func (s *ForumService) GetCity(ctx context.Context, countryID, cityID uint) (*models.City, error) {
	c, err := s.Repo.GetCity(ctx, cityID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if c.CountryID != countryID {
		return nil, ErrNotFound
	}
	return c, nil
}

func cityDoc(c *models.City) search.Document {
	return search.Document{
		Kind:        models.EntityCity,
		EntityID:    c.ID,
		Name:        c.Name,
		Description: c.Description,
		CountryID:   c.CountryID,
	}
}

func (s *ForumService) CreateCity(ctx context.Context, who *policy.Identity, countryID uint, req transport.CityRequest) (*models.City, error) {
	if _, err := s.GetCountry(ctx, countryID); err != nil {
		return nil, err
	}
	if err := policy.Check(policy.CityCreate, who, ""); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	c := &models.City{
		Name:        req.Name,
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		CountryID:   countryID,
		UserID:      who.Subject,
	}
	if err := s.Repo.CreateCity(ctx, c); err != nil {
		return nil, err
	}

	s.index(ctx, cityDoc(c))
	s.emit(ctx, models.EntityCity, "created", c.ID, c.Name, who.Subject)
	return c, nil
}

func (s *ForumService) UpdateCity(ctx context.Context, who *policy.Identity, countryID, cityID uint, req transport.CityRequest) (*models.City, error) {
	c, err := s.GetCity(ctx, countryID, cityID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.CityUpdate, who, c.UserID); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	c.Name, c.Description = req.Name, req.Description
	c.Latitude, c.Longitude = *req.Latitude, *req.Longitude
	if err := s.Repo.UpdateCity(ctx, c); err != nil {
		return nil, err
	}

	s.index(ctx, cityDoc(c))
	s.emit(ctx, models.EntityCity, "updated", c.ID, c.Name, who.Subject)
	return c, nil
}

func (s *ForumService) DeleteCity(ctx context.Context, who *policy.Identity, countryID, cityID uint) error {
	c, err := s.GetCity(ctx, countryID, cityID)
	if err != nil {
		return err
	}
	if err := policy.Check(policy.CityDelete, who, c.UserID); err != nil {
		return err
	}

	cascade, err := s.Repo.DeleteCity(ctx, cityID)
	if err != nil {
		return mapRepoErr(err)
	}

	s.unindex(ctx, models.EntityCity, cityID)
	s.unindex(ctx, models.EntityPlace, cascade.PlaceIDs...)
	s.emit(ctx, models.EntityCity, "deleted", cityID, c.Name, who.Subject)
	return nil
}

// Places

func (s *ForumService) ListPlaces(ctx context.Context, countryID, cityID uint) ([]models.Place, error) {
	if _, err := s.GetCity(ctx, countryID, cityID); err != nil {
		return nil, err
	}
	return s.Repo.ListPlaces(ctx, cityID)
}

func (s *ForumService) GetPlace(ctx context.Context, countryID, cityID, placeID uint) (*models.Place, error) {
	if _, err := s.GetCity(ctx, countryID, cityID); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetPlace(ctx, placeID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if p.CityID != cityID {
		return nil, ErrNotFound
	}
	return p, nil
}

func placeDoc(p *models.Place, countryID uint) search.Document {
	return search.Document{
		Kind:        models.EntityPlace,
		EntityID:    p.ID,
		Name:        p.Name,
		Description: p.Description,
		CountryID:   countryID,
		CityID:      p.CityID,
	}
}

func (s *ForumService) CreatePlace(ctx context.Context, who *policy.Identity, countryID, cityID uint, req transport.PlaceRequest) (*models.Place, error) {
	if _, err := s.GetCity(ctx, countryID, cityID); err != nil {
		return nil, err
	}
	if err := policy.Check(policy.PlaceCreate, who, ""); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	p := &models.Place{Name: req.Name, Description: req.Description, CityID: cityID, UserID: who.Subject}
	if err := s.Repo.CreatePlace(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, placeDoc(p, countryID))
	s.emit(ctx, models.EntityPlace, "created", p.ID, p.Name, who.Subject)
	return p, nil
}

func (s *ForumService) UpdatePlace(ctx context.Context, who *policy.Identity, countryID, cityID, placeID uint, req transport.PlaceRequest) (*models.Place, error) {
	p, err := s.GetPlace(ctx, countryID, cityID, placeID)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.PlaceUpdate, who, p.UserID); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	p.Name, p.Description = req.Name, req.Description
	if err := s.Repo.UpdatePlace(ctx, p); err != nil {
		return nil, err
	}

	s.index(ctx, placeDoc(p, countryID))
	s.emit(ctx, models.EntityPlace, "updated", p.ID, p.Name, who.Subject)
	return p, nil
}

func (s *ForumService) DeletePlace(ctx context.Context, who *policy.Identity, countryID, cityID, placeID uint) error {
	p, err := s.GetPlace(ctx, countryID, cityID, placeID)
	if err != nil {
		return err
	}
	if err := policy.Check(policy.PlaceDelete, who, p.UserID); err != nil {
		return err
	}
	if err := s.Repo.DeletePlace(ctx, placeID); err != nil {
		return mapRepoErr(err)
	}

	s.unindex(ctx, models.EntityPlace, placeID)
	s.emit(ctx, models.EntityPlace, "deleted", placeID, p.Name, who.Subject)
	return nil
}

// Comments

func (s *ForumService) ListComments(ctx context.Context, entityType string, entityID uint) ([]models.Comment, error) {
	return s.Repo.ListComments(ctx, entityType, entityID)
}

func (s *ForumService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	c, err := s.Repo.GetComment(ctx, id)
	return c, mapRepoErr(err)
}

func (s *ForumService) CreateComment(ctx context.Context, who *policy.Identity, req transport.CommentRequest) (*models.Comment, error) {
	if err := policy.Check(policy.CommentCreate, who, ""); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	ok, err := s.Repo.EntityExists(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	c := &models.Comment{
		Content:    req.Content,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		UserID:     who.Subject,
	}
	if err := s.Repo.CreateComment(ctx, c); err != nil {
		return nil, err
	}

	s.emit(ctx, "comment", "created", c.ID, "", who.Subject)
	return c, nil
}

func (s *ForumService) UpdateComment(ctx context.Context, who *policy.Identity, id uint, req transport.CommentUpdateRequest) (*models.Comment, error) {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Check(policy.CommentUpdate, who, c.UserID); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	c.Content = req.Content
	if err := s.Repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}

	s.emit(ctx, "comment", "updated", c.ID, "", who.Subject)
	return c, nil
}

func (s *ForumService) DeleteComment(ctx context.Context, who *policy.Identity, id uint) error {
	c, err := s.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Check(policy.CommentDelete, who, c.UserID); err != nil {
		return err
	}
	if err := s.Repo.DeleteComment(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	s.emit(ctx, "comment", "deleted", id, "", who.Subject)
	return nil
}

// Search

func (s *ForumService) Search(ctx context.Context, query string, offset, limit int) (*search.Results, error) {
	if s.Index == nil {
		return nil, search.ErrDisabled
	}
	return s.Index.Search(ctx, query, offset, limit)
}
