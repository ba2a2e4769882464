package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/geo_forum/internal/models"
)

// Cascade lists the child rows removed together with a parent.
type Cascade struct {
	CityIDs  []uint
	PlaceIDs []uint
}

func first[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var item T
	if err := db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (r *GormRepo) ListCountries(ctx context.Context) ([]models.Country, error) {
	items := []models.Country{}
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCountry(ctx context.Context, id uint) (*models.Country, error) {
	return first[models.Country](ctx, r.DB, id)
}

func (r *GormRepo) CreateCountry(ctx context.Context, c *models.Country) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) UpdateCountry(ctx context.Context, c *models.Country) error {
	return r.DB.WithContext(ctx).
		Model(c).
		Select("name", "description", "updated_at").
		Updates(c).Error
}

func (r *GormRepo) DeleteCountry(ctx context.Context, id uint) (*Cascade, error) {
	out := &Cascade{}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.City{}).Where("country_id = ?", id).Pluck("id", &out.CityIDs).Error; err != nil {
			return err
		}
		placeIDs, err := deleteCities(tx, out.CityIDs)
		if err != nil {
			return err
		}
		out.PlaceIDs = placeIDs

		if err := deleteComments(tx, models.EntityCountry, []uint{id}); err != nil {
			return err
		}
		res := tx.Delete(&models.Country{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) ListCities(ctx context.Context, countryID uint) ([]models.City, error) {
	items := []models.City{}
	if err := r.DB.WithContext(ctx).Where("country_id = ?", countryID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCity(ctx context.Context, id uint) (*models.City, error) {
	return first[models.City](ctx, r.DB, id)
}

func (r *GormRepo) CreateCity(ctx context.Context, c *models.City) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) UpdateCity(ctx context.Context, c *models.City) error {
	return r.DB.WithContext(ctx).
		Model(c).
		Select("name", "description", "latitude", "longitude", "updated_at").
		Updates(c).Error
}

func (r *GormRepo) DeleteCity(ctx context.Context, id uint) (*Cascade, error) {
	out := &Cascade{CityIDs: []uint{id}}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.City{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		placeIDs, err := deleteCities(tx, out.CityIDs)
		out.PlaceIDs = placeIDs
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) ListPlaces(ctx context.Context, cityID uint) ([]models.Place, error) {
	items := []models.Place{}
	if err := r.DB.WithContext(ctx).Where("city_id = ?", cityID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetPlace(ctx context.Context, id uint) (*models.Place, error) {
	return first[models.Place](ctx, r.DB, id)
}

func (r *GormRepo) CreatePlace(ctx context.Context, p *models.Place) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) UpdatePlace(ctx context.Context, p *models.Place) error {
	return r.DB.WithContext(ctx).
		Model(p).
		Select("name", "description", "updated_at").
		Updates(p).Error
}

func (r *GormRepo) DeletePlace(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Place{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return deletePlaces(tx, []uint{id})
	})
}

func (r *GormRepo) ListComments(ctx context.Context, entityType string, entityID uint) ([]models.Comment, error) {
	items := []models.Comment{}
	q := r.DB.WithContext(ctx).Order("id ASC")
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	if entityID != 0 {
		q = q.Where("entity_id = ?", entityID)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return first[models.Comment](ctx, r.DB, id)
}

func (r *GormRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) UpdateComment(ctx context.Context, c *models.Comment) error {
	return r.DB.WithContext(ctx).
		Model(c).
		Select("content", "updated_at").
		Updates(c).Error
}

func (r *GormRepo) DeleteComment(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EntityExists reports whether a comment target is present.
func (r *GormRepo) EntityExists(ctx context.Context, entityType string, id uint) (bool, error) {
	var model any
	switch entityType {
	case models.EntityCountry:
		model = &models.Country{}
	case models.EntityCity:
		model = &models.City{}
	case models.EntityPlace:
		model = &models.Place{}
	default:
		return false, nil
	}

	var count int64
	if err := r.DB.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func deleteCities(tx *gorm.DB, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var placeIDs []uint
	if err := tx.Model(&models.Place{}).Where("city_id IN ?", ids).Pluck("id", &placeIDs).Error; err != nil {
		return nil, err
	}
	if err := deletePlaces(tx, placeIDs); err != nil {
		return nil, err
	}
	if err := deleteComments(tx, models.EntityCity, ids); err != nil {
		return nil, err
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.City{}).Error; err != nil {
		return nil, err
	}
	return placeIDs, nil
}

func deletePlaces(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := deleteComments(tx, models.EntityPlace, ids); err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Place{}).Error
}

func deleteComments(tx *gorm.DB, entityType string, ids []uint) error {
	return tx.Where("entity_type = ? AND entity_id IN ?", entityType, ids).Delete(&models.Comment{}).Error
}
