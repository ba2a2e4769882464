package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/geo_forum/internal/models"
)

func seedTree(t *testing.T, r *GormRepo) (*models.Country, *models.City, *models.Place) {
	t.Helper()
	ctx := context.Background()

	country := &models.Country{Name: "Norway", Description: "Fjords and mountains", UserID: "owner"}
	require.NoError(t, r.CreateCountry(ctx, country))

	city := &models.City{Name: "Bergen", Description: "Rainy harbour town", Latitude: 60.39, Longitude: 5.32, CountryID: country.ID, UserID: "owner"}
	require.NoError(t, r.CreateCity(ctx, city))

	place := &models.Place{Name: "Bryggen", Description: "Hanseatic wharf houses", CityID: city.ID, UserID: "owner"}
	require.NoError(t, r.CreatePlace(ctx, place))

	for _, c := range []*models.Comment{
		{Content: "nice", EntityType: models.EntityCountry, EntityID: country.ID, UserID: "u"},
		{Content: "wet", EntityType: models.EntityCity, EntityID: city.ID, UserID: "u"},
		{Content: "old", EntityType: models.EntityPlace, EntityID: place.ID, UserID: "u"},
	} {
		require.NoError(t, r.CreateComment(ctx, c))
	}
	return country, city, place
}

func TestCountryCRUD(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	country, _, _ := seedTree(t, r)

	got, err := r.GetCountry(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, "Norway", got.Name)

	got.Name = "Kingdom of Norway"
	got.UserID = "someone-else"
	require.NoError(t, r.UpdateCountry(ctx, got))

	again, err := r.GetCountry(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kingdom of Norway", again.Name)
	assert.Equal(t, "owner", again.UserID)

	list, err := r.ListCountries(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = r.GetCountry(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCountry_Cascades(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	country, city, place := seedTree(t, r)

	cascade, err := r.DeleteCountry(ctx, country.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{city.ID}, cascade.CityIDs)
	assert.Equal(t, []uint{place.ID}, cascade.PlaceIDs)

	for _, model := range []any{&models.Country{}, &models.City{}, &models.Place{}, &models.Comment{}} {
		var count int64
		require.NoError(t, r.DB.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	_, err = r.DeleteCountry(ctx, country.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCity_KeepsCountry(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	country, city, place := seedTree(t, r)

	cascade, err := r.DeleteCity(ctx, city.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{place.ID}, cascade.PlaceIDs)

	_, err = r.GetCountry(ctx, country.ID)
	require.NoError(t, err)

	comments, err := r.ListComments(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, models.EntityCountry, comments[0].EntityType)

	_, err = r.DeleteCity(ctx, city.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletePlace(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	_, city, place := seedTree(t, r)

	require.NoError(t, r.DeletePlace(ctx, place.ID))
	places, err := r.ListPlaces(ctx, city.ID)
	require.NoError(t, err)
	assert.Empty(t, places)

	comments, err := r.ListComments(ctx, models.EntityPlace, place.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, r.DeletePlace(ctx, place.ID), ErrNotFound)
}

func TestComments(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	_, city, _ := seedTree(t, r)

	list, err := r.ListComments(ctx, models.EntityCity, city.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	c := list[0]
	c.Content = "sunny for once"
	require.NoError(t, r.UpdateComment(ctx, &c))

	got, err := r.GetComment(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "sunny for once", got.Content)

	require.NoError(t, r.DeleteComment(ctx, c.ID))
	assert.ErrorIs(t, r.DeleteComment(ctx, c.ID), ErrNotFound)
}

func TestEntityExists(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	country, city, place := seedTree(t, r)

	tests := []struct {
		kind string
		id   uint
		want bool
	}{
		{kind: models.EntityCountry, id: country.ID, want: true},
		{kind: models.EntityCity, id: city.ID, want: true},
		{kind: models.EntityPlace, id: place.ID, want: true},
		{kind: models.EntityPlace, id: 999, want: false},
		{kind: "planet", id: 1, want: false},
	}
	for _, tt := range tests {
		ok, err := r.EntityExists(ctx, tt.kind, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "%s/%d", tt.kind, tt.id)
	}
}
