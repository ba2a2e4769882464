package transport

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gosimple/slug"

	"github.com/Skotchmaster/geo_forum/internal/models"
)

var (
	nameRules        = []validation.Rule{validation.Required, validation.RuneLength(2, 60)}
	descriptionRules = []validation.Rule{validation.Required, validation.RuneLength(10, 350)}
	contentRules     = []validation.Rule{validation.Required, validation.RuneLength(1, 350)}
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(2, 60)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type RegisterResponse struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type CountryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r CountryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules...),
		validation.Field(&r.Description, descriptionRules...),
	)
}

type CityRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

func (r CityRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules...),
		validation.Field(&r.Description, descriptionRules...),
		validation.Field(&r.Latitude, validation.NotNil, validation.Min(-90.0), validation.Max(90.0)),
		validation.Field(&r.Longitude, validation.NotNil, validation.Min(-180.0), validation.Max(180.0)),
	)
}

type PlaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r PlaceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, nameRules...),
		validation.Field(&r.Description, descriptionRules...),
	)
}

type CommentRequest struct {
	Content    string `json:"content"`
	EntityType string `json:"entityType"`
	EntityID   uint   `json:"entityId"`
}

func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, contentRules...),
		validation.Field(&r.EntityType, validation.Required,
			validation.In(models.EntityCountry, models.EntityCity, models.EntityPlace)),
		validation.Field(&r.EntityID, validation.Required),
	)
}

type CommentUpdateRequest struct {
	Content string `json:"content"`
}

func (r CommentUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, contentRules...),
	)
}

type CountryResponse struct {
	models.Country
	Slug string `json:"slug"`
}

type CityResponse struct {
	models.City
	Slug string `json:"slug"`
}

type PlaceResponse struct {
	models.Place
	Slug string `json:"slug"`
}

func NewCountryResponse(c models.Country) CountryResponse {
	return CountryResponse{Country: c, Slug: slug.Make(c.Name)}
}

func NewCityResponse(c models.City) CityResponse {
	return CityResponse{City: c, Slug: slug.Make(c.Name)}
}

func NewPlaceResponse(p models.Place) PlaceResponse {
	return PlaceResponse{Place: p, Slug: slug.Make(p.Name)}
}

func NewCountryList(items []models.Country) []CountryResponse {
	out := make([]CountryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCountryResponse(c))
	}
	return out
}

func NewCityList(items []models.City) []CityResponse {
	out := make([]CityResponse, 0, len(items))
	for _, c := range items {
		out = append(out, NewCityResponse(c))
	}
	return out
}

func NewPlaceList(items []models.Place) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewPlaceResponse(p))
	}
	return out
}
