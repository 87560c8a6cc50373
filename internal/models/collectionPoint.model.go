package models

import (
	"time"

	"gorm.io/gorm"
)

type CollectionPointType string

const (
	CollectionPointFixed  CollectionPointType = "fixed"
	CollectionPointMobile CollectionPointType = "mobile"
)

func (t CollectionPointType) Valid() bool {
	return t == CollectionPointFixed || t == CollectionPointMobile
}

const UnknownAddress = "Endereço não informado"

type CollectionPoint struct {
	BaseUUIDModel
	Name           string              `gorm:"type:varchar(255);not null" json:"name"`
	Address        string              `gorm:"type:varchar(500);not null" json:"address"`
	Email          *string             `gorm:"type:varchar(255)"          json:"email,omitempty"`
	Phone          *string             `gorm:"type:varchar(32)"           json:"phone,omitempty"`
	MapsLink       *string             `gorm:"type:varchar(500)"          json:"mapsLink,omitempty"`
	OpeningTime    *string             `gorm:"type:varchar(8)"            json:"openingTime,omitempty"`
	ClosingTime    *string             `gorm:"type:varchar(8)"            json:"closingTime,omitempty"`
	Type           CollectionPointType `gorm:"type:varchar(16);not null"  json:"type"`
	Latitude       *float64            `                                  json:"latitude"`
	Longitude      *float64            `                                  json:"longitude"`
	EventStartDate *time.Time          `                                  json:"eventStartDate"`
	EventEndDate   *time.Time          `                                  json:"eventEndDate"`
}

func (p *CollectionPoint) BeforeSave(tx *gorm.DB) error {
	if p.Type == "" {
		p.Type = CollectionPointFixed
	}
	p.EventStartDate = utcPtr(p.EventStartDate)
	p.EventEndDate = utcPtr(p.EventEndDate)
	return p.BaseUUIDModel.BeforeSave(tx)
}

// Hours renders "open - close", or whichever half is known.
func (p CollectionPoint) Hours() string {
	switch {
	case p.OpeningTime != nil && *p.OpeningTime != "" && p.ClosingTime != nil && *p.ClosingTime != "":
		return *p.OpeningTime + " - " + *p.ClosingTime
	case p.OpeningTime != nil && *p.OpeningTime != "":
		return *p.OpeningTime
	case p.ClosingTime != nil && *p.ClosingTime != "":
		return *p.ClosingTime
	default:
		return ""
	}
}

func (p CollectionPoint) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type CreateCollectionPointRequest struct {
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	Hours          string     `json:"hours"`
	Contact        string     `json:"contact"`
	Email          string     `json:"email"`
	MapsLink       string     `json:"mapsLink"`
	Latitude       *FlexFloat `json:"latitude"`
	Longitude      *FlexFloat `json:"longitude"`
	Type           string     `json:"type"`
	EventStartDate string     `json:"eventStartDate"`
	EventEndDate   string     `json:"eventEndDate"`
}

// CampaignLocal is the map-facing view of a collection point.
type CampaignLocal struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Address        string              `json:"address"`
	Hours          string              `json:"hours"`
	Contact        *string             `json:"contact"`
	Type           CollectionPointType `json:"type"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	EventStartDate *time.Time          `json:"eventStartDate"`
	EventEndDate   *time.Time          `json:"eventEndDate"`
}

func NewCampaignLocal(p CollectionPoint) CampaignLocal {
	pointType := p.Type
	if pointType == "" {
		pointType = CollectionPointFixed
	}

	var contact *string
	if p.Phone != nil && *p.Phone != "" {
		contact = p.Phone
	}

	return CampaignLocal{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		Hours:          p.Hours(),
		Contact:        contact,
		Type:           pointType,
		Latitude:       p.Latitude,
		Longitude:      p.Longitude,
		EventStartDate: p.EventStartDate,
		EventEndDate:   p.EventEndDate,
	}
}
