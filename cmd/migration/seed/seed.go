package seed

import (
	"errors"
	"strings"

	"doacin/config"
	"doacin/internal/auth"
	"doacin/internal/logger"
	. "doacin/internal/models"

	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

// Centres are the Recife blood banks the map starts with. IDs are fixed so
// reseeding never duplicates them.
var Centres = []CollectionPoint{
	{
		BaseUUIDModel: BaseUUIDModel{ID: "2ee9eec8-9199-4875-ab60-72e3448eea2c"},
		Name:          "GSH",
		Email:         stringPtr("https://www.doesanguedoevida.com.br/banco-de-sangue-hemato"),
		Phone:         stringPtr("(81) 3972-4050"),
		Address:       "R. Dom Bôsco, 723 - Boa Vista, Recife - PE, 50070-070",
		Latitude:      floatPtr(-8.058549720722718),
		Longitude:     floatPtr(-34.88905908948004),
		MapsLink:      stringPtr("https://maps.app.goo.gl/X6yhVQ3HufZ2CWm17"),
		OpeningTime:   stringPtr("07:00"),
		ClosingTime:   stringPtr("18:00"),
		Type:          CollectionPointFixed,
	},
	{
		BaseUUIDModel: BaseUUIDModel{ID: "32ae187a-a165-4725-bda2-95a8c63438f4"},
		Name:          "Hemope",
		Email:         stringPtr("http://www.hemope.pe.gov.br/"),
		Phone:         stringPtr("(81) 3182-4600"),
		Address:       "R. Joaquim Nabuco, 171 - Graças, Recife - PE, 52011-000",
		Latitude:      floatPtr(-8.052652639117525),
		Longitude:     floatPtr(-34.89712402196806),
		MapsLink:      stringPtr("https://maps.app.goo.gl/NAfxcfqxZToYH8QA7"),
		OpeningTime:   stringPtr("07:15"),
		ClosingTime:   stringPtr("18:30"),
		Type:          CollectionPointFixed,
	},
	{
		BaseUUIDModel: BaseUUIDModel{ID: "56608a03-ef2c-4012-a7c2-8c52099f4443"},
		Name:          "IHENE",
		Email:         stringPtr("https://ihene.com.br/"),
		Phone:         stringPtr("(81) 2138-3500"),
		Address:       "R. Tabira, 54 - Boa Vista, Recife - PE, 50050-330",
		Latitude:      floatPtr(-8.048850945777147),
		Longitude:     floatPtr(-34.88651096902654),
		MapsLink:      stringPtr("https://maps.app.goo.gl/AnCQvBYXQLUC8GAh7"),
		OpeningTime:   stringPtr("08:00"),
		ClosingTime:   stringPtr("18:00"),
		Type:          CollectionPointFixed,
	},
}

const adminNationalID = "000.000.000-00"

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	for _, centre := range Centres {
		var existing CollectionPoint
		err := db.First(&existing, "id = ?", centre.ID).Error
		if err == nil {
			log.Debug("Collection point already exists", "name", centre.Name)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return log.Err("failed to look up collection point", err, "name", centre.Name)
		}

		log.Info("Seeding collection point", "name", centre.Name)
		if err := db.Create(&centre).Error; err != nil {
			return log.Err("failed to create collection point", err, "name", centre.Name)
		}
	}

	return seedAdmin(db, config, log)
}

func seedAdmin(db *gorm.DB, config config.Config, log logger.Logger) error {
	if config.SeedAdminPassword == "" {
		log.Warn("SEED_ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	var existing User
	err := db.First(&existing, "national_id = ?", adminNationalID).Error
	if err == nil {
		log.Info("Admin user already exists", "email", existing.Email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return log.Err("failed to look up admin user", err)
	}

	hash, err := auth.HashPassword(config.SeedAdminPassword)
	if err != nil {
		return log.Err("failed to hash admin password", err)
	}

	admin := User{
		Name:         "Admin",
		Email:        strings.ToLower(config.SeedAdminEmail),
		NationalID:   adminNationalID,
		PasswordHash: hash,
		IsAdmin:      true,
	}

	log.Info("Seeding admin user", "email", admin.Email)
	if err := db.Create(&admin).Error; err != nil {
		return log.Err("failed to create admin user", err)
	}

	return nil
}
