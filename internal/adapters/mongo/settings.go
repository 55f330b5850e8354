package mongo

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// settingsID keys the single settings document.
const settingsID = "site"

type SettingsRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewSettingsRepository(db *mongo.Database, logger observability.Logger) *SettingsRepository {
	return &SettingsRepository{
		coll:   db.Collection("settings"),
		logger: logger,
	}
}

type SettingsDoc struct {
	ID                   string    `bson:"_id"`
	UPINumber            string    `bson:"upi_number"`
	UPIQRCode            string    `bson:"upi_qr_code"`
	AdvanceAmountPerHead float64   `bson:"advance_amount_per_head"`
	ContactEmail         string    `bson:"contact_email"`
	ContactPhone         string    `bson:"contact_phone"`
	WhatsAppPhoneNumber  string    `bson:"whatsapp_phone_number"`
	WhatsAppAPIKey       string    `bson:"whatsapp_api_key"`
	UpdatedAt            time.Time `bson:"updated_at"`
}

// GetSettings returns nil, nil when nothing was saved yet.
func (s *SettingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var doc SettingsDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": settingsID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to get settings")
		return nil, err
	}
	return &domain.Settings{
		UPINumber:            doc.UPINumber,
		UPIQRCode:            doc.UPIQRCode,
		AdvanceAmountPerHead: doc.AdvanceAmountPerHead,
		ContactEmail:         doc.ContactEmail,
		ContactPhone:         doc.ContactPhone,
		WhatsAppPhoneNumber:  doc.WhatsAppPhoneNumber,
		WhatsAppAPIKey:       doc.WhatsAppAPIKey,
		UpdatedAt:            doc.UpdatedAt.UTC(),
	}, nil
}

func (s *SettingsRepository) SaveSettings(ctx context.Context, in domain.Settings) error {
	doc := SettingsDoc{
		ID:                   settingsID,
		UPINumber:            in.UPINumber,
		UPIQRCode:            in.UPIQRCode,
		AdvanceAmountPerHead: in.AdvanceAmountPerHead,
		ContactEmail:         in.ContactEmail,
		ContactPhone:         in.ContactPhone,
		WhatsAppPhoneNumber:  in.WhatsAppPhoneNumber,
		WhatsAppAPIKey:       in.WhatsAppAPIKey,
		UpdatedAt:            in.UpdatedAt,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": settingsID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		s.logger.WithError(err).Error("failed to save settings")
		return err
	}
	return nil
}
