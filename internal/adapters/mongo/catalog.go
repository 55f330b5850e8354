package mongo

import (
	"context"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CatalogRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		coll:   db.Collection("packages"),
		logger: logger,
	}
}

type PackageDoc struct {
	ID             string    `bson:"_id"`
	Title          string    `bson:"title"`
	Description    string    `bson:"description"`
	Images         []string  `bson:"images"`
	PricePerHead   float64   `bson:"price_per_head"`
	Duration       string    `bson:"duration"`
	Itinerary      []DayDoc  `bson:"itinerary"`
	Inclusions     []string  `bson:"inclusions"`
	Exclusions     []string  `bson:"exclusions"`
	AvailableDates []DateDoc `bson:"available_dates"`
	IsActive       bool      `bson:"is_active"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`
}

type DayDoc struct {
	Day         int    `bson:"day"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
}

type DateDoc struct {
	Date           string `bson:"date"`
	SlotsAvailable int    `bson:"slots_available"`
}

func toPackageDoc(p domain.Package) PackageDoc {
	doc := PackageDoc{
		ID:           p.ID.String(),
		Title:        p.Title,
		Description:  p.Description,
		Images:       p.Images,
		PricePerHead: p.PricePerHead,
		Duration:     p.Duration,
		Inclusions:   p.Inclusions,
		Exclusions:   p.Exclusions,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	for _, d := range p.Itinerary {
		doc.Itinerary = append(doc.Itinerary, DayDoc{Day: d.Day, Title: d.Title, Description: d.Description})
	}
	for _, d := range p.AvailableDates {
		doc.AvailableDates = append(doc.AvailableDates, DateDoc{Date: d.Date, SlotsAvailable: d.SlotsAvailable})
	}
	return doc
}

func (d PackageDoc) toDomain() (domain.Package, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.Package{}, errors.Wrapf(err, "package id %q", d.ID)
	}
	p := domain.Package{
		ID:             id,
		Title:          d.Title,
		Description:    d.Description,
		Images:         nonNil(d.Images),
		PricePerHead:   d.PricePerHead,
		Duration:       d.Duration,
		Itinerary:      []domain.ItineraryDay{},
		Inclusions:     nonNil(d.Inclusions),
		Exclusions:     nonNil(d.Exclusions),
		AvailableDates: []domain.AvailableDate{},
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	for _, day := range d.Itinerary {
		p.Itinerary = append(p.Itinerary, domain.ItineraryDay{Day: day.Day, Title: day.Title, Description: day.Description})
	}
	for _, date := range d.AvailableDates {
		p.AvailableDates = append(p.AvailableDates, domain.AvailableDate{Date: date.Date, SlotsAvailable: date.SlotsAvailable})
	}
	return p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (c *CatalogRepository) ListActivePackages(ctx context.Context) ([]domain.Package, error) {
	return c.find(ctx, bson.M{"is_active": true})
}

func (c *CatalogRepository) ListPackages(ctx context.Context) ([]domain.Package, error) {
	return c.find(ctx, bson.M{})
}

func (c *CatalogRepository) find(ctx context.Context, filter bson.M) ([]domain.Package, error) {
	cur, err := c.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		c.logger.WithError(err).Error("failed to list packages")
		return nil, err
	}
	var docs []PackageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Package, 0, len(docs))
	for _, d := range docs {
		p, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *CatalogRepository) GetPackage(ctx context.Context, id uuid.UUID) (*domain.Package, error) {
	var doc PackageDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.NotFound("package", id.String())
	}
	if err != nil {
		c.logger.WithError(err).WithField("package_id", id).Error("failed to get package")
		return nil, err
	}
	p, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePackage inserts or fully replaces a package.
func (c *CatalogRepository) SavePackage(ctx context.Context, p domain.Package) error {
	doc := toPackageDoc(p)
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		c.logger.WithError(err).WithField("package_id", p.ID).Error("failed to save package")
		return err
	}
	return nil
}

func (c *CatalogRepository) DeletePackage(ctx context.Context, id uuid.UUID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		c.logger.WithError(err).WithField("package_id", id).Error("failed to delete package")
		return err
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("package", id.String())
	}
	return nil
}

func (c *CatalogRepository) CountPackages(ctx context.Context) (int, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
