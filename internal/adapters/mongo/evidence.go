package mongo

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/adhilsalahh/package-booking/internal/domain"
	"github.com/adhilsalahh/package-booking/internal/evidence"
	"github.com/adhilsalahh/package-booking/internal/observability"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EvidenceBucket is the GridFS bucket holding payment screenshots.
const EvidenceBucket = "payments"

type EvidenceStore struct {
	db      *mongo.Database
	baseURL string
	logger  observability.Logger
	now     func() time.Time
}

// NewEvidenceStore serves object URLs under baseURL + "/v1/evidence/".
func NewEvidenceStore(db *mongo.Database, baseURL string, logger observability.Logger) (*EvidenceStore, error) {
	if _, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(EvidenceBucket)); err != nil {
		return nil, err
	}
	return &EvidenceStore{
		db:      db,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// bucket returns a handle scoped to one call. Deadlines are set on the
// handle, so each call gets its own.
func (s *EvidenceStore) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(EvidenceBucket))
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(dl); err != nil {
			return nil, err
		}
		if err := b.SetWriteDeadline(dl); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (s *EvidenceStore) URL(path string) string {
	return s.baseURL + "/v1/evidence/" + path
}

func (s *EvidenceStore) Store(ctx context.Context, bookingID uuid.UUID, data []byte, ext string) (evidence.Object, error) {
	path := evidence.ObjectPath(bookingID, s.now(), ext)
	bucket, err := s.bucket(ctx)
	if err != nil {
		return evidence.Object{}, err
	}
	meta := bson.D{
		{Key: "booking_id", Value: bookingID.String()},
		{Key: "content_type", Value: "image/" + ext},
	}
	_, err = bucket.UploadFromStream(path, bytes.NewReader(data), options.GridFSUpload().SetMetadata(meta))
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Error("failed to upload screenshot")
		return evidence.Object{}, err
	}
	return evidence.Object{Path: path, URL: s.URL(path)}, nil
}

// Delete removes every revision stored under path.
func (s *EvidenceStore) Delete(ctx context.Context, path string) error {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return err
	}
	cur, err := bucket.FindContext(ctx, bson.M{"filename": path})
	if err != nil {
		return err
	}
	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &files); err != nil {
		return err
	}
	for _, f := range files {
		if err := bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return nil
}

func (s *EvidenceStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, err := s.bucket(ctx)
	if err != nil {
		return nil, err
	}
	stream, err := bucket.OpenDownloadStreamByName(path)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, domain.NotFound("evidence", path)
	}
	if err != nil {
		return nil, err
	}
	return stream, nil
}
