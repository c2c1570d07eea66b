package stock

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstock/backend/internal/domain/shared"
	"github.com/labstock/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// MaxMSDSSize is the largest safety data sheet accepted.
const MaxMSDSSize = 10 << 20

// MSDSLinkExpiry is how long a download link stays valid.
const MSDSLinkExpiry = 15 * time.Minute

// DocumentStorage stores uploaded documents in an object store.
type DocumentStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

var allowedMSDSTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
}

// UploadMSDS stores the safety data sheet of a hazard-bearing item and links it to the item.
func (s *StockService) UploadMSDS(ctx context.Context, itemID uuid.UUID, filename, contentType string, data []byte) (*MSDSResponse, error) {
	if !s.desc.RequiresHazardData {
		return nil, shared.NewDomainError("INVALID_OPERATION", s.desc.Label+" do not carry safety data sheets")
	}
	if s.documents == nil {
		return nil, shared.NewDomainError(shared.CodeStorageUnavailable, "Document storage is not configured")
	}
	if len(data) == 0 || len(data) > MaxMSDSSize {
		return nil, shared.NewDomainError("INVALID_FILE", fmt.Sprintf("MSDS file must be between 1 byte and %d MB", MaxMSDSSize>>20))
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !allowedMSDSTypes[contentType] {
		return nil, shared.NewDomainError("INVALID_FILE", "MSDS must be a PDF or an image")
	}

	key := path.Join("msds", string(s.desc.Category), itemID.String(), sanitizeFilename(filename))
	var previous string
	result, err := s.mutate(ctx, "attach_msds", itemID, func(ctx context.Context, _ TransactionalRepositories, item *stock.StockItem) error {
		if err := s.documents.Upload(ctx, key, data, contentType); err != nil {
			return fmt.Errorf("failed to store MSDS: %w", err)
		}
		previous = item.MSDS
		item.AttachMSDS(key)
		return nil
	})
	if err != nil {
		return nil, s.itemNotFound(err)
	}

	if previous != "" && previous != key {
		if err := s.documents.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("failed to delete replaced MSDS", zap.String("key", previous), zap.Error(err))
		}
	}
	return &MSDSResponse{ItemID: result.item.ID, Key: key}, nil
}

// MSDSLink returns a short-lived download link for the item's safety data sheet.
func (s *StockService) MSDSLink(ctx context.Context, itemID uuid.UUID) (*MSDSResponse, error) {
	if s.documents == nil {
		return nil, shared.NewDomainError(shared.CodeStorageUnavailable, "Document storage is not configured")
	}
	item, err := s.repos.Items.FindByID(ctx, s.desc.Category, itemID)
	if err != nil {
		return nil, s.itemNotFound(err)
	}
	if item.MSDS == "" {
		return nil, shared.NewDomainError(shared.CodeNotFound, "No MSDS uploaded for this item")
	}
	url, _, err := s.documents.GenerateDownloadURL(ctx, item.MSDS, MSDSLinkExpiry)
	if err != nil {
		return nil, err
	}
	return &MSDSResponse{ItemID: item.ID, Key: item.MSDS, URL: url}, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || name == "." || name == "/" {
		return "msds.pdf"
	}
	return b.String()
}
