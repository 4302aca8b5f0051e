package shopping

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/arielallagbe23/mealprep/internal/blob"
	"github.com/arielallagbe23/mealprep/internal/config"
	"github.com/arielallagbe23/mealprep/internal/storage"
)

// MealsReader loads meals by id. Unknown ids are left out of the result.
type MealsReader interface {
	GetMany(ctx context.Context, ids []string) ([]storage.Meal, error)
}

// Service builds shopping lists from saved meals.
type Service struct {
	meals           MealsReader
	blobStore       blob.Store // nil: exports are streamed back
	presignTTL      time.Duration
	publicBaseURL   string
	preferPublicURL bool
	now             func() time.Time
}

// NewService creates a new shopping service. store may be nil.
func NewService(meals MealsReader, store blob.Store, s3cfg config.S3Config) *Service {
	return &Service{
		meals:           meals,
		blobStore:       store,
		presignTTL:      time.Duration(s3cfg.PresignTTLSeconds) * time.Second,
		publicBaseURL:   s3cfg.PublicBaseURL,
		preferPublicURL: s3cfg.PreferPublicURL,
		now:             time.Now,
	}
}

// BuildList aggregates the owner's meals. Ids that are unknown or belong to
// another user are reported in SkippedMealIDs.
func (s *Service) BuildList(ctx context.Context, ownerUserID string, req ListRequest) (*ListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	found, err := s.meals.GetMany(ctx, req.MealIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load meals: %w", err)
	}

	byID := make(map[string]storage.Meal, len(found))
	for _, m := range found {
		if m.OwnerUserID == ownerUserID {
			byID[m.ID] = m
		}
	}

	portions := req.Portions()
	meals := make([]storage.Meal, 0, len(byID))
	refs := make([]MealRef, 0, len(byID))
	skipped := make([]string, 0)
	for _, id := range req.MealIDs {
		m, ok := byID[id]
		if !ok {
			skipped = append(skipped, id)
			continue
		}
		meals = append(meals, m)
		refs = append(refs, MealRef{ID: m.ID, Name: m.Name, Multiplier: Multiplier(m, portions)})
	}

	items := Aggregate(meals, portions)
	return &ListResponse{
		Items:          items,
		Meals:          refs,
		SkippedMealIDs: skipped,
		TotalGrams:     TotalGrams(items),
	}, nil
}

// Export is a rendered list. Data is set when there is no blob store,
// otherwise URL points at the uploaded object.
type Export struct {
	Format      string
	ContentType string
	Filename    string
	Data        []byte
	URL         string
	ObjectKey   string
	SizeBytes   int64
	Skipped     []string
}

// Export renders the list as pdf or csv and uploads it when a store is configured.
func (s *Service) Export(ctx context.Context, ownerUserID string, req ExportRequest) (*Export, error) {
	format, err := req.NormalizedFormat()
	if err != nil {
		return nil, err
	}

	list, err := s.BuildList(ctx, ownerUserID, req.ListRequest)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var data []byte
	var contentType string
	switch format {
	case FormatCSV:
		data, err = renderCSV(list.Items)
		contentType = "text/csv; charset=utf-8"
	default:
		meals := make([]exportMeal, 0, len(list.Meals))
		for _, m := range list.Meals {
			meals = append(meals, exportMeal{Name: m.Name, Multiplier: m.Multiplier})
		}
		data, err = renderPDF(list.Items, meals, now)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", format, err)
	}

	out := &Export{
		Format:      format,
		ContentType: contentType,
		Filename:    "shopping-list-" + now.UTC().Format("2006-01-02") + "." + format,
		SizeBytes:   int64(len(data)),
		Skipped:     list.SkippedMealIDs,
	}

	if s.blobStore == nil {
		out.Data = data
		return out, nil
	}

	key := blob.ExportKey(ownerUserID, now, format)
	size, err := s.blobStore.PutObject(ctx, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	url, err := s.downloadURL(ctx, key)
	if err != nil {
		if delErr := s.blobStore.DeleteObject(ctx, key); delErr != nil {
			log.Printf("WARN shopping.export: cleanup key=%s failed: %v", key, delErr)
		}
		return nil, err
	}

	out.URL = url
	out.ObjectKey = key
	out.SizeBytes = size
	return out, nil
}

func (s *Service) downloadURL(ctx context.Context, key string) (string, error) {
	if s.preferPublicURL && s.publicBaseURL != "" {
		return blob.PublicURL(s.publicBaseURL, key), nil
	}

	ttl := s.presignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	url, err := s.blobStore.PresignGet(ctx, key, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url, nil
}
