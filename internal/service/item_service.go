package service

import (
	"context"
	"errors"
	"strings"

	"stockswift/internal/dto"
	"stockswift/internal/model"
	"stockswift/internal/repository"
	"stockswift/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrSKUTaken     = errors.New("SKU already exists")
	ErrItemNotFound = errors.New("Item not found")
)

// MissingFieldError names the first required field absent from a create
// request, checked in a fixed order: name, sku, category, cost.
type MissingFieldError struct{ Field string }

func (e *MissingFieldError) Error() string { return "Missing field: " + e.Field }

type ItemService interface {
	List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error)
	Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemEnvelope, error)
	Patch(ctx context.Context, id uuid.UUID, req dto.PatchItemRequest) (*dto.ItemEnvelope, error)
}

// AlertDispatcher hands low-stock jobs to the async pipeline.
// *worker.Dispatcher is the production implementation.
type AlertDispatcher interface {
	EnqueueStockAlert(ctx context.Context, job worker.StockAlertJob) error
}

type itemService struct {
	repo repository.ItemRepository
	// dispatcher is nil when Redis is not configured; alerting is best-effort
	// and never fails a request.
	dispatcher AlertDispatcher
}

func NewItemService(repo repository.ItemRepository, dispatcher AlertDispatcher) ItemService {
	return &itemService{repo: repo, dispatcher: dispatcher}
}

func (s *itemService) List(ctx context.Context, filter dto.ItemFilter) (*dto.ItemListResponse, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ItemListResponse{
		Items:      make([]dto.ItemResponse, len(items)),
		Categories: categories,
	}
	for i := range items {
		r := toItemResponse(&items[i])
		updatedAt := items[i].UpdatedAt
		r.UpdatedAt = &updatedAt
		resp.Items[i] = r
	}
	if resp.Categories == nil {
		resp.Categories = []dto.CategoryCount{}
	}
	return resp, nil
}

func (s *itemService) Create(ctx context.Context, req dto.CreateItemRequest) (*dto.ItemEnvelope, error) {
	switch {
	case req.Name == "":
		return nil, &MissingFieldError{"name"}
	case req.SKU == "":
		return nil, &MissingFieldError{"sku"}
	case req.Category == "":
		return nil, &MissingFieldError{"category"}
	case req.Cost == nil:
		return nil, &MissingFieldError{"cost"}
	}

	// Uppercase-normalize before the uniqueness check AND storage, so the
	// conflict is case-insensitive.
	sku := strings.ToUpper(req.SKU)
	if _, err := s.repo.FindBySKU(ctx, sku); err == nil {
		return nil, ErrSKUTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := &model.Item{
		Name:         req.Name,
		SKU:          sku,
		Category:     req.Category,
		Cost:         *req.Cost,
		OnHand:       intOrZero(req.OnHand),
		Reserved:     intOrZero(req.Reserved),
		ReorderPoint: intOrZero(req.ReorderPoint),
		Image:        req.Image,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUTaken
		}
		return nil, err
	}
	return &dto.ItemEnvelope{Item: toItemResponse(item)}, nil
}

// Patch applies only the fields present and non-null in the request; the
// allow-list is onHand, reserved, cost, reorderPoint. An empty patch returns
// the item unmodified.
func (s *itemService) Patch(ctx context.Context, id uuid.UUID, req dto.PatchItemRequest) (*dto.ItemEnvelope, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.OnHand != nil {
		fields["on_hand"] = *req.OnHand
	}
	if req.Reserved != nil {
		fields["reserved"] = *req.Reserved
	}
	if req.Cost != nil {
		fields["cost"] = *req.Cost
	}
	if req.ReorderPoint != nil {
		fields["reorder_point"] = *req.ReorderPoint
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.maybeAlertLowStock(ctx, item)
	return &dto.ItemEnvelope{Item: toItemResponse(item)}, nil
}

// maybeAlertLowStock enqueues a notification when free-to-use has dropped to
// or below the reorder point. Enqueue failures are logged, never surfaced.
func (s *itemService) maybeAlertLowStock(ctx context.Context, item *model.Item) {
	if s.dispatcher == nil || item.ReorderPoint <= 0 || item.FreeToUse() > item.ReorderPoint {
		return
	}
	job := worker.StockAlertJob{
		ItemID:       item.ID.String(),
		Name:         item.Name,
		SKU:          item.SKU,
		FreeToUse:    item.FreeToUse(),
		ReorderPoint: item.ReorderPoint,
	}
	if err := s.dispatcher.EnqueueStockAlert(ctx, job); err != nil {
		log.Error().Err(err).Str("sku", item.SKU).Msg("failed to enqueue stock alert")
	}
}

func toItemResponse(item *model.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:           item.ID.String(),
		Name:         item.Name,
		SKU:          item.SKU,
		Category:     item.Category,
		Cost:         item.Cost,
		OnHand:       item.OnHand,
		Reserved:     item.Reserved,
		ReorderPoint: item.ReorderPoint,
		Image:        item.Image,
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
