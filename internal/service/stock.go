package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/and161185/shopfloor/internal/audit"
	"github.com/and161185/shopfloor/internal/errs"
	"github.com/and161185/shopfloor/internal/metrics"
	"github.com/and161185/shopfloor/internal/model"
	"github.com/and161185/shopfloor/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// DefaultItemStatus is assigned to items created without a status.
const DefaultItemStatus = "ACTIVE"

// StockService defines the stock ledger and the item catalogue around it.
type StockService interface {
	// RecordMovement applies a signed delta and appends the movement as one unit.
	RecordMovement(ctx context.Context, req model.MovementRequest) (uuid.UUID, error)
	// ListMovements returns the ledger newest first.
	ListMovements(ctx context.Context) ([]model.StockMovement, error)
	// Statistics aggregates the current inventory.
	Statistics(ctx context.Context) (model.Statistics, error)
	// CreateItem validates and stores a new item.
	CreateItem(ctx context.Context, it model.InventoryItem) (*model.InventoryItem, error)
	// GetItem returns a single item.
	GetItem(ctx context.Context, itemCode string) (*model.InventoryItem, error)
	// ListItems returns all items ordered by code.
	ListItems(ctx context.Context) ([]model.InventoryItem, error)
}

type StockServiceImpl struct {
	repo     repository.InventoryRepository
	audit    *audit.Recorder
	log      *zap.Logger
	validate *validator.Validate
}

// NewStockService constructs StockService. rec and log may be nil.
func NewStockService(repo repository.InventoryRepository, rec *audit.Recorder, log *zap.Logger) *StockServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &StockServiceImpl{repo: repo, audit: rec, log: log, validate: newValidator()}
}

// RecordMovement validates req, then hands the movement and its signed delta to the store,
// which applies both atomically. No floor is enforced on the resulting quantity.
func (s *StockServiceImpl) RecordMovement(ctx context.Context, req model.MovementRequest) (uuid.UUID, error) {
	req.ItemCode = strings.TrimSpace(req.ItemCode)
	switch {
	case req.ItemCode == "":
		return uuid.Nil, fmt.Errorf("%w: item code is required", errs.ErrInvalidInput)
	case !req.Type.Valid():
		return uuid.Nil, fmt.Errorf("%w: unknown movement type %q", errs.ErrInvalidInput, req.Type)
	case req.Quantity <= 0:
		return uuid.Nil, fmt.Errorf("%w: quantity must be positive", errs.ErrInvalidInput)
	case strings.TrimSpace(req.Actor) == "":
		return uuid.Nil, fmt.Errorf("%w: actor is required", errs.ErrInvalidInput)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, err
	}
	mv := &model.StockMovement{
		ID:        id,
		ItemCode:  req.ItemCode,
		Type:      req.Type,
		Quantity:  req.Quantity,
		Reference: strings.TrimSpace(req.Reference),
		Actor:     req.Actor,
	}

	newQty, err := s.repo.ApplyMovement(ctx, mv, req.Type.Delta(req.Quantity))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return uuid.Nil, errs.ErrItemNotFound
		}
		return uuid.Nil, s.storeErr("apply movement", req.ItemCode, err)
	}

	metrics.ObserveMovement(string(req.Type), req.Quantity)
	s.audit.Record(ctx, req.Actor, model.AuditStockMovement, true,
		fmt.Sprintf("%s %s %d, on hand %d", req.ItemCode, req.Type, req.Quantity, newQty))
	s.log.Debug("movement recorded",
		zap.String("id", id.String()),
		zap.String("item", req.ItemCode),
		zap.String("type", string(req.Type)),
		zap.Int64("quantity", req.Quantity),
		zap.Int64("on_hand", newQty),
	)
	return id, nil
}

// ListMovements returns every movement, newest first.
func (s *StockServiceImpl) ListMovements(ctx context.Context) ([]model.StockMovement, error) {
	out, err := s.repo.ListMovements(ctx)
	if err != nil {
		return nil, s.storeErr("list movements", "", err)
	}
	if out == nil {
		out = []model.StockMovement{}
	}
	return out, nil
}

// Statistics scans all items and aggregates them.
func (s *StockServiceImpl) Statistics(ctx context.Context) (model.Statistics, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return model.Statistics{}, s.storeErr("statistics", "", err)
	}
	return model.Summarize(items), nil
}

// CreateItem stores a new item; the status defaults to ACTIVE.
func (s *StockServiceImpl) CreateItem(ctx context.Context, it model.InventoryItem) (*model.InventoryItem, error) {
	if err := validateItem(s.validate, it); err != nil {
		return nil, err
	}
	it.ItemCode = strings.TrimSpace(it.ItemCode)
	it.Description = strings.TrimSpace(it.Description)
	if it.Status == "" {
		it.Status = DefaultItemStatus
	}
	if err := s.repo.CreateItem(ctx, &it); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			return nil, errs.ErrDuplicateItem
		}
		return nil, s.storeErr("create item", it.ItemCode, err)
	}
	return &it, nil
}

// GetItem loads an item by code.
func (s *StockServiceImpl) GetItem(ctx context.Context, itemCode string) (*model.InventoryItem, error) {
	it, err := s.repo.GetItem(ctx, strings.TrimSpace(itemCode))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.ErrItemNotFound
		}
		return nil, s.storeErr("get item", itemCode, err)
	}
	return it, nil
}

// ListItems returns the catalogue ordered by code.
func (s *StockServiceImpl) ListItems(ctx context.Context) ([]model.InventoryItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, s.storeErr("list items", "", err)
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	return items, nil
}

// storeErr logs a persistence failure and wraps it as ErrStore.
func (s *StockServiceImpl) storeErr(op, itemCode string, err error) error {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if itemCode != "" {
		fields = append(fields, zap.String("item", itemCode))
	}
	s.log.Error("store", fields...)
	return fmt.Errorf("%w: %s: %w", errs.ErrStore, op, err)
}
