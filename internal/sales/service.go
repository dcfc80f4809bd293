package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/pos-backend/internal/products"
	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db/models"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
	"github.com/angelmondragon/pos-backend/pkg/journal"
	"github.com/angelmondragon/pos-backend/pkg/logger"
	"github.com/angelmondragon/pos-backend/pkg/metrics"
)

// Service runs the sale workflow. Every mutation is a single transaction
// covering stock, ledger rows and the journal entry.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateSaleRequest) (*CreateSaleResult, error)
	List(ctx context.Context) (*ListSalesResult, error)
	Get(ctx context.Context, id uuid.UUID) (*GetSaleResult, error)
	Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateSaleRequest) (*UpdateSaleResult, error)
	Delete(ctx context.Context, actor Actor, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event journal.DomainEvent) error
}

// ServiceParams bundles the sale workflow dependencies. Guard and Metrics are optional.
type ServiceParams struct {
	DB       txRunner
	Sales    *Repository
	Products *products.Repository
	Journal  eventEmitter
	Guard    SubmissionGuard
	Metrics  *metrics.SaleMetrics
	Config   config.SalesConfig
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	db       txRunner
	sales    *Repository
	products *products.Repository
	journal  eventEmitter
	guard    SubmissionGuard
	metrics  *metrics.SaleMetrics
	cfg      config.SalesConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService validates dependencies and builds the sale workflow.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if params.Sales == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if params.Journal == nil {
		return nil, fmt.Errorf("journal required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Config.DuplicateWindow <= 0 {
		return nil, fmt.Errorf("duplicate window must be positive")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:       params.DB,
		sales:    params.Sales,
		products: params.Products,
		journal:  params.Journal,
		guard:    params.Guard,
		metrics:  params.Metrics,
		cfg:      params.Config,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, req CreateSaleRequest) (*CreateSaleResult, error) {
	method, err := validateCreate(req)
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	if s.guard != nil {
		release, err := s.guard.Acquire(ctx, actor.UserID, basketFingerprint(req.Products))
		if err != nil {
			s.recordRejection(err)
			return nil, err
		}
		defer release()
	}

	var (
		sale   *models.Sale
		alerts []Alert
	)
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		saleRepo := s.sales.WithTx(tx)

		items, total, err := priceLines(ctx, productRepo, req.Products)
		if err != nil {
			return err
		}

		now := s.now()
		recent, err := saleRepo.FindRecentBySeller(ctx, actor.UserID, now.Add(-s.cfg.DuplicateWindow))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent sales")
		}
		if dup := findDuplicate(recent, total, items); dup != nil {
			return pkgerrors.New(pkgerrors.CodeDuplicateSubmission, "an identical sale was recorded moments ago, try again later").
				WithDetails(map[string]any{"saleId": dup.ID})
		}

		if err := reserveStock(ctx, productRepo, items); err != nil {
			return err
		}

		sale = &models.Sale{
			SellerID:      actor.UserID,
			Items:         items,
			Total:         total,
			PaymentMethod: method,
			Status:        enums.SaleStatusCompleted,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
		}
		if err := s.emit(ctx, tx, enums.SaleEventCreated, actor, sale, now); err != nil {
			return err
		}

		alerts, err = alertsForItems(ctx, productRepo, items, s.cfg.LowStockThreshold)
		return err
	})
	if err != nil {
		s.recordRejection(err)
		return nil, err
	}

	saved, err := s.load(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.IncCreated()
	s.logg.Info(s.logg.WithSaleID(ctx, sale.ID.String()), "sale recorded")

	return &CreateSaleResult{
		Message: "sale recorded successfully",
		Sale:    FromModel(saved),
		Alerts:  alerts,
	}, nil
}

func (s *service) List(ctx context.Context) (*ListSalesResult, error) {
	rows, err := s.sales.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
	}

	out := make([]SaleDTO, 0, len(rows))
	var items []models.SaleItem
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
		items = append(items, rows[i].Items...)
	}
	alerts, err := alertsForItems(ctx, s.products, items, s.cfg.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &ListSalesResult{Sales: out, Alerts: alerts}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*GetSaleResult, error) {
	sale, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	alerts, err := alertsForItems(ctx, s.products, sale.Items, s.cfg.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	return &GetSaleResult{Sale: FromModel(sale), Alerts: alerts}, nil
}

func (s *service) Update(ctx context.Context, actor Actor, id uuid.UUID, req UpdateSaleRequest) (*UpdateSaleResult, error) {
	patch, err := validateUpdate(req)
	if err != nil {
		return nil, err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		saleRepo := s.sales.WithTx(tx)

		sale, err := findSale(ctx, saleRepo, id)
		if err != nil {
			return err
		}

		if req.Products != nil {
			if err := s.restock(ctx, productRepo, sale.Items); err != nil {
				return err
			}
			items, total, err := priceLines(ctx, productRepo, req.Products)
			if err != nil {
				return err
			}
			if err := reserveStock(ctx, productRepo, items); err != nil {
				return err
			}
			if err := saleRepo.ReplaceItems(ctx, sale.ID, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace sale items")
			}
			sale.Items = items
			sale.Total = total
		}
		if patch.paymentMethod != nil {
			sale.PaymentMethod = *patch.paymentMethod
		}
		if patch.status != nil {
			sale.Status = *patch.status
		}

		now := s.now()
		sale.UpdatedAt = now
		if err := saleRepo.Save(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save sale")
		}
		return s.emit(ctx, tx, enums.SaleEventUpdated, actor, sale, now)
	})
	if err != nil {
		return nil, err
	}

	saved, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithSaleID(ctx, id.String()), "sale updated")
	return &UpdateSaleResult{Message: "sale updated successfully", Sale: FromModel(saved)}, nil
}

func (s *service) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		productRepo := s.products.WithTx(tx)
		saleRepo := s.sales.WithTx(tx)

		sale, err := findSale(ctx, saleRepo, id)
		if err != nil {
			return err
		}
		if err := s.restock(ctx, productRepo, sale.Items); err != nil {
			return err
		}
		if _, err := saleRepo.Delete(ctx, sale.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete sale")
		}
		return s.emit(ctx, tx, enums.SaleEventDeleted, actor, sale, s.now())
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithSaleID(ctx, id.String()), "sale deleted")
	return nil
}

// restock returns each line's quantity to its product. Products removed from
// the catalog since the sale are skipped.
func (s *service) restock(ctx context.Context, repo stockWriter, items []models.SaleItem) error {
	for _, item := range items {
		ok, err := repo.IncrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
		}
		if !ok {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"product_id": item.ProductID.String(),
				"quantity":   item.Quantity,
			})
			s.logg.Warn(logCtx, "skipping stock reversal for missing product")
		}
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, eventType enums.SaleEventType, actor Actor, sale *models.Sale, at time.Time) error {
	err := s.journal.Emit(ctx, tx, journal.DomainEvent{
		EventType:  eventType,
		SaleID:     sale.ID,
		Actor:      journal.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
		Data:       eventData(sale),
		OccurredAt: at,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale event")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	return findSale(ctx, s.sales, id)
}

func (s *service) recordRejection(err error) {
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeDuplicateSubmission):
		s.metrics.IncRejected(metrics.RejectDuplicate)
	case pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock):
		s.metrics.IncRejected(metrics.RejectInsufficientStock)
	case pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		s.metrics.IncRejected(metrics.RejectValidation)
	}
}

func findSale(ctx context.Context, repo *Repository, id uuid.UUID) (*models.Sale, error) {
	sale, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	return sale, nil
}
