package sync

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/domain/models"
	"github.com/MILA-Wien/odoo-product-updater-bot/internal/refdata"
	"github.com/MILA-Wien/odoo-product-updater-bot/pkg/clients/odoo"
)

// importerEnabledCond selects products opted into this bot.
var importerEnabledCond = []any{"product_importer_script_behavior", "=", "enabled"}

// Selector narrows which products a run processes. The zero value selects
// uninitialized products only (ERP name is the sentinel "NEW").
type Selector struct {
	All       bool
	ProductID int64
}

func (s Selector) domain() odoo.Domain {
	switch {
	case s.All:
		return odoo.Domain{importerEnabledCond}
	case s.ProductID != 0:
		return odoo.Domain{odoo.Eq("id", s.ProductID)}
	default:
		return odoo.Domain{odoo.Eq("name", models.NewProductName), importerEnabledCond}
	}
}

// Feeds carries the parsed supplier feeds for one run.
type Feeds struct {
	Terra  map[string]models.SupplierRecord
	Agidra map[string]models.SupplierRecord
}

// Service runs one sequential batch pass over the candidate products,
// classifies each by feed membership and writes the minimal ERP updates.
type Service struct {
	erp        odoo.API
	normalizer *Normalizer
	tables     *refdata.Tables
	feeds      Feeds
	terra      refdata.Supplier
	agidra     refdata.Supplier
	logger     *zap.Logger

	supplierInfos []models.SupplierInfo
	orderpoints   []models.Orderpoint
}

// NewService wires a sync service instance.
func NewService(erp odoo.API, normalizer *Normalizer, tables *refdata.Tables, feeds Feeds, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		erp:        erp,
		normalizer: normalizer,
		tables:     tables,
		feeds:      feeds,
		terra:      refdata.Terra(),
		agidra:     refdata.Agidra(),
		logger:     logger,
	}
}

// Run executes one batch pass. Every failure except the optional image fetch
// propagates and aborts the run; there is no partial-batch resumability.
func (s *Service) Run(ctx context.Context, sel Selector) error {
	enabled, err := s.erp.SearchCount(ctx, "product.template", odoo.Domain{importerEnabledCond})
	if err != nil {
		return fmt.Errorf("count enabled products: %w", err)
	}
	s.logger.Info("starting sync pass", zap.Int("enabled_products", enabled))

	productRecords, err := s.erp.SearchRead(ctx, "product.template", sel.domain(), odoo.SearchOptions{Fields: models.ProductFields})
	if err != nil {
		return fmt.Errorf("read products: %w", err)
	}

	if err := s.preload(ctx); err != nil {
		return err
	}

	for _, rec := range productRecords {
		p := models.ProductFromRecord(rec)

		if supplierRec, ok := s.feeds.Terra[p.Barcode]; ok {
			target, err := s.normalizer.TerraTarget(ctx, supplierRec, p, s.terra)
			if err != nil {
				return fmt.Errorf("normalize terra product %d: %w", p.ID, err)
			}
			if err := s.applyTarget(ctx, p, target); err != nil {
				return err
			}
		} else if supplierRec, ok := s.feeds.Agidra[p.Barcode]; ok {
			target, err := s.normalizer.AgidraTarget(ctx, supplierRec, p, s.agidra)
			if err != nil {
				return fmt.Errorf("normalize agidra product %d: %w", p.ID, err)
			}
			if err := s.applyTarget(ctx, p, target); err != nil {
				return err
			}
		} else if err := s.repairProduct(ctx, p); err != nil {
			return err
		}
	}

	return s.purgeNameTranslations(ctx)
}

// preload reads all supplier links and reordering rules once up front; both
// collections are small and looked up per product afterwards.
func (s *Service) preload(ctx context.Context) error {
	infoRecords, err := s.erp.SearchRead(ctx, "product.supplierinfo", nil, odoo.SearchOptions{Fields: models.SupplierInfoFields})
	if err != nil {
		return fmt.Errorf("read supplier infos: %w", err)
	}
	s.supplierInfos = make([]models.SupplierInfo, 0, len(infoRecords))
	for _, rec := range infoRecords {
		s.supplierInfos = append(s.supplierInfos, models.SupplierInfoFromRecord(rec))
	}

	orderpointRecords, err := s.erp.SearchRead(ctx, "stock.warehouse.orderpoint", nil, odoo.SearchOptions{Fields: models.OrderpointFields})
	if err != nil {
		return fmt.Errorf("read orderpoints: %w", err)
	}
	s.orderpoints = make([]models.Orderpoint, 0, len(orderpointRecords))
	for _, rec := range orderpointRecords {
		s.orderpoints = append(s.orderpoints, models.OrderpointFromRecord(rec))
	}

	return nil
}

func (s *Service) supplierInfoFor(productID int64) *models.SupplierInfo {
	for i := range s.supplierInfos {
		if s.supplierInfos[i].ProductTmplID == productID {
			return &s.supplierInfos[i]
		}
	}
	return nil
}

func (s *Service) orderpointFor(variantID int64) *models.Orderpoint {
	for i := range s.orderpoints {
		if s.orderpoints[i].ProductID == variantID {
			return &s.orderpoints[i]
		}
	}
	return nil
}

// applyTarget diffs and writes the product, its supplier link and, when
// needed, a new reordering rule.
func (s *Service) applyTarget(ctx context.Context, p models.Product, target *Target) error {
	updates := FieldUpdates(productFieldSpec, p.Raw, target.ProductFields)
	if len(updates) > 0 {
		s.logger.Info("updating product",
			zap.Int64("product_id", p.ID), zap.String("name", p.Name), zap.Any("fields", updates))
		if err := s.erp.Write(ctx, "product.template", []int64{p.ID}, updates); err != nil {
			return fmt.Errorf("write product %d: %w", p.ID, err)
		}
	} else {
		s.logger.Debug("no product update required", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
	}

	info := s.supplierInfoFor(p.ID)
	var old odoo.Record
	if info != nil {
		old = info.Raw
	}
	infoUpdates := FieldUpdates(supplierInfoFieldSpec, old, target.SupplierInfoFields)

	if info != nil {
		if len(infoUpdates) > 0 {
			s.logger.Info("updating supplierinfo",
				zap.Int64("supplierinfo_id", info.ID), zap.Int64("product_id", p.ID), zap.Any("fields", infoUpdates))
			if err := s.erp.Write(ctx, "product.supplierinfo", []int64{info.ID}, infoUpdates); err != nil {
				return fmt.Errorf("write supplierinfo %d: %w", info.ID, err)
			}
		} else {
			s.logger.Debug("no supplierinfo update required", zap.Int64("product_id", p.ID))
		}
	} else {
		s.logger.Info("creating supplierinfo", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
		if _, err := s.erp.Create(ctx, "product.supplierinfo", infoUpdates); err != nil {
			return fmt.Errorf("create supplierinfo for product %d: %w", p.ID, err)
		}
	}

	// A reordering rule is created once for in-stock products and never
	// touched again.
	if p.QtyAvailable > 0 && s.orderpointFor(p.VariantID) == nil {
		s.logger.Info("creating orderpoint", zap.Int64("product_id", p.ID), zap.String("name", p.Name))
		if _, err := s.erp.Create(ctx, "stock.warehouse.orderpoint", map[string]any{
			"product_min_qty": target.ReorderMinQty,
			"product_max_qty": float64(target.CaseQuantity),
			"product_id":      p.VariantID,
		}); err != nil {
			return fmt.Errorf("create orderpoint for product %d: %w", p.ID, err)
		}
	}

	return nil
}

// repairProduct handles products absent from every feed: it backfills a
// zero supplier price from the cost price and re-aligns the income/expense
// accounts with the assigned tax rate. Nothing else is touched.
func (s *Service) repairProduct(ctx context.Context, p models.Product) error {
	info := s.supplierInfoFor(p.ID)

	if info != nil && p.StandardPrice != 0 && info.Price == 0 {
		uom, err := s.erp.Get(ctx, "uom.uom", odoo.Domain{odoo.Eq("id", p.PurchaseUomID)}, nil)
		if err != nil {
			return fmt.Errorf("read purchase uom %d: %w", p.PurchaseUomID, err)
		}
		if uom == nil {
			return fmt.Errorf("purchase uom %d not found", p.PurchaseUomID)
		}

		price := decimal.NewFromFloat(p.StandardPrice).
			Mul(decimal.NewFromFloat(odoo.Float(uom["factor_inv"]))).
			Round(2)
		fields := map[string]any{"price": price.StringFixed(2)}

		s.logger.Info("backfilling supplierinfo price from cost",
			zap.Int64("supplierinfo_id", info.ID), zap.Int64("product_id", p.ID), zap.Any("fields", fields))
		if err := s.erp.Write(ctx, "product.supplierinfo", []int64{info.ID}, fields); err != nil {
			return fmt.Errorf("write supplierinfo %d: %w", info.ID, err)
		}
	}

	rate := s.tables.RateForSaleTaxes(p.SaleTaxIDs)
	if rate == 0 {
		return nil
	}

	income, expense, err := s.tables.AccountsForRate(rate)
	if err != nil {
		return err
	}

	if p.IncomeAccountID == income && p.ExpenseAccountID == expense {
		return nil
	}

	fields := map[string]any{
		"property_account_income_id":  income,
		"property_account_expense_id": expense,
	}
	s.logger.Info("aligning accounts with tax rate",
		zap.Int64("product_id", p.ID), zap.Int("rate", rate), zap.Any("fields", fields))
	if err := s.erp.Write(ctx, "product.template", []int64{p.ID}, fields); err != nil {
		return fmt.Errorf("write product %d: %w", p.ID, err)
	}

	return nil
}

// purgeNameTranslations removes translation strings of the generic product
// name field; repeated writes of the "NEW" sentinel leave them orphaned.
func (s *Service) purgeNameTranslations(ctx context.Context) error {
	records, err := s.erp.SearchRead(ctx, "ir.translation",
		odoo.Domain{odoo.Eq("name", "product.template,name")}, odoo.SearchOptions{Fields: []string{"id"}})
	if err != nil {
		return fmt.Errorf("read name translations: %w", err)
	}

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		if id, ok := odoo.ID(rec["id"]); ok {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil
	}

	s.logger.Info("purging product name translations", zap.Int("count", len(ids)))
	if err := s.erp.Unlink(ctx, "ir.translation", ids); err != nil {
		return fmt.Errorf("unlink name translations: %w", err)
	}

	return nil
}
