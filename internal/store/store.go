package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store wraps the database and exposes the read-only providers and the
// append-only result sinks the engine works against.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Product returns the catalog entry for a product.
func (s *Store) Product(productID uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("could not load product %d: %w", productID, err)
	}
	return &product, nil
}

// ProductIDs returns the IDs of all products in the catalog.
func (s *Store) ProductIDs() ([]uint, error) {
	var ids []uint
	if err := s.db.Model(&models.Product{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	return ids, nil
}

// History returns the sales records for a product ordered by date. Zero-valued
// bounds are open-ended.
func (s *Store) History(productID uint, from, to time.Time) ([]models.Sale, error) {
	query := s.db.Where("product_id = ?", productID)
	if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}

	var sales []models.Sale
	if err := query.Order("date, id").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("could not load sales for product %d: %w", productID, err)
	}
	return sales, nil
}

// AverageDailyDemand returns mean quantity, revenue and profit per sale row
// over the trailing window. Used as the scenario baseline.
func (s *Store) AverageDailyDemand(productID uint, since time.Time) (quantity, revenue, profit float64, n int64, err error) {
	type row struct {
		AvgQuantity float64
		AvgRevenue  float64
		AvgProfit   float64
		N           int64
	}
	var r row
	err = s.db.Model(&models.Sale{}).
		Select("AVG(quantity) AS avg_quantity, AVG(revenue) AS avg_revenue, AVG(profit) AS avg_profit, COUNT(*) AS n").
		Where("product_id = ? AND date >= ?", productID, since).
		Scan(&r).Error
	if err != nil {
		err = fmt.Errorf("could not aggregate demand for product %d: %w", productID, err)
		return
	}
	return r.AvgQuantity, r.AvgRevenue, r.AvgProfit, r.N, nil
}

// SaveResult appends a calculation to the elasticity_results log inside a
// transaction. The row is either fully committed or not committed at all.
func (s *Store) SaveResult(result *models.ElasticityResult) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(result).Error
	})
	if err != nil {
		return fmt.Errorf("could not save elasticity result for product %d: %w", result.ProductID, err)
	}
	return nil
}

// LatestResult returns the most recent elasticity calculation for a product.
// Ordering is calculation_date then id, so two calculations within the same
// timestamp still resolve deterministically.
func (s *Store) LatestResult(productID uint) (*models.ElasticityResult, error) {
	var result models.ElasticityResult
	err := s.db.Where("product_id = ?", productID).
		Order("calculation_date DESC, id DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("elasticity result for product %d: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("could not load elasticity result for product %d: %w", productID, err)
	}
	return &result, nil
}

// ResultHistory returns all calculations for a product, newest first.
func (s *Store) ResultHistory(productID uint) ([]models.ElasticityResult, error) {
	var results []models.ElasticityResult
	err := s.db.Where("product_id = ?", productID).
		Order("calculation_date DESC, id DESC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("could not load result history for product %d: %w", productID, err)
	}
	return results, nil
}

// SaveScenario appends a simulation to the scenarios log.
func (s *Store) SaveScenario(scenario *models.Scenario) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(scenario).Error
	})
	if err != nil {
		return fmt.Errorf("could not save scenario for product %d: %w", scenario.ProductID, err)
	}
	return nil
}

// ScenariosByIDs returns the stored scenarios with the given IDs, in ID order.
func (s *Store) ScenariosByIDs(ids []uint) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	if err := s.db.Where("id IN ?", ids).Order("id").Find(&scenarios).Error; err != nil {
		return nil, fmt.Errorf("could not load scenarios: %w", err)
	}
	return scenarios, nil
}

// RecordCompetitorPrice stores one observed competitor quote.
func (s *Store) RecordCompetitorPrice(price *models.CompetitorPrice) error {
	if err := s.db.Create(price).Error; err != nil {
		return fmt.Errorf("could not record competitor price for product %d: %w", price.ProductID, err)
	}
	return nil
}
