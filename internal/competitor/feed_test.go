package competitor

import (
	"context"
	"errors"
	"testing"

	"github.com/Uddhav-Saikia/ElasticRev/internal/database"
	"github.com/Uddhav-Saikia/ElasticRev/internal/models"
	"github.com/Uddhav-Saikia/ElasticRev/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockClient is a mock implementation of ClientInterface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Quotes(ctx context.Context, sku string) ([]Quote, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).([]Quote), args.Error(1)
}

func setupFeedTest(t *testing.T) (*Feed, *MockClient, *gorm.DB, *models.Product) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)

	// Pin the pool to one connection so the in-memory database survives
	// connection recycling.
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	assert.NoError(t, database.AutoMigrate(db))

	product := &models.Product{SKU: "SKU-1", Name: "Widget", CurrentPrice: 10}
	assert.NoError(t, db.Create(product).Error)

	mockClient := new(MockClient)
	feed := NewFeed(mockClient, store.New(db), zap.NewNop())
	return feed, mockClient, db, product
}

func TestFeed_SyncProduct(t *testing.T) {
	// Arrange
	feed, mockClient, db, product := setupFeedTest(t)
	mockClient.On("Quotes", mock.Anything, "SKU-1").Return([]Quote{
		{SKU: "SKU-1", Competitor: "Acme", Price: 12.5, Date: "2026-05-01"},
		{SKU: "SKU-1", Competitor: "Globex", Price: 0, Date: "2026-05-01"},      // dropped: bad price
		{SKU: "SKU-1", Competitor: "Initech", Price: 11.9, Date: "not-a-date"}, // dropped: bad date
		{SKU: "SKU-1", Competitor: "Umbrella", Price: 13.1, Date: "2026-05-02"},
	}, nil)

	// Act
	stored, err := feed.SyncProduct(context.Background(), product)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 2, stored)
	mockClient.AssertExpectations(t)

	var records []models.CompetitorPrice
	assert.NoError(t, db.Order("price").Find(&records).Error)
	assert.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].CompetitorName)
	assert.Equal(t, "Umbrella", records[1].CompetitorName)
	assert.Equal(t, product.ID, records[0].ProductID)
}

func TestFeed_SyncProduct_ClientError(t *testing.T) {
	// Arrange
	feed, mockClient, _, product := setupFeedTest(t)
	mockClient.On("Quotes", mock.Anything, "SKU-1").Return([]Quote{}, errors.New("feed down"))

	// Act
	stored, err := feed.SyncProduct(context.Background(), product)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "feed down")
	assert.Zero(t, stored)
	mockClient.AssertExpectations(t)
}
