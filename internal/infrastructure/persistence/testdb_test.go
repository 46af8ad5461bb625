package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

// newTestDB opens an isolated in-memory sqlite database with the prediction
// schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.ForecastRecordModel{},
		&models.ModelRecordModel{},
		&models.AnomalyRecordModel{},
		&models.AssociationRuleModel{},
		&models.RecommendationModel{},
	))
	return db
}
