package database

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// compositeIndex is an index the model tags cannot express on their own.
type compositeIndex struct {
	model   any
	name    string
	columns []string
}

var compositeIndexes = []compositeIndex{
	// Owner-scoped listing sorted by creation time
	{&models.Task{}, "idx_tasks_user_created", []string{"user_id", "created_at"}},
	// Owner-scoped status/priority filters
	{&models.Task{}, "idx_tasks_user_status", []string{"user_id", "status"}},
	{&models.Task{}, "idx_tasks_user_priority", []string{"user_id", "priority"}},
	// Overdue detection
	{&models.Task{}, "idx_tasks_due_status", []string{"due_date", "status"}},
}

// AddIndexes adds performance-critical composite indexes to the database
func AddIndexes(db *gorm.DB, log *logrus.Logger) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.model, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithFields(logrus.Fields{
			"index": idx.name,
			"table": stmt.Schema.Table,
		}).Info("Created index")
	}

	return nil
}
