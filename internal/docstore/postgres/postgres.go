// Package postgres implements docstore.Client on a PostgreSQL jsonb table
// through gorm.
package postgres

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"regexp"
	"time"

	"github.com/agentstation/coursemap/pkg/docstore"
	"github.com/agentstation/coursemap/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ docstore.Client = (*Client)(nil)

// fieldPattern restricts filter fields to plain top-level JSON keys.
var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Document is one row of the documents table.
type Document struct {
	Collection string    `gorm:"type:text;primaryKey"`
	ID         string    `gorm:"type:text;primaryKey"`
	Body       []byte    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table holding documents.
func (Document) TableName() string { return "documents" }

// Client is a docstore.Client backed by PostgreSQL.
type Client struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the documents table.
func Open(ctx context.Context, dsn string) (*Client, error) {
	if dsn == "" {
		return nil, errors.NewConfigError("remote", "remote_dsn is required when the remote store is enabled", nil)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.NewConfigError("remote", "cannot connect to document store", err)
	}
	return New(ctx, db)
}

// New wraps an open gorm connection.
func New(ctx context.Context, db *gorm.DB) (*Client, error) {
	if err := db.WithContext(ctx).AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrate documents: %w", err)
	}
	return &Client{db: db}, nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Query returns matching documents in creation order.
func (c *Client) Query(ctx context.Context, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	tx, err := filterScope(c.db.WithContext(ctx).Where("collection = ?", collection), filters)
	if err != nil {
		return nil, err
	}
	var rows []Document
	if err := tx.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	docs := make([]docstore.Document, len(rows))
	for i, row := range rows {
		docs[i] = docstore.Document{ID: row.ID, Body: row.Body}
	}
	return docs, nil
}

// Get returns one document.
func (c *Client) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	row, err := c.find(c.db.WithContext(ctx), collection, id)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: row.ID, Body: row.Body}, nil
}

// Add inserts a document, replacing one with the same id.
func (c *Client) Add(ctx context.Context, collection, id string, body json.RawMessage) (string, error) {
	if !json.Valid(body) {
		return "", fmt.Errorf("add %s: invalid JSON body", collection)
	}
	if id == "" {
		id = docstore.NewID()
	}
	row := Document{Collection: collection, ID: id, Body: body}
	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return "", fmt.Errorf("add %s/%s: %w", collection, id, err)
	}
	return id, nil
}

// Update merges fields into the stored document.
func (c *Client) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := c.find(tx.Clauses(clause.Locking{Strength: "UPDATE"}), collection, id)
		if err != nil {
			return err
		}
		doc := map[string]any{}
		if err := json.Unmarshal(row.Body, &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		for k, v := range fields {
			doc[k] = v
		}
		merged, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return tx.Model(&Document{}).
			Where("collection = ? AND id = ?", collection, id).
			Updates(map[string]any{"body": merged, "updated_at": time.Now()}).Error
	})
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	res := c.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&Document{})
	if res.Error != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (c *Client) find(tx *gorm.DB, collection, id string) (Document, error) {
	var row Document
	err := tx.Where("collection = ? AND id = ?", collection, id).Take(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return row, nil
}

// filterScope adds one jsonb text equality per filter. Values compare as the
// text form of the stored field, which equals a string value or the JSON text
// of a scalar.
func filterScope(tx *gorm.DB, filters []docstore.Filter) (*gorm.DB, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	for _, f := range filters {
		tx = tx.Where("body ->> ? = ?", f.Field, f.Value)
	}
	return tx, nil
}

func validateFilters(filters []docstore.Filter) error {
	for _, f := range filters {
		if !fieldPattern.MatchString(f.Field) {
			return errors.NewValidationError("field", f.Field, "invalid filter field")
		}
	}
	return nil
}
