package catalog

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSQLitePath is used when no "path" option is configured
const DefaultSQLitePath = "./.promptvault/catalog.db"

type promptRow struct {
	ID               string `gorm:"primaryKey"`
	Name             string `gorm:"uniqueIndex"`
	Description      string
	DefaultVariant   string
	EncryptionKeyArn string
	Tags             map[string]string `gorm:"serializer:json"`
	LatestVersion    int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (promptRow) TableName() string { return "prompts" }

type versionRow struct {
	ID          uint   `gorm:"primaryKey"`
	PromptID    string `gorm:"uniqueIndex:idx_prompt_version"`
	Version     int    `gorm:"uniqueIndex:idx_prompt_version"`
	Description string
	Tags        map[string]string `gorm:"serializer:json"`
	Variant     Variant           `gorm:"serializer:json"`
	CreatedAt   time.Time
}

func (versionRow) TableName() string { return "prompt_versions" }

// SQLiteClient is a local catalog with the same draft/version rules as
// Bedrock. Creating a prompt stores its draft and snapshots it as version 1,
// so a freshly created prompt can be fetched by number right away.
type SQLiteClient struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) a catalog database at path
func OpenSQLite(path string) (*SQLiteClient, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create catalog directory")
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.AutoMigrate(&promptRow{}, &versionRow{}); err != nil {
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return &SQLiteClient{db: db}, nil
}

// Close releases the underlying database handle
func (c *SQLiteClient) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *SQLiteClient) CreatePrompt(ctx context.Context, in CreatePromptInput) (*PromptRecord, error) {
	if in.Variant.Name == "" {
		in.Variant.Name = DefaultVariantName
	}

	row := promptRow{
		ID:               uuid.NewString(),
		Name:             in.Name,
		Description:      in.Description,
		DefaultVariant:   in.DefaultVariant,
		EncryptionKeyArn: in.CustomerEncryptionKeyArn,
		Tags:             in.Tags,
		LatestVersion:    1,
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&promptRow{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &AlreadyExistsError{Name: in.Name}
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		snapshots := []versionRow{
			{PromptID: row.ID, Version: DraftVersion, Variant: in.Variant},
			{PromptID: row.ID, Version: 1, Variant: in.Variant},
		}
		return tx.Create(&snapshots).Error
	})
	if err != nil {
		return nil, wrapSQLiteError(err, "failed to create prompt")
	}

	return &PromptRecord{
		ID:        row.ID,
		Arn:       localArn(row.ID),
		Name:      row.Name,
		Version:   row.LatestVersion,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (c *SQLiteClient) CreatePromptVersion(ctx context.Context, in CreateVersionInput) (*PromptRecord, error) {
	var row promptRow
	var snapshot versionRow

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "id = ?", in.PromptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Prompt: in.PromptID, Version: DraftVersion}
			}
			return err
		}

		var draft versionRow
		if err := tx.First(&draft, "prompt_id = ? AND version = ?", row.ID, DraftVersion).Error; err != nil {
			return err
		}

		row.LatestVersion++
		snapshot = versionRow{
			PromptID:    row.ID,
			Version:     row.LatestVersion,
			Description: in.Description,
			Tags:        in.Tags,
			Variant:     draft.Variant,
		}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}
		return tx.Model(&row).Update("latest_version", row.LatestVersion).Error
	})
	if err != nil {
		return nil, wrapSQLiteError(err, "failed to create prompt version")
	}

	return &PromptRecord{
		ID:        row.ID,
		Arn:       localArn(row.ID),
		Name:      row.Name,
		Version:   snapshot.Version,
		CreatedAt: snapshot.CreatedAt,
	}, nil
}

func (c *SQLiteClient) GetPrompt(ctx context.Context, name string, version int) (*Variant, error) {
	var row promptRow
	if err := c.db.WithContext(ctx).First(&row, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Prompt: name, Version: version}
		}
		return nil, wrapSQLiteError(err, "failed to get prompt")
	}

	v, err := c.variant(ctx, row.ID, version)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			nf.Prompt = name
		}
		return nil, err
	}
	return v, nil
}

func (c *SQLiteClient) GetPromptByID(ctx context.Context, id string, version int) (*Variant, error) {
	return c.variant(ctx, id, version)
}

func (c *SQLiteClient) variant(ctx context.Context, id string, version int) (*Variant, error) {
	var snapshot versionRow
	if err := c.db.WithContext(ctx).First(&snapshot, "prompt_id = ? AND version = ?", id, version).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Prompt: id, Version: version}
		}
		return nil, wrapSQLiteError(err, "failed to get prompt")
	}

	v := snapshot.Variant
	return &v, nil
}

func (c *SQLiteClient) DeletePrompt(ctx context.Context, id string, version int) (*DeleteResult, error) {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if version != DraftVersion {
			res := tx.Where("prompt_id = ? AND version = ?", id, version).Delete(&versionRow{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return &NotFoundError{Prompt: id, Version: version}
			}
			return nil
		}

		res := tx.Where("id = ?", id).Delete(&promptRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Prompt: id, Version: version}
		}
		return tx.Where("prompt_id = ?", id).Delete(&versionRow{}).Error
	})
	if err != nil {
		return nil, wrapSQLiteError(err, "failed to delete prompt")
	}

	return &DeleteResult{ID: id, Version: version, Status: "DELETED"}, nil
}

func (c *SQLiteClient) ListPrompts(ctx context.Context, in ListInput) ([]PromptSummary, error) {
	query := c.db.WithContext(ctx).Model(&promptRow{}).Order("name ASC")
	if in.Name != "" {
		query = query.Where("name = ?", in.Name)
	}
	if in.PromptID != "" {
		query = query.Where("id = ?", in.PromptID)
	}
	if in.MaxResults > 0 {
		query = query.Limit(in.MaxResults)
	}

	var rows []promptRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapSQLiteError(err, "failed to list prompts")
	}

	out := make([]PromptSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, PromptSummary{
			ID:          row.ID,
			Arn:         localArn(row.ID),
			Name:        row.Name,
			Description: row.Description,
			Version:     row.LatestVersion,
			UpdatedAt:   row.UpdatedAt,
		})
	}

	return out, nil
}

// wrapSQLiteError leaves catalog errors untouched so callers can match them
func wrapSQLiteError(err error, msg string) error {
	var exists *AlreadyExistsError
	var notFound *NotFoundError
	if errors.As(err, &exists) || errors.As(err, &notFound) {
		return err
	}
	return errors.Wrap(err, msg)
}

func localArn(id string) string {
	return "arn:local:promptvault:prompt/" + id
}
