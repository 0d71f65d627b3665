package repository

import (
	"context"

	"github.com/labstock/labstock-backend/internal/stock/domain"
	"github.com/labstock/labstock-backend/pkg/database"
)

// SettingsRepository is the key/value settings store
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value of a setting, or def when it is not stored
func (r *SettingsRepository) Get(ctx context.Context, name, def string) (string, error) {
	var setting domain.Setting
	found, err := database.GetByKey(ctx, r.db.Conn(ctx), Settings, &setting, "name", name)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return setting.Value, nil
}

// Set stores the value of a setting, creating it when missing
func (r *SettingsRepository) Set(ctx context.Context, name, value string) error {
	_, err := r.db.Conn(ctx).ExecContext(ctx, `
		INSERT INTO settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value
	`, name, value)
	return err
}

// List returns every stored setting
func (r *SettingsRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	var settings []*domain.Setting
	err := r.db.Conn(ctx).SelectContext(ctx, &settings, Settings.SelectSQL()+" ORDER BY name")
	return settings, err
}
