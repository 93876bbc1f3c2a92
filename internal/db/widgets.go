package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"proofpop/internal/widget"
)

type widgetRow struct {
	ID         string `db:"id"`
	SiteID     string `db:"site_id"`
	Name       string `db:"name"`
	TemplateID string `db:"template_id"`
	Settings   []byte `db:"settings"`
	Config     []byte `db:"config"`
}

const activeWidgetsQuery = `
	SELECT id, site_id, name, COALESCE(template_id, '') AS template_id,
		COALESCE(settings, '{}'::jsonb) AS settings,
		COALESCE(config, '{}'::jsonb) AS config
	FROM widgets
	WHERE site_id = $1 AND is_active = TRUE AND ($2 = '' OR id::text = $2)
	ORDER BY created_at ASC`

// ActiveWidgets returns the active widgets of a site, or only widgetID when
// it is not empty. A row whose JSON cannot be decoded keeps its identity
// and falls back to defaults.
func (s *Store) ActiveWidgets(ctx context.Context, siteID, widgetID string) ([]widget.Record, error) {
	var rows []widgetRow
	if err := s.db.SelectContext(ctx, &rows, activeWidgetsQuery, siteID, widgetID); err != nil {
		return nil, fmt.Errorf("failed to get widgets: %w", err)
	}

	records := make([]widget.Record, 0, len(rows))
	for _, row := range rows {
		r := widget.Record{
			ID:         row.ID,
			SiteID:     row.SiteID,
			Name:       row.Name,
			TemplateID: row.TemplateID,
		}
		if err := json.Unmarshal(row.Settings, &r.Columns); err != nil {
			slog.Warn("Ignoring malformed widget settings", "widget_id", row.ID, "error", err)
			r.Columns = widget.Columns{}
		}
		if err := json.Unmarshal(row.Config, &r.Config); err != nil {
			slog.Warn("Ignoring malformed widget config", "widget_id", row.ID, "error", err)
			r.Config = widget.LegacyConfig{}
		}
		records = append(records, r)
	}
	return records, nil
}
