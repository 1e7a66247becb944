package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/overlay-backend/internal/domain"
)

var seedSeq atomic.Int64

func JSON(tb testing.TB, v any) datatypes.JSON {
	tb.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal fixture json: %v", err)
	}
	return datatypes.JSON(raw)
}

func SeedWidget(tb testing.TB, ctx context.Context, tx *gorm.DB, class string) *types.Widget {
	tb.Helper()
	w := &types.Widget{
		WidgetClass: class,
		Name:        fmt.Sprintf("widget-%d", seedSeq.Add(1)),
		Parameters:  datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Omit("Elements", "Dashboards").Create(w).Error; err != nil {
		tb.Fatalf("seed widget: %v", err)
	}
	return w
}

func SeedElement(tb testing.TB, ctx context.Context, tx *gorm.DB, widgetID uint, name string, et types.ElementType, props map[string]any) *types.Element {
	tb.Helper()
	if props == nil {
		props = map[string]any{}
	}
	e := &types.Element{
		WidgetID:    widgetID,
		Name:        name,
		ElementType: et,
		Enabled:     true,
		Properties:  JSON(tb, props),
		Behavior:    datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Omit("MediaAssets").Create(e).Error; err != nil {
		tb.Fatalf("seed element: %v", err)
	}
	return e
}

func SeedMedia(tb testing.TB, ctx context.Context, tx *gorm.DB, mimeType string) *types.Media {
	tb.Helper()
	n := seedSeq.Add(1)
	m := &types.Media{
		Filename:         fmt.Sprintf("media-%d.bin", n),
		OriginalFilename: fmt.Sprintf("upload-%d", n),
		MimeType:         mimeType,
		SizeBytes:        1024,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed media: %v", err)
	}
	return m
}

func SeedDashboard(tb testing.TB, ctx context.Context, tx *gorm.DB, active bool) *types.Dashboard {
	tb.Helper()
	d := &types.Dashboard{
		Name:     fmt.Sprintf("dashboard-%d", seedSeq.Add(1)),
		IsActive: active,
	}
	if err := tx.WithContext(ctx).Omit("Widgets").Create(d).Error; err != nil {
		tb.Fatalf("seed dashboard: %v", err)
	}
	return d
}
