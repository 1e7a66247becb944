package services

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/overlay-backend/internal/data/repos"
	"github.com/yungbote/overlay-backend/internal/data/repos/testutil"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/pointers"
	"github.com/yungbote/overlay-backend/internal/widgets"
	"github.com/yungbote/overlay-backend/internal/widgets/alert"
	"github.com/yungbote/overlay-backend/internal/widgets/catalog"
)

func newWidgetService(t *testing.T, f *fixture) WidgetService {
	t.Helper()
	log := testutil.Logger(t)
	reg := widgets.NewRegistry()
	require.NoError(t, catalog.RegisterAll(reg))
	rt := widgets.NewRuntime(f.db, log, reg, f.widgetRepo, repos.NewElementRepo(f.db, log), f.elements, f.notifier)
	return NewWidgetService(f.db, log, rt, f.widgetRepo, nil)
}

func elementNamed(t *testing.T, v widgets.InstanceView, name string) *widgets.ElementView {
	t.Helper()
	for _, el := range v.Elements {
		if el.Name == name {
			return el
		}
	}
	t.Fatalf("element %q not in view", name)
	return nil
}

func TestWidgetServiceCreateListAndTypes(t *testing.T) {
	f := newFixture(t)
	svc := newWidgetService(t, f)

	typesList := svc.ListTypes()
	require.Len(t, typesList, 3)
	assert.Equal(t, alert.TypeID, typesList[0].TypeID)

	d, err := f.dashboards.Create(f.dbc(), "Main", "")
	require.NoError(t, err)

	v, err := svc.Create(f.ctx, CreateWidgetInput{
		Type:         alert.TypeID,
		Parameters:   map[string]any{"duration_ms": 4000},
		DashboardIDs: []uint{d.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alert", v.Name)
	assert.Equal(t, "active", v.State)
	assert.EqualValues(t, 4000, v.Parameters["duration_ms"])
	assert.Len(t, v.Elements, 2)

	_, err = svc.Create(f.ctx, CreateWidgetInput{Type: "Nope"})
	assert.ErrorIs(t, err, widgets.ErrUnknownType)

	listed, err := svc.List(f.ctx, &d.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, v.ID, listed[0].ID)

	other := d.ID + 100
	listed, err = svc.List(f.ctx, &other)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestWidgetServiceExecuteAlertPlay(t *testing.T) {
	f := newFixture(t)
	svc := newWidgetService(t, f)
	v, err := svc.Create(f.ctx, CreateWidgetInput{Type: alert.TypeID, Name: "Follow alert"})
	require.NoError(t, err)

	out, err := svc.Execute(f.ctx, v.ID, "play", map[string]any{"volume": 50})
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.(map[string]any)["volume"])

	got, err := svc.Get(f.ctx, v.ID)
	require.NoError(t, err)
	img := elementNamed(t, got, alert.ImageElement)
	audio := elementNamed(t, got, alert.AudioElement)
	assert.True(t, img.Playing)
	assert.True(t, audio.Playing)

	props := map[string]any{}
	require.NoError(t, json.Unmarshal(audio.Properties, &props))
	assert.Equal(t, 0.5, props["volume"])
	assert.Equal(t, true, props["autoplay"])

	var kinds []string
	for _, e := range f.notifier.sent() {
		kinds = append(kinds, e.kind)
	}
	assert.Equal(t, []string{"element_hide", "element_hide", "element_show", "element_show"}, kinds)

	_, err = svc.Execute(f.ctx, v.ID, "reset_playing", nil)
	var invalid *types.InvalidFeatureError
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.Execute(f.ctx, v.ID, "play", map[string]any{"volume": 500})
	var execErr *types.ExecutionError
	assert.ErrorAs(t, err, &execErr)
}

func TestWidgetServiceUpdateElement(t *testing.T) {
	f := newFixture(t)
	svc := newWidgetService(t, f)
	v, err := svc.Create(f.ctx, CreateWidgetInput{Type: alert.TypeID})
	require.NoError(t, err)
	img := elementNamed(t, v, alert.ImageElement)

	_, err = svc.UpdateElement(f.ctx, v.ID, img.ID, widgets.ElementPatch{})
	assert.ErrorIs(t, err, types.ErrValidation)

	got, err := svc.UpdateElement(f.ctx, v.ID, img.ID, widgets.ElementPatch{
		Properties: map[string]any{"opacity": 0.4},
		Visible:    pointers.Ptr(true),
	})
	require.NoError(t, err)
	assert.True(t, got.Visible)
	props := map[string]any{}
	require.NoError(t, json.Unmarshal(got.Properties, &props))
	assert.Equal(t, 0.4, props["opacity"])
	assert.Equal(t, 100.0, props["z_index"])

	before := len(f.notifier.sent())
	_, err = svc.UpdateElement(f.ctx, v.ID, img.ID, widgets.ElementPatch{
		Visible:    pointers.Ptr(false),
		Properties: map[string]any{"opacity": 3},
	})
	assert.ErrorIs(t, err, types.ErrValidation)
	assert.Len(t, f.notifier.sent(), before)

	got2, err := svc.Get(f.ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, elementNamed(t, got2, alert.ImageElement).Visible, "rejected patch leaves the element as it was")

	_, err = svc.UpdateElement(f.ctx, v.ID, 99999, widgets.ElementPatch{Visible: pointers.Ptr(true)})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestWidgetServiceUpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	svc := newWidgetService(t, f)
	v, err := svc.Create(f.ctx, CreateWidgetInput{Type: alert.TypeID})
	require.NoError(t, err)

	name := "Raid alert"
	got, err := svc.Update(f.ctx, v.ID, UpdateWidgetInput{Name: &name, Parameters: map[string]any{"volume": 20}})
	require.NoError(t, err)
	assert.Equal(t, "Raid alert", got.Name)
	assert.EqualValues(t, 20, got.Parameters["volume"])
	assert.EqualValues(t, 2500, got.Parameters["duration_ms"])

	blank := " "
	_, err = svc.Update(f.ctx, v.ID, UpdateWidgetInput{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidName)

	features, err := svc.Features(f.ctx, v.ID)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, "play", features[0].MethodName)

	require.NoError(t, svc.Delete(f.ctx, v.ID))
	_, err = svc.Get(f.ctx, v.ID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(f.ctx, v.ID), types.ErrNotFound)
}

func TestWidgetServiceSerializesExecuteOnOneWidget(t *testing.T) {
	f := newFixture(t)
	svc := newWidgetService(t, f)
	v, err := svc.Create(f.ctx, CreateWidgetInput{Type: alert.TypeID})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Execute(f.ctx, v.ID, "play", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, f.notifier.sent(), 8*4)

	svc.(*widgetService).mu.Lock()
	assert.Empty(t, svc.(*widgetService).locks)
	svc.(*widgetService).mu.Unlock()
}

func TestWidgetLockReleasedAfterFailedCall(t *testing.T) {
	f := newFixture(t)
	svc := newWidgetService(t, f)
	ws := svc.(*widgetService)

	_, err := svc.Execute(f.ctx, 4242, "play", nil)
	assert.ErrorIs(t, err, types.ErrNotFound)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	assert.Empty(t, ws.locks)
}
