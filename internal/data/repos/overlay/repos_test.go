package overlay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/overlay-backend/internal/data/repos/testutil"
	types "github.com/yungbote/overlay-backend/internal/domain"
	"github.com/yungbote/overlay-backend/internal/platform/dbctx"
)

func TestDashboardActivateReturnsPrevious(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewDashboardRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	a := testutil.SeedDashboard(t, ctx, tx, true)
	b := testutil.SeedDashboard(t, ctx, tx, false)

	prev, err := repo.Activate(dbc, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID}, prev)

	active, err := repo.GetActive(dbc)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, b.ID, active.ID)

	prev, err = repo.Activate(dbc, b.ID)
	require.NoError(t, err)
	assert.Empty(t, prev, "re-activating changes nothing")

	changed, err := repo.Deactivate(dbc, a.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	changed, err = repo.Deactivate(dbc, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	active, err = repo.GetActive(dbc)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestElementAssetRoleUniqueness(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewElementAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	w := testutil.SeedWidget(t, ctx, tx, "AlertWidget")
	el := testutil.SeedElement(t, ctx, tx, w.ID, "banner", types.ElementImage, nil)
	m1 := testutil.SeedMedia(t, ctx, tx, "image/png")
	m2 := testutil.SeedMedia(t, ctx, tx, "audio/mpeg")

	_, err := repo.Create(dbc, &types.ElementAsset{ElementID: el.ID, MediaID: m1.ID, Role: "image"})
	require.NoError(t, err)
	_, err = repo.Create(dbc, &types.ElementAsset{ElementID: el.ID, MediaID: m2.ID, Role: "sound"})
	require.NoError(t, err)

	got, err := repo.GetByElementAndRole(dbc, el.ID, "image")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m1.ID, got.MediaID)

	missing, err := repo.GetByElementAndRole(dbc, el.ID, "thumbnail")
	require.NoError(t, err)
	assert.Nil(t, missing)

	n, err := repo.CountByMedia(dbc, m1.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	removed, err := repo.DeleteByElementAndRole(dbc, el.ID, "image")
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	removed, err = repo.DeleteByElementAndRole(dbc, el.ID, "image")
	require.NoError(t, err)
	assert.EqualValues(t, 0, removed)

	all, err := repo.GetByElement(dbc, el.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "sound", all[0].Role)
}

func TestWidgetDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	widgets := NewWidgetRepo(db, log)
	elements := NewElementRepo(db, log)
	assets := NewElementAssetRepo(db, log)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	d := testutil.SeedDashboard(t, ctx, tx, false)
	w := testutil.SeedWidget(t, ctx, tx, "AlertWidget")
	require.NoError(t, widgets.AttachDashboards(dbc, w.ID, []uint{d.ID, d.ID}))
	el := testutil.SeedElement(t, ctx, tx, w.ID, "banner", types.ElementImage, nil)
	m := testutil.SeedMedia(t, ctx, tx, "image/png")
	_, err := assets.Create(dbc, &types.ElementAsset{ElementID: el.ID, MediaID: m.ID, Role: "image"})
	require.NoError(t, err)

	listed, err := widgets.ListByDashboard(dbc, d.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, widgets.Delete(dbc, w.ID))

	got, err := widgets.GetByID(dbc, w.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	els, err := elements.ListByWidget(dbc, w.ID)
	require.NoError(t, err)
	assert.Empty(t, els)
	n, err := assets.CountByMedia(dbc, m.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	listed, err = widgets.ListByDashboard(dbc, d.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestMediaMissingDimensions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewMediaRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	img := testutil.SeedMedia(t, ctx, tx, "image/png")
	testutil.SeedMedia(t, ctx, tx, "audio/mpeg")

	rows, err := repo.ListMissingDimensions(dbc, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, img.ID, rows[0].ID)

	require.NoError(t, repo.UpdateDimensions(dbc, img.ID, 100, 50))
	rows, err = repo.ListMissingDimensions(dbc, 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	byName, err := repo.GetByFilename(dbc, img.Filename)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, 100, *byName.Width)
}
