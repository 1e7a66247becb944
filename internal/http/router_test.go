package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/overlay-backend/internal/data/repos"
	"github.com/yungbote/overlay-backend/internal/data/repos/testutil"
	types "github.com/yungbote/overlay-backend/internal/domain"
	httpH "github.com/yungbote/overlay-backend/internal/http/handlers"
	httpMW "github.com/yungbote/overlay-backend/internal/http/middleware"
	"github.com/yungbote/overlay-backend/internal/observability"
	"github.com/yungbote/overlay-backend/internal/realtime"
	"github.com/yungbote/overlay-backend/internal/services"
	"github.com/yungbote/overlay-backend/internal/widgets"
	"github.com/yungbote/overlay-backend/internal/widgets/alert"
	"github.com/yungbote/overlay-backend/internal/widgets/cards"
	"github.com/yungbote/overlay-backend/internal/widgets/catalog"
)

type testServer struct {
	engine  *gin.Engine
	db      *gorm.DB
	hub     *realtime.Hub
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	hub := realtime.NewHub(log)
	t.Cleanup(hub.Close)
	notify := realtime.NewNotifier(&realtime.HubEmitter{Hub: hub})
	metrics := observability.NewMetrics(0)

	widgetRepo := repos.NewWidgetRepo(db, log)
	elementRepo := repos.NewElementRepo(db, log)
	mediaRepo := repos.NewMediaRepo(db, log)
	assetRepo := repos.NewElementAssetRepo(db, log)
	dashboardRepo := repos.NewDashboardRepo(db, log)

	reg := widgets.NewRegistry()
	require.NoError(t, catalog.RegisterAll(reg))
	elements := services.NewElementService(db, log, elementRepo, mediaRepo, assetRepo)
	rt := widgets.NewRuntime(db, log, reg, widgetRepo, elementRepo, elements, notify)

	engine := NewRouter(RouterConfig{
		Log:              log,
		Metrics:          metrics,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, ""),
		HealthHandler:    httpH.NewHealthHandler(db),
		WidgetHandler:    httpH.NewWidgetHandler(services.NewWidgetService(db, log, rt, widgetRepo, metrics)),
		ElementHandler:   httpH.NewElementHandler(elements, notify),
		MediaHandler:     httpH.NewMediaHandler(services.NewMediaService(db, log, mediaRepo, assetRepo, t.TempDir()), 1920),
		DashboardHandler: httpH.NewDashboardHandler(services.NewDashboardService(db, log, dashboardRepo, widgetRepo, notify)),
		LiveHandler:      httpH.NewLiveHandler(log, hub),
	})
	return &testServer{engine: engine, db: db, hub: hub, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	out := map[string]any{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func (s *testServer) createWidget(t *testing.T, typeID string) (uint, map[string]any) {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/widgets", map[string]any{"type": typeID})
	require.Equal(t, http.StatusCreated, code, body)
	w := body["widget"].(map[string]any)
	return uint(w["id"].(float64)), w
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthcheck", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestWidgetRoutes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/widgets/types", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["types"], 3)

	code, body = s.do(t, http.MethodPost, "/api/widgets", map[string]any{"type": "NoSuchWidget"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "unknown_widget_type", errorCode(body))

	id, w := s.createWidget(t, alert.TypeID)
	assert.Equal(t, "Alert", w["name"])
	assert.Len(t, w["elements"], 2)

	code, body = s.do(t, http.MethodPatch, fmt.Sprintf("/api/widgets/%d", id), map[string]any{"name": "Sub alert"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Sub alert", body["widget"].(map[string]any)["name"])

	code, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/widgets/%d/features", id), nil)
	require.Equal(t, http.StatusOK, code, body)

	code, body = s.do(t, http.MethodGet, "/api/widgets", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["widgets"], 1)

	code, _ = s.do(t, http.MethodGet, "/api/widgets/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/widgets/%d", id), nil)
	require.Equal(t, http.StatusOK, code, body)
	code, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/widgets/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "widget_not_found", errorCode(body))
}

func TestExecuteErrorMapping(t *testing.T) {
	s := newTestServer(t)
	alertID, _ := s.createWidget(t, alert.TypeID)
	cardsID, _ := s.createWidget(t, cards.TypeID)

	code, body := s.do(t, http.MethodPost, fmt.Sprintf("/api/widgets/%d/execute", alertID), map[string]any{"feature": "play"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "play", body["feature"])

	cases := []struct {
		name     string
		widgetID uint
		body     map[string]any
		status   int
		code     string
	}{
		{"unknown feature", alertID, map[string]any{"feature": "explode"}, http.StatusNotFound, "unknown_feature"},
		{"base operation", alertID, map[string]any{"feature": "reset_playing"}, http.StatusBadRequest, "invalid_feature"},
		{"bad argument", alertID, map[string]any{"feature": "play", "params": map[string]any{"volume": 500}}, http.StatusBadRequest, "invalid_parameter"},
		{"failure inside feature", cardsID, map[string]any{"feature": "reveal_card", "params": map[string]any{"card": 11}}, http.StatusUnprocessableEntity, "feature_failed"},
		{"missing feature name", alertID, map[string]any{}, http.StatusBadRequest, "invalid_request"},
		{"missing widget", 9999, map[string]any{"feature": "play"}, http.StatusNotFound, "widget_not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := s.do(t, http.MethodPost, fmt.Sprintf("/api/widgets/%d/execute", tc.widgetID), tc.body)
			assert.Equal(t, tc.status, code, body)
			assert.Equal(t, tc.code, errorCode(body))
		})
	}

	var out bytes.Buffer
	require.NoError(t, s.metrics.WritePrometheus(&out))
	assert.Contains(t, out.String(), `overlay_feature_executions_total{widget_type="AlertWidget",feature="play",status="ok"} 1`)
}

func TestElementPatchRoute(t *testing.T) {
	s := newTestServer(t)
	id, w := s.createWidget(t, alert.TypeID)
	var imageID uint
	for _, raw := range w["elements"].([]any) {
		el := raw.(map[string]any)
		if el["name"] == alert.ImageElement {
			imageID = uint(el["id"].(float64))
		}
	}
	require.NotZero(t, imageID)

	path := fmt.Sprintf("/api/widgets/%d/elements/%d", id, imageID)
	code, body := s.do(t, http.MethodPatch, path, map[string]any{"properties": map[string]any{"opacity": 2}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"].(map[string]any)["details"])

	code, body = s.do(t, http.MethodPatch, path, map[string]any{"visible": true})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["element"].(map[string]any)["visible"])
}

func TestMediaInUseIsConflict(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	w := testutil.SeedWidget(t, ctx, s.db, alert.TypeID)
	el := testutil.SeedElement(t, ctx, s.db, w.ID, "banner", types.ElementImage, nil)

	code, body := s.do(t, http.MethodPost, "/api/media", map[string]any{
		"filename":  "logo.png",
		"mime_type": "image/png",
		"file_size": 2048,
		"width":     960,
		"height":    540,
	})
	require.Equal(t, http.StatusCreated, code, body)
	m := body["media"].(map[string]any)
	mediaID := uint(m["id"].(float64))
	assert.Equal(t, "/uploads/logo.png", m["url"])
	assert.InDelta(t, 0.5, m["width_fraction"], 1e-9)

	code, body = s.do(t, http.MethodPost, "/api/media", map[string]any{"filename": "logo-alt.png", "mime_type": "image/png"})
	require.Equal(t, http.StatusCreated, code, body)
	altID := uint(body["media"].(map[string]any)["id"].(float64))

	assignPath := fmt.Sprintf("/api/elements/%d/media", el.ID)
	code, body = s.do(t, http.MethodPost, assignPath, map[string]any{"media_id": altID})
	require.Equal(t, http.StatusOK, code, body)

	// without a replace flag the role's current media is swapped out
	code, body = s.do(t, http.MethodPost, assignPath, map[string]any{"media_id": mediaID})
	require.Equal(t, http.StatusOK, code, body)
	code, body = s.do(t, http.MethodGet, assignPath, nil)
	require.Equal(t, http.StatusOK, code, body)
	bindings := body["bindings"].([]any)
	require.Len(t, bindings, 1)
	assert.Equal(t, float64(mediaID), bindings[0].(map[string]any)["media_id"])

	code, body = s.do(t, http.MethodPost, assignPath, map[string]any{"media_id": altID, "replace": false})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "role_taken", errorCode(body))

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/media/%d", altID), nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/media/%d", mediaID), nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "media_in_use", errorCode(body))

	code, body = s.do(t, http.MethodDelete, fmt.Sprintf("/api/elements/%d/media", el.ID), nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, true, body["removed"])

	code, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/media/%d", mediaID), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCreateWidgetRejectsBadBoardParameters(t *testing.T) {
	s := newTestServer(t)
	for _, count := range []int{0, 41} {
		code, body := s.do(t, http.MethodPost, "/api/widgets", map[string]any{
			"type":       cards.TypeID,
			"parameters": map[string]any{"card_count": count},
		})
		assert.Equal(t, http.StatusBadRequest, code, "card_count %d", count)
		assert.Equal(t, "validation_failed", errorCode(body))
	}

	code, body := s.do(t, http.MethodGet, "/api/widgets", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Empty(t, body["widgets"])
}

func TestDashboardActivation(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, http.MethodGet, "/api/dashboards/active", nil)
	assert.Equal(t, http.StatusNotFound, code)

	ids := make([]uint, 0, 2)
	for _, name := range []string{"Just chatting", "Gameplay"} {
		code, body := s.do(t, http.MethodPost, "/api/dashboards", map[string]any{"name": name})
		require.Equal(t, http.StatusCreated, code, body)
		ids = append(ids, uint(body["dashboard"].(map[string]any)["id"].(float64)))
	}

	for _, id := range ids {
		code, body := s.do(t, http.MethodPost, fmt.Sprintf("/api/dashboards/%d/activate", id), nil)
		require.Equal(t, http.StatusOK, code, body)
	}
	code, body := s.do(t, http.MethodGet, "/api/dashboards/active", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, ids[1], body["dashboard"].(map[string]any)["id"])

	widgetID, _ := s.createWidget(t, alert.TypeID)
	code, body = s.do(t, http.MethodPost, fmt.Sprintf("/api/dashboards/%d/widgets/%d", ids[1], widgetID), nil)
	require.Equal(t, http.StatusOK, code, body)
	code, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/widgets?dashboard_id=%d", ids[1]), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["widgets"], 1)

	code, body = s.do(t, http.MethodPost, "/api/dashboards", map[string]any{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_name", errorCode(body))
}

func TestLiveStatsAndGroupValidation(t *testing.T) {
	s := newTestServer(t)
	code, body := s.do(t, http.MethodGet, "/api/live/stats", nil)
	require.Equal(t, http.StatusOK, code)
	conns := body["connections"].(map[string]any)
	assert.EqualValues(t, 0, conns[realtime.GroupOverlay])

	code, body = s.do(t, http.MethodGet, "/ws/Not%20A%20Group", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_group", errorCode(body))
}
