package mergeapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scene-merge/core/storage/mocks"
	"scene-merge/feature/mergeapi"
)

const baseSnapshot = `{
  "name": "base.v1",
  "entities": [
    {
      "name": "lamp_1",
      "key_values": [
        {"key": "classname", "value": "light"},
        {"key": "origin", "value": "0 0 0"}
      ]
    }
  ]
}`

const sourceSnapshot = `{
  "name": "source.v1",
  "entities": [
    {
      "name": "lamp_1",
      "key_values": [
        {"key": "classname", "value": "light"},
        {"key": "origin", "value": "8 0 0"}
      ]
    },
    {
      "name": "lamp_2",
      "key_values": [{"key": "classname", "value": "light"}]
    }
  ]
}`

const targetSnapshot = `{
  "name": "target.v1",
  "entities": [
    {
      "name": "lamp_1",
      "key_values": [
        {"key": "classname", "value": "light"},
        {"key": "origin", "value": "0 0 8"}
      ]
    }
  ]
}`

const baseToSource = `{
  "base": "base.v1",
  "other": "source.v1",
  "entities": [
    {
      "name": "lamp_1",
      "kind": "modified",
      "key_values": [{"key": "origin", "value": "8 0 0", "kind": "changed"}]
    },
    {"name": "lamp_2", "kind": "added"}
  ]
}`

const baseToTarget = `{
  "base": "base.v1",
  "other": "target.v1",
  "entities": [
    {
      "name": "lamp_1",
      "kind": "modified",
      "key_values": [{"key": "origin", "value": "0 0 8", "kind": "changed"}]
    }
  ]
}`

func setupApp(t *testing.T) (*fiber.App, *mocks.Client) {
	mockClient := new(mocks.Client)
	objects := map[string]string{
		"base.json":        baseSnapshot,
		"source.json":      sourceSnapshot,
		"target.json":      targetSnapshot,
		"base-source.json": baseToSource,
		"base-target.json": baseToTarget,
	}
	for name, body := range objects {
		mockClient.On("GetObject", mock.Anything, "snapshots", name, mock.Anything).
			Return(io.NopCloser(strings.NewReader(body)), nil)
	}

	app := fiber.New()
	feature := mergeapi.NewFeature(mockClient, "snapshots", zap.NewNop(), nil)
	require.NoError(t, feature.Load(app))
	return app, mockClient
}

func createSession(t *testing.T, app *fiber.App) mergeapi.SessionInfo {
	body := `{
	  "base": "base.json",
	  "source": "source.json",
	  "target": "target.json",
	  "base_to_source": "base-source.json",
	  "base_to_target": "base-target.json"
	}`
	req := httptest.NewRequest("POST", "/merge/sessions/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var info mergeapi.SessionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	return info
}

func TestHandleCreateSession(t *testing.T) {
	app, _ := setupApp(t)
	info := createSession(t, app)

	assert.NotEmpty(t, info.ID)
	assert.Equal(t, "base.v1", info.BaseName)
	assert.Equal(t, "source.v1", info.SourceName)
	assert.Equal(t, "target.v1", info.TargetName)
	// lamp_2 addition plus the conflicting origin change on lamp_1.
	assert.Equal(t, 2, info.Summary.Total)
	assert.Equal(t, 1, info.Summary.Conflicts)
}

func TestHandleCreateSession_MissingFields(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("POST", "/merge/sessions/", strings.NewReader(`{"base": "base.json"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleListActions(t *testing.T) {
	app, _ := setupApp(t)
	info := createSession(t, app)

	req := httptest.NewRequest("GET", "/merge/sessions/"+info.ID+"/actions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Actions []mergeapi.ActionInfo `json:"actions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Len(t, payload.Actions, 2)

	var conflict *mergeapi.ActionInfo
	for i := range payload.Actions {
		if payload.Actions[i].Conflict {
			conflict = &payload.Actions[i]
		}
	}
	require.NotNil(t, conflict)
	assert.Equal(t, "key_value_conflict", conflict.Kind)
	assert.Equal(t, "pending", conflict.Decision)
}

func TestHandleListActions_UnknownSession(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/merge/sessions/nope/actions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDecideAndApply(t *testing.T) {
	app, _ := setupApp(t)
	info := createSession(t, app)

	// Find the conflict action.
	req := httptest.NewRequest("GET", "/merge/sessions/"+info.ID+"/actions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var payload struct {
		Actions []mergeapi.ActionInfo `json:"actions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	var conflictID string
	for _, a := range payload.Actions {
		if a.Conflict {
			conflictID = a.ID
		}
	}
	require.NotEmpty(t, conflictID)

	// Accept the conflicting origin change.
	req = httptest.NewRequest("POST",
		"/merge/sessions/"+info.ID+"/actions/"+conflictID+"/decision",
		strings.NewReader(`{"decision": "accepted"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// Apply and inspect the merged snapshot.
	req = httptest.NewRequest("POST", "/merge/sessions/"+info.ID+"/apply", bytes.NewReader(nil))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result mergeapi.ApplyResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Applied)
	assert.Zero(t, result.Skipped)

	require.NotNil(t, result.Snapshot)
	names := make(map[string]int, len(result.Snapshot.Entities))
	for i, e := range result.Snapshot.Entities {
		names[e.Name] = i
	}
	assert.Contains(t, names, "lamp_2")

	lamp1 := result.Snapshot.Entities[names["lamp_1"]]
	var origin string
	for _, kv := range lamp1.KeyValues {
		if kv.Key == "origin" {
			origin = kv.Value
		}
	}
	assert.Equal(t, "8 0 0", origin)
}

func TestHandleApply_SaveToUploadsSnapshot(t *testing.T) {
	app, mockClient := setupApp(t)
	info := createSession(t, app)

	mockClient.On("PutObject", mock.Anything, "snapshots", "merged.json",
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{Bucket: "snapshots", Key: "merged.json"}, nil)

	req := httptest.NewRequest("POST", "/merge/sessions/"+info.ID+"/apply",
		strings.NewReader(`{"accept_conflicts": true, "save_to": "merged.json"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	mockClient.AssertCalled(t, "PutObject", mock.Anything, "snapshots", "merged.json",
		mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSetDecision_InvalidDecision(t *testing.T) {
	app, _ := setupApp(t)
	info := createSession(t, app)

	req := httptest.NewRequest("POST",
		"/merge/sessions/"+info.ID+"/actions/whatever/decision",
		strings.NewReader(`{"decision": "maybe"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleApply_PendingConflictIsSkipped(t *testing.T) {
	app, _ := setupApp(t)
	info := createSession(t, app)

	req := httptest.NewRequest("POST", "/merge/sessions/"+info.ID+"/apply", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result mergeapi.ApplyResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Applied)
	assert.Equal(t, 1, result.Skipped)

	// The target keeps its own origin value.
	for _, e := range result.Snapshot.Entities {
		if e.Name != "lamp_1" {
			continue
		}
		for _, kv := range e.KeyValues {
			if kv.Key == "origin" {
				assert.Equal(t, "0 0 8", kv.Value)
			}
		}
	}
}
