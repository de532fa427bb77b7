package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/slishow/internal/domain/entities"
)

// MockNavigator is a mock for the SlideNavigator port
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Index() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockNavigator) Count() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockNavigator) Next() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNavigator) Previous() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockNavigator) RequestIndex(n int) bool {
	args := m.Called(n)
	return args.Bool(0)
}

func (m *MockNavigator) State() entities.ControllerState {
	args := m.Called()
	return args.Get(0).(entities.ControllerState)
}

func TestHandleState(t *testing.T) {
	t.Run("returns controller state", func(t *testing.T) {
		engine := new(MockEngine)
		nav := new(MockNavigator)
		handler := NewNavigatorHandler(engine)

		state := entities.ControllerState{
			Index:    2,
			Count:    5,
			Autoplay: entities.AutoplayStopped,
		}
		engine.On("Navigator").Return(nav)
		nav.On("State").Return(state)

		req := httptest.NewRequest("GET", "/api/state", nil)
		w := httptest.NewRecorder()

		handler.HandleState(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var got entities.ControllerState
		err := json.Unmarshal(body, &got)
		require.NoError(t, err)
		assert.Equal(t, state, got)
	})

	t.Run("no controller", func(t *testing.T) {
		engine := new(MockEngine)
		handler := NewNavigatorHandler(engine)

		engine.On("Navigator").Return(nil)

		req := httptest.NewRequest("GET", "/api/state", nil)
		w := httptest.NewRecorder()

		handler.HandleState(w, req)

		resp := w.Result()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestHandleNavigate(t *testing.T) {
	setup := func(state entities.ControllerState) (*NavigatorHandler, *MockNavigator) {
		engine := new(MockEngine)
		nav := new(MockNavigator)
		engine.On("Navigator").Return(nav)
		nav.On("State").Return(state)
		return NewNavigatorHandler(engine), nav
	}

	t.Run("next accepted", func(t *testing.T) {
		handler, nav := setup(entities.ControllerState{Index: 1, Count: 3})
		nav.On("Next").Return(true)

		req := httptest.NewRequest("POST", "/api/navigate", strings.NewReader(`{"action":"next"}`))
		w := httptest.NewRecorder()

		handler.HandleNavigate(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var navResp NavigationResponse
		err := json.Unmarshal(body, &navResp)
		require.NoError(t, err)
		assert.True(t, navResp.Accepted)
		assert.Equal(t, 1, navResp.State.Index)

		nav.AssertExpectations(t)
	})

	t.Run("previous rejected", func(t *testing.T) {
		handler, nav := setup(entities.ControllerState{Index: 0, Count: 3})
		nav.On("Previous").Return(false)

		req := httptest.NewRequest("POST", "/api/navigate", strings.NewReader(`{"action":"previous"}`))
		w := httptest.NewRecorder()

		handler.HandleNavigate(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var navResp NavigationResponse
		err := json.Unmarshal(body, &navResp)
		require.NoError(t, err)
		assert.False(t, navResp.Accepted)

		nav.AssertExpectations(t)
	})

	t.Run("goto with index", func(t *testing.T) {
		handler, nav := setup(entities.ControllerState{Index: 4, Count: 5})
		nav.On("RequestIndex", 4).Return(true)

		req := httptest.NewRequest("POST", "/api/navigate", strings.NewReader(`{"action":"goto","index":4}`))
		w := httptest.NewRecorder()

		handler.HandleNavigate(w, req)

		resp := w.Result()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var navResp NavigationResponse
		err := json.Unmarshal(body, &navResp)
		require.NoError(t, err)
		assert.True(t, navResp.Accepted)
		assert.Equal(t, 4, navResp.State.Index)

		nav.AssertExpectations(t)
	})

	t.Run("invalid action", func(t *testing.T) {
		engine := new(MockEngine)
		handler := NewNavigatorHandler(engine)

		req := httptest.NewRequest("POST", "/api/navigate", strings.NewReader(`{"action":"teleport"}`))
		w := httptest.NewRecorder()

		handler.HandleNavigate(w, req)

		resp := w.Result()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		engine := new(MockEngine)
		handler := NewNavigatorHandler(engine)

		req := httptest.NewRequest("POST", "/api/navigate", strings.NewReader("not json"))
		w := httptest.NewRecorder()

		handler.HandleNavigate(w, req)

		resp := w.Result()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no controller", func(t *testing.T) {
		engine := new(MockEngine)
		handler := NewNavigatorHandler(engine)

		engine.On("Navigator").Return(nil)

		req := httptest.NewRequest("POST", "/api/navigate", strings.NewReader(`{"action":"next"}`))
		w := httptest.NewRecorder()

		handler.HandleNavigate(w, req)

		resp := w.Result()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestNavigatorRoutes(t *testing.T) {
	engine := new(MockEngine)
	nav := new(MockNavigator)
	engine.On("Navigator").Return(nav)
	nav.On("State").Return(entities.ControllerState{Index: 0, Count: 2})

	ts := httptest.NewServer(NewNavigatorHandler(engine).Routes())
	defer ts.Close()

	t.Run("state is GET only", func(t *testing.T) {
		resp, err := http.Post(ts.URL+"/api/state", "application/json", nil)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("navigate is POST only", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/navigate")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("state route serves JSON", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/state")
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	})
}
