package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/auth"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/services"
	"github.com/omarmfouad25/travel-agency-dashboard/internal/store/storetest"
)

const itineraryJSON = `{"name":"Lisbon Weekend","country":"Portugal","duration":2,
"location":{"city":"Lisbon","coordinates":[38.72,-9.14]},
"itinerary":[{"day":1,"location":"Alfama","activities":[{"time":"Morning","description":"Tram 28"}]},
{"day":2,"location":"Belem","activities":[{"time":"Noon","description":"Pasteis"}]}]}`

type stubGen struct {
	out    string
	err    error
	calls  atomic.Int32
	prompt atomic.Value
}

func (g *stubGen) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	g.prompt.Store(prompt)
	return g.out, g.err
}

type stubImages struct {
	calls atomic.Int32
	query atomic.Value
}

func (s *stubImages) Search(_ context.Context, q string) []string {
	s.calls.Add(1)
	s.query.Store(q)
	return []string{"https://img/1"}
}

type stubHealth struct{ ok bool }

func (s stubHealth) IsHealthy() bool { return s.ok }
func (s stubHealth) Components() map[string]bool { return map[string]bool{"store": s.ok} }

type env struct {
	srv    *httptest.Server
	mem    *storetest.Memory
	gen    *stubGen
	images *stubImages
}

func newEnv(t *testing.T, authz auth.Authorizer) *env {
	t.Helper()
	e := &env{mem: storetest.NewMemory(), gen: &stubGen{out: "```json\n" + itineraryJSON + "\n```"}, images: &stubImages{}}
	log := zerolog.Nop()
	trips := services.NewTripService(services.TripDeps{Store: e.mem, Generator: e.gen, Images: e.images}, log)
	users := services.NewUserService(e.mem, log)
	e.srv = httptest.NewServer(NewRouter(RouterDeps{
		Trips: trips, Users: users, Health: stubHealth{ok: true}, Authorizer: authz,
	}, log))
	t.Cleanup(e.srv.Close)
	return e
}

func staticAuth(t *testing.T) auth.Authorizer {
	t.Helper()
	a, err := auth.NewStaticAuthorizer("alice-token=alice:user,bob-token=bob:user,admin-token=root:admin")
	require.NoError(t, err)
	return a
}

func (e *env) do(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func createBody(userID string, interests string) string {
	return `{"country":"Portugal","numberOfDays":2,"travelStyle":"Relaxed","interests":` + interests +
		`,"budget":"Mid-range","groupType":"Friends","userId":"` + userID + `"}`
}

func decodeMap(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}

func TestCreateTrip_Success(t *testing.T) {
	e := newEnv(t, nil)
	resp, body := e.do(t, http.MethodPost, "/api/create-trip", "", createBody("u1", `["food"]`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	m := decodeMap(t, body)
	id, _ := m["id"].(string)
	require.NotEmpty(t, id)
	assert.Len(t, m, 1)
	assert.Equal(t, 1, e.mem.TripCount())

	resp, body = e.do(t, http.MethodGet, "/api/trips/"+id, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view TripView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "u1", view.UserID)
	assert.Equal(t, []string{"https://img/1"}, view.ImageURLs)
	assert.Contains(t, string(view.TripDetails), "Lisbon Weekend")
}

func TestCreateTrip_StringInterestEqualsList(t *testing.T) {
	single := newEnv(t, nil)
	resp, body := single.do(t, http.MethodPost, "/api/create-trip", "", createBody("u1", `"food"`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	list := newEnv(t, nil)
	resp, body = list.do(t, http.MethodPost, "/api/create-trip", "", createBody("u1", `["food"]`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	assert.Equal(t, list.gen.prompt.Load(), single.gen.prompt.Load())
	assert.Equal(t, list.images.query.Load(), single.images.query.Load())
	assert.Equal(t, "Portugal food Relaxed", single.images.query.Load())
}

func TestCreateTrip_MissingFields(t *testing.T) {
	e := newEnv(t, nil)
	resp, body := e.do(t, http.MethodPost, "/api/create-trip", "", `{"country":"Portugal","numberOfDays":2}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", decodeMap(t, body)["error"])
	assert.Zero(t, e.gen.calls.Load())
	assert.Zero(t, e.images.calls.Load())
	assert.Zero(t, e.mem.Calls)
}

func TestCreateTrip_BadInput(t *testing.T) {
	e := newEnv(t, nil)
	for name, body := range map[string]string{
		"not json": `{"country":`,
		"array":    `[1,2]`,
		"bad days": `{"numberOfDays":"many"}`,
		"empty":    ``,
	} {
		resp, b := e.do(t, http.MethodPost, "/api/create-trip", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
		assert.Equal(t, "Invalid JSON", decodeMap(t, b)["error"], name)
	}

	resp, b := e.do(t, http.MethodPost, "/api/create-trip", "",
		strings.Replace(createBody("u1", `["food"]`), `"numberOfDays":2`, `"numberOfDays":11`, 1))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeMap(t, b)["error"], "between 1 and 10")
	assert.Zero(t, e.gen.calls.Load())
}

func TestCreateTrip_UpstreamFailures(t *testing.T) {
	e := newEnv(t, nil)
	e.gen.err = errors.New("model overloaded")
	resp, body := e.do(t, http.MethodPost, "/api/create-trip", "", createBody("u1", `["food"]`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeMap(t, body)["error"], "model overloaded")

	e.gen.err = nil
	e.gen.out = "I'd rather not."
	resp, _ = e.do(t, http.MethodPost, "/api/create-trip", "", createBody("u1", `["food"]`))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Zero(t, e.mem.TripCount())
}

func TestCreateTrip_Auth(t *testing.T) {
	e := newEnv(t, staticAuth(t))

	resp, _ := e.do(t, http.MethodPost, "/api/create-trip", "", createBody("alice", `["food"]`))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/create-trip", "nope", createBody("alice", `["food"]`))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/create-trip", "bob-token", createBody("alice", `["food"]`))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, e.gen.calls.Load())

	resp, body := e.do(t, http.MethodPost, "/api/create-trip", "alice-token", createBody("", `["food"]`))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	id := decodeMap(t, body)["id"].(string)

	resp, _ = e.do(t, http.MethodGet, "/api/trips/"+id, "bob-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/trips/"+id, "alice-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/trips/"+id, "admin-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthIsPublic(t *testing.T) {
	e := newEnv(t, staticAuth(t))
	resp, body := e.do(t, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decodeMap(t, body)["status"])
}

func TestListTrips(t *testing.T) {
	e := newEnv(t, staticAuth(t))
	for _, tok := range []string{"alice-token", "alice-token", "bob-token"} {
		resp, _ := e.do(t, http.MethodPost, "/api/create-trip", tok, createBody("", `["food"]`))
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := e.do(t, http.MethodGet, "/api/trips", "alice-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, decodeMap(t, body)["total"])

	resp, _ = e.do(t, http.MethodGet, "/api/trips?userId=bob", "alice-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/trips?limit=1", "admin-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := decodeMap(t, body)
	assert.EqualValues(t, 3, m["total"])
	assert.Len(t, m["trips"], 1)

	resp, _ = e.do(t, http.MethodGet, "/api/trips?limit=abc", "admin-token", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTrip_NotFound(t *testing.T) {
	e := newEnv(t, nil)
	resp, _ := e.do(t, http.MethodGet, "/api/trips/missing", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCalendarEndpoint(t *testing.T) {
	e := newEnv(t, nil)
	_, body := e.do(t, http.MethodPost, "/api/create-trip", "", createBody("u1", `["food"]`))
	id := decodeMap(t, body)["id"].(string)

	resp, body := e.do(t, http.MethodGet, "/api/trips/"+id+"/calendar.ics?start=2026-05-01", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar"))
	assert.Contains(t, string(body), "Day 1: Alfama")
	assert.Contains(t, string(body), "20260502")

	resp, _ = e.do(t, http.MethodGet, "/api/trips/"+id+"/calendar.ics?start=May", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	e := newEnv(t, staticAuth(t))
	_, body := e.do(t, http.MethodPost, "/api/create-trip", "alice-token", createBody("", `["food"]`))
	id := decodeMap(t, body)["id"].(string)

	resp, _ := e.do(t, http.MethodGet, "/api/admin/trips/export.csv", "alice-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/admin/trips/export.csv", "admin-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))
	assert.Contains(t, string(body), id)

	resp, _ = e.do(t, http.MethodGet, "/api/admin/trips/search?q=lisbon", "admin-token", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/api/admin/trips/"+id, "alice-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodDelete, "/api/admin/trips/"+id, "admin-token", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = e.do(t, http.MethodDelete, "/api/admin/trips/"+id, "admin-token", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUsersEndpoints(t *testing.T) {
	e := newEnv(t, staticAuth(t))

	resp, body := e.do(t, http.MethodPost, "/api/users", "alice-token", `{"email":"alice@example.com","name":"Alice"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var u model.User
	require.NoError(t, json.Unmarshal(body, &u))
	assert.Equal(t, "alice", u.UserID)
	assert.Equal(t, model.UserStatusUser, u.Status)

	resp, _ = e.do(t, http.MethodPost, "/api/users", "alice-token", `{"email":"alice@example.com","status":"admin"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/api/users", "alice-token", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = e.do(t, http.MethodGet, "/api/users/alice", "bob-token", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/users/alice", "alice-token", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, http.MethodGet, "/api/users/bob", "bob-token", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = e.do(t, http.MethodGet, "/api/admin/users", "admin-token", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decodeMap(t, body)["total"])
}

func TestAuthDisabled_IgnoresAuthorizationHeader(t *testing.T) {
	e := newEnv(t, nil)
	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "whatever"} {
		req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/create-trip", strings.NewReader(createBody("u1", `["food"]`)))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", header)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, header)
	}

	s := newEnv(t, staticAuth(t))
	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/api/trips", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
