package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/theirongolddev/tripbudget/internal/auth"
	"github.com/theirongolddev/tripbudget/internal/estimator"
	"github.com/theirongolddev/tripbudget/internal/kv"
	"github.com/theirongolddev/tripbudget/internal/model"
	"github.com/theirongolddev/tripbudget/internal/trips"
)

type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()

	var mu sync.Mutex
	n := 0
	est := estimator.New(
		estimator.WithSource(zeroSource{}),
		estimator.WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			n++
			return fmt.Sprintf("trip_%d", n)
		}),
	)
	authSvc := auth.New(kv.NewMemory(), auth.WithDelay(0), auth.WithHashCost(bcrypt.MinCost))
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = "test-secret"
	}
	s := New(cfg, trips.NewStore(est), authSvc, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func do(t *testing.T, method, url, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

const parisBody = `{"destination":"Paris, France","budget":5000,"duration":"7","people":2,"month":"June"}`

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2, TokenSecret: "x"}, trips.NewStore(estimator.New()), nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPublishEvent_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := New(Config{EventsBuffer: 10, TokenSecret: "x"}, trips.NewStore(estimator.New()), nil, nil)
	ch := make(chan Event) // unbuffered, never read
	s.addSubscriber(ch)

	done := make(chan struct{})
	go func() {
		s.publishEvent(Event{ID: 1})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishEvent blocked on a slow subscriber")
	}
}

func TestEmit_ConcurrentIDsIncrease(t *testing.T) {
	const workers, rounds = 16, 50
	s := New(Config{EventsBuffer: workers * rounds, TokenSecret: "x"}, trips.NewStore(estimator.New()), nil, nil)
	ch := make(chan Event, workers*rounds)
	s.addSubscriber(ch)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range rounds {
				s.emit(EventTripCleared, nil)
			}
		}()
	}
	wg.Wait()

	s.mu.RLock()
	events := append([]Event(nil), s.events...)
	s.mu.RUnlock()
	require.Len(t, events, workers*rounds)
	for i, ev := range events {
		assert.EqualValues(t, i+1, ev.ID, "buffered event %d", i)
	}

	require.Len(t, ch, workers*rounds)
	for i := range workers * rounds {
		ev := <-ch
		assert.EqualValues(t, i+1, ev.ID, "delivered event %d", i)
	}
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	resp = do(t, http.MethodGet, ts.URL+"/healthz", "", requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
}

func TestCreateTrip(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "/v1/trips/trip_1", resp.Header.Get("Location"))

	plan := decode[model.TripPlan](t, resp)
	assert.Equal(t, "trip_1", plan.ID)
	assert.Equal(t, int64(2520), plan.TotalEstimated)
	assert.True(t, plan.IsSufficient)
	assert.Equal(t, model.Month(time.June), plan.Month)

	cur, ok := s.trips.Current()
	require.True(t, ok)
	assert.Equal(t, plan.ID, cur.ID)

	events := decode[[]Event](t, do(t, http.MethodGet, ts.URL+"/v1/events", ""))
	require.Len(t, events, 1)
	assert.Equal(t, EventTripCreated, events[0].Type)
	assert.Equal(t, int64(1), events[0].ID)
	require.NotNil(t, events[0].Trip)
	assert.Equal(t, "trip_1", events[0].Trip.ID)
}

func TestCreateTrip_Validation(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/v1/trips", `{"destination":" ","budget":0,"month":"Smarch"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[errorBody](t, resp)
	assert.Equal(t, "Destination is required", body.Fields["destination"])
	assert.Equal(t, "Please enter a valid budget", body.Fields["budget"])
	assert.Equal(t, "Please enter trip duration", body.Fields["duration"])
	assert.Equal(t, "Please enter number of travelers", body.Fields["people"])
	assert.Equal(t, "Please select a travel month", body.Fields["month"])
	assert.Equal(t, 0, s.trips.Len())

	resp = do(t, http.MethodPost, ts.URL+"/v1/trips", `{"budget":true}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTrip(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)

	resp := do(t, http.MethodGet, ts.URL+"/v1/trips/trip_1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Paris, France", decode[model.TripPlan](t, resp).Destination)

	resp = do(t, http.MethodGet, ts.URL+"/v1/trips/trip_404", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode[errorBody](t, resp).Error, "trip_404")
}

func TestListTrips(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp := do(t, http.MethodGet, ts.URL+"/v1/trips", "")
	assert.Empty(t, decode[[]model.TripPlan](t, resp))

	do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)
	do(t, http.MethodPost, ts.URL+"/v1/trips", `{"destination":"Tokyo, Japan","budget":"100","duration":3,"people":1,"month":"april"}`)

	list := decode[[]model.TripPlan](t, do(t, http.MethodGet, ts.URL+"/v1/trips", ""))
	require.Len(t, list, 2)
	assert.Equal(t, "trip_1", list[0].ID)
	assert.Equal(t, "trip_2", list[1].ID)

	list = decode[[]model.TripPlan](t, do(t, http.MethodGet, ts.URL+"/v1/trips?destination=japan", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "trip_2", list[0].ID)
}

func TestCurrentTrip_SelectAndClear(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp := do(t, http.MethodGet, ts.URL+"/v1/trips/current", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)
	do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)

	resp = do(t, http.MethodPut, ts.URL+"/v1/trips/current", `{"id":"trip_1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "trip_1", decode[model.TripPlan](t, resp).ID)

	resp = do(t, http.MethodPut, ts.URL+"/v1/trips/current", `{"id":"trip_missing"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "trip_1", decode[model.TripPlan](t, resp).ID)

	resp = do(t, http.MethodDelete, ts.URL+"/v1/trips/current", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodPut, ts.URL+"/v1/trips/current", `{"id":"trip_missing"}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	events := decode[[]Event](t, do(t, http.MethodGet, ts.URL+"/v1/events", ""))
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []string{EventTripCreated, EventTripCreated, EventTripSelected, EventTripCleared}, types)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.ID)
	}
}

func TestAuthFlow(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	resp := do(t, http.MethodPost, ts.URL+"/v1/auth/signup", `{"name":"","email":"bad","password":"123"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	fields := decode[errorBody](t, resp).Fields
	assert.Equal(t, "Name is required", fields["name"])
	assert.Equal(t, "Please enter a valid email", fields["email"])
	assert.Equal(t, "Password must be at least 6 characters", fields["password"])

	resp = do(t, http.MethodPost, ts.URL+"/v1/auth/signup", `{"name":"Ada Lovelace","email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	signed := decode[authResponse](t, resp)
	assert.True(t, signed.Success)
	require.NotEmpty(t, signed.Token)
	require.NotNil(t, signed.User)
	assert.Equal(t, "Ada Lovelace", signed.User.Name)

	resp = do(t, http.MethodPost, ts.URL+"/v1/auth/signup", `{"name":"Ada","email":"ada@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, auth.ErrEmailTaken, decode[authResponse](t, resp).Error)

	resp = do(t, http.MethodPost, ts.URL+"/v1/auth/login", `{"email":"ada@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, auth.ErrBadCredentials, decode[authResponse](t, resp).Error)

	resp = do(t, http.MethodPost, ts.URL+"/v1/auth/login", `{"email":"who@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, auth.ErrNoAccount, decode[authResponse](t, resp).Error)

	resp = do(t, http.MethodPost, ts.URL+"/v1/auth/login", `{"email":"ada@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := decode[authResponse](t, resp).Token

	resp = do(t, http.MethodGet, ts.URL+"/v1/me", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada@example.com", decode[model.User](t, resp).Email)

	resp = do(t, http.MethodGet, ts.URL+"/v1/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = do(t, http.MethodGet, ts.URL+"/v1/me", "", "Authorization", "Bearer forged")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	summary := decode[summaryResponse](t, do(t, http.MethodGet, ts.URL+"/v1/summary", "", "Authorization", "Bearer "+token))
	assert.Equal(t, "Ada", summary.Name)
	assert.Equal(t, "Welcome back, Ada", summary.Greeting)

	resp = do(t, http.MethodPost, ts.URL+"/v1/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	summary = decode[summaryResponse](t, do(t, http.MethodGet, ts.URL+"/v1/summary", ""))
	assert.Equal(t, "", summary.Name)
	assert.Equal(t, "Welcome back", summary.Greeting)
}

func TestSummaryStats(t *testing.T) {
	_, ts := newTestServer(t, Config{})
	do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)
	do(t, http.MethodPost, ts.URL+"/v1/trips", `{"destination":"Paris, France","budget":100,"duration":7,"people":2,"month":"June"}`)

	summary := decode[summaryResponse](t, do(t, http.MethodGet, ts.URL+"/v1/summary", ""))
	assert.Equal(t, 2, summary.Stats.TotalTrips)
	assert.Equal(t, 1, summary.Stats.Destinations)
	assert.Equal(t, 1, summary.Stats.Sufficient)
	assert.InDelta(t, 2480.0, summary.Stats.BudgetSaved, 1e-9)
}

func TestCORS(t *testing.T) {
	_, ts := newTestServer(t, Config{CORSOrigins: []string{"https://app.example.com"}})

	resp := do(t, http.MethodGet, ts.URL+"/v1/trips", "", "Origin", "https://app.example.com")
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = do(t, http.MethodGet, ts.URL+"/v1/trips", "", "Origin", "https://evil.example.com")
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStream(t *testing.T) {
	s, ts := newTestServer(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if name, ok := strings.CutPrefix(sc.Text(), "event: "); ok {
				events <- name
			}
		}
		close(events)
	}()

	next := func() string {
		select {
		case ev := <-events:
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for SSE event")
			return ""
		}
	}

	require.Equal(t, EventSnapshot, next())
	require.Eventually(t, func() bool { return s.subscriberCount() == 1 }, time.Second, 10*time.Millisecond)

	do(t, http.MethodPost, ts.URL+"/v1/trips", parisBody)
	assert.Equal(t, EventTripCreated, next())
	do(t, http.MethodDelete, ts.URL+"/v1/trips/current", "")
	assert.Equal(t, EventTripCleared, next())
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s := New(Config{TokenSecret: "x"}, trips.NewStore(estimator.New()), nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
