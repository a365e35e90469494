package routes

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turanweb/turan/internal/brief"
	"github.com/turanweb/turan/internal/clock"
	"github.com/turanweb/turan/internal/events"
	"github.com/turanweb/turan/internal/funnel"
	"github.com/turanweb/turan/internal/handlers"
	"github.com/turanweb/turan/internal/leads"
	"github.com/turanweb/turan/internal/metrics"
	"github.com/turanweb/turan/internal/sessions"
	"github.com/turanweb/turan/internal/wizard"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string]sessions.Data
	touches map[string]int
}

func (m *memStore) Create(_ context.Context, d sessions.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[d.ID] = d
	return nil
}

func (m *memStore) Get(_ context.Context, sid string) (sessions.Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[sid]
	if !ok {
		return sessions.Data{}, sessions.ErrNotFound
	}
	return d, nil
}

func (m *memStore) Touch(_ context.Context, d sessions.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[d.ID] = d
	m.touches[d.ID]++
	return nil
}

func (m *memStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sid)
	return nil
}

type stubSubmitter struct {
	calls atomic.Int32
	got   brief.LeadBrief
}

func (s *stubSubmitter) Submit(_ context.Context, b brief.LeadBrief) leads.Outcome {
	s.calls.Add(1)
	s.got = b
	return leads.Ok(http.StatusCreated)
}

type stubFunnel struct{}

func (stubFunnel) Summary(context.Context) (funnel.Summary, error) {
	return funnel.Summary{Sessions: 3}, nil
}

type harness struct {
	srv      *httptest.Server
	client   *http.Client
	clk      *clock.Fake
	store    *memStore
	registry *wizard.Registry
	sub      *stubSubmitter
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ns, err := server.NewServer(&server.Options{Port: -1})
	require.NoError(t, err)
	ns.Start()
	t.Cleanup(ns.Shutdown)
	require.True(t, ns.ReadyForConnections(5*time.Second))
	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	reg := prometheus.NewRegistry()
	bus := events.NewBus(nc, metrics.NewWizard(reg), logger)
	h := &harness{
		clk:      clk,
		store:    &memStore{data: map[string]sessions.Data{}, touches: map[string]int{}},
		registry: wizard.NewRegistry(clk),
		sub:      &stubSubmitter{},
	}
	t.Cleanup(h.registry.Close)

	mux := chi.NewMux()
	AddRoutes(mux, Deps{
		Logger:   logger,
		Cookies:  sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"), false, 3600),
		Sessions: h.store,
		Registry: h.registry,
		NATS:     nc,
		Mount: handlers.NewMount(wizard.Options{
			Clock:     clk,
			Submitter: h.sub,
			Hooks:     bus.Hooks(),
			Logger:    logger,
		}),
		DefaultFlow: wizard.VariantPlayer,
		Gatherer:    reg,
		Funnel:      stubFunnel{},
		Admins:      map[string]string{"admin": "secret"},
	})
	h.srv = httptest.NewServer(mux)
	t.Cleanup(h.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	h.client = &http.Client{Jar: jar}
	return h
}

func (h *harness) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (h *harness) post(t *testing.T, path, signals string) (int, string) {
	t.Helper()
	resp, err := h.client.Post(h.srv.URL+path, "application/json", strings.NewReader(signals))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

// session returns the only live session.
func (h *harness) session(t *testing.T) *wizard.Session {
	t.Helper()
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	require.Len(t, h.store.data, 1)
	for sid := range h.store.data {
		ws, ok := h.registry.Get(sid)
		require.True(t, ok)
		return ws
	}
	return nil
}

func TestIndexMountsSession(t *testing.T) {
	h := newHarness(t)

	code, body := h.get(t, "/?flow=classic")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `data-step="name"`)
	assert.Contains(t, body, "/wizard/stream")

	st := h.session(t).Snapshot()
	assert.Equal(t, wizard.VariantClassic, st.Variant)
	assert.Equal(t, 8, st.MaxStep)

	base, err := url.Parse(h.srv.URL)
	require.NoError(t, err)
	cookies := h.client.Jar.Cookies(base)
	require.Len(t, cookies, 1)
	assert.Equal(t, sessions.CookieName, cookies[0].Name)
}

func TestReloadUnmountsPreviousSession(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")
	old := h.session(t)
	h.post(t, "/wizard/fields/name", `{"name":"Алмас"}`)
	h.post(t, "/wizard/advance", "{}")
	require.Equal(t, wizard.StepDemo, old.Snapshot().Kind)

	code, _ := h.get(t, "/")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, h.registry.Len())
	current := h.session(t)
	assert.NotEqual(t, old.ID(), current.ID())
	_, ok := h.registry.Get(old.ID())
	assert.False(t, ok)

	// The unmounted demo no longer runs its timers
	h.clk.Advance(3 * time.Second)
	assert.Equal(t, wizard.SubReveal, old.Snapshot().Sub)
	assert.Equal(t, wizard.StepName, current.Snapshot().Kind)
}

func TestActionsRefreshSessionRecord(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")
	ws := h.session(t)

	h.post(t, "/wizard/fields/name", `{"name":"Айгерім"}`)
	h.post(t, "/wizard/play", "{}")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	assert.Equal(t, 2, h.store.touches[ws.ID()])
}

func TestUnknownFlowFallsBackToDefault(t *testing.T) {
	h := newHarness(t)

	code, _ := h.get(t, "/?flow=nope")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, wizard.VariantPlayer, h.session(t).Snapshot().Variant)
}

func TestActionWithoutSessionRedirects(t *testing.T) {
	h := newHarness(t)

	code, body := h.post(t, "/wizard/advance", "{}")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "window.location")
	assert.Equal(t, 0, h.registry.Len())
}

func TestExpiredRecordRedirects(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")
	ws := h.session(t)
	require.NoError(t, h.store.Delete(context.Background(), ws.ID()))

	_, body := h.post(t, "/wizard/advance", "{}")
	assert.Contains(t, body, "window.location")
	_, ok := h.registry.Get(ws.ID())
	assert.False(t, ok)
}

func TestRemountsAfterRestart(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/?flow=classic")
	ws := h.session(t)
	h.registry.Remove(ws.ID())

	code, body := h.post(t, "/wizard/fields/name", `{"name":"Айгерім"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `id="wizard"`)

	again, ok := h.registry.Get(ws.ID())
	require.True(t, ok)
	assert.NotSame(t, ws, again)
	assert.Equal(t, wizard.VariantClassic, again.Snapshot().Variant)
	assert.Equal(t, "Айгерім", again.Snapshot().Brief.Name)
}

func TestRejectedActionRendersNotice(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	code, body := h.post(t, "/wizard/advance", "{}")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `id="notice"`)
	assert.Contains(t, body, "Алдымен осы қадамды аяқтаңыз")
	assert.Equal(t, 1, h.session(t).Snapshot().Step)
}

func TestMalformedActionIsBadRequest(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	code, _ := h.post(t, "/wizard/themes/first", "{}")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.post(t, "/wizard/fields/favouriteColour", `{"favouriteColour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.post(t, "/wizard/fields/name", `{"email":"a@b.kz"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPlayerFlowToSubmission(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")
	ws := h.session(t)

	h.post(t, "/wizard/fields/name", `{"name":"Айгерім"}`)
	_, body := h.post(t, "/wizard/advance", `{"name":"Айгерім"}`)
	assert.Contains(t, body, `data-step="demo"`)
	assert.Contains(t, body, `id="player-controls"`)

	h.post(t, "/wizard/forward", "{}")
	_, body = h.post(t, "/wizard/forward", "{}")
	assert.Equal(t, wizard.SubTransform, ws.Snapshot().Sub)
	assert.NotContains(t, body, `id="popup"`)

	h.clk.Advance(time.Minute)
	require.Equal(t, wizard.StepCallToAction, ws.Snapshot().Kind)

	_, body = h.post(t, "/wizard/advance", "{}")
	assert.Contains(t, body, `data-step="brief"`)

	h.post(t, "/wizard/fields/businessName", `{"businessName":"Alma Coffee"}`)
	h.post(t, "/wizard/choices/budgetRange/1", "{}")
	h.post(t, "/wizard/features/0", "{}")
	h.post(t, "/wizard/flags/hasLogo", "{}")
	h.post(t, "/wizard/sections/4", "{}")
	_, body = h.post(t, "/wizard/fields/email", `{"email":"aigerim@"}`)
	assert.Contains(t, body, "Email дұрыс емес")
	h.post(t, "/wizard/fields/email", `{"email":"aigerim@alma.kz"}`)
	h.post(t, "/wizard/fields/phone", `{"phone":"+7 700 123 45 67"}`)

	code, body := h.post(t, "/wizard/submit", "{}")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Рахмет, Айгерім!")
	assert.EqualValues(t, 1, h.sub.calls.Load())
	assert.Equal(t, "Alma Coffee", h.sub.got.BusinessName)
	assert.Equal(t, brief.BudgetRanges[1], h.sub.got.BudgetRange)
	assert.Equal(t, []string{brief.Features[0]}, h.sub.got.FeaturesNeeded)
	assert.True(t, h.sub.got.HasLogo)

	_, body = h.post(t, "/wizard/submit", "{}")
	assert.Contains(t, body, "Бриф жіберіліп қойған")
	assert.EqualValues(t, 1, h.sub.calls.Load())
}

func TestStreamFollowsSessionChanges(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.srv.URL+"/wizard/stream", nil)
	require.NoError(t, err)
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	lines := scanLines(resp.Body)
	waitForLine(t, lines, `data-step="name"`)

	h.post(t, "/wizard/fields/name", `{"name":"Айгерім"}`)
	h.post(t, "/wizard/advance", "{}")
	waitForLine(t, lines, `data-step="demo"`)

	// Timers firing without any request still reach the stream
	h.clk.Advance(3 * time.Second)
	waitForLine(t, lines, `id="popup"`)
}

func scanLines(r io.Reader) <-chan string {
	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return lines
}

func waitForLine(t *testing.T, lines <-chan string, needle string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			require.True(t, ok, "stream closed before %q", needle)
			if strings.Contains(line, needle) {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", needle)
		}
	}
}

func TestStreamFollowsRemountedSession(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")
	old := h.session(t)
	h.post(t, "/wizard/fields/name", `{"name":"Айгерім"}`)
	h.post(t, "/wizard/advance", "{}")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.srv.URL+"/wizard/stream", nil)
	require.NoError(t, err)
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	lines := scanLines(resp.Body)
	waitForLine(t, lines, `data-step="demo"`)

	// Reaped, then mounted again from the record at step 1
	h.registry.Remove(old.ID())
	h.post(t, "/wizard/fields/name", `{"name":"Айгерім"}`)
	again, ok := h.registry.Get(old.ID())
	require.True(t, ok)
	require.NotSame(t, old, again)

	waitForLine(t, lines, `data-step="name"`)
}

func TestAdminReportRequiresAuth(t *testing.T) {
	h := newHarness(t)

	code, _ := h.get(t, "/admin/funnel")
	assert.Equal(t, http.StatusUnauthorized, code)

	req, err := http.NewRequest(http.MethodGet, h.srv.URL+"/admin/funnel", nil)
	require.NoError(t, err)
	req.SetBasicAuth("admin", "secret")
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "3 sessions")
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	code, body := h.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "turan_wizard_steps_entered_total")
}
