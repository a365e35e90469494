package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turanweb/turan/internal/brief"
)

func sampleBrief() brief.LeadBrief {
	return brief.LeadBrief{
		Name:           "Айгерім",
		BusinessName:   "Aru Coffee",
		Email:          "owner@aru.kz",
		Phone:          "+77771234567",
		SelectedTheme:  "ios26",
		WebsiteGoal:    "sales",
		FeaturesNeeded: []string{"Блог", "Карта"},
		HasLogo:        true,
		BudgetRange:    "500,000+ ₸",
		Deadline:       "1 ай",
	}
}

func TestNewPayloadEncodesFeaturesAsString(t *testing.T) {
	p, err := NewPayload(sampleBrief())
	require.NoError(t, err)
	assert.Equal(t, `["Блог","Карта"]`, p.FeaturesNeeded)
	assert.True(t, p.AgreedToTerms)

	empty, err := NewPayload(brief.LeadBrief{})
	require.NoError(t, err)
	assert.Equal(t, "[]", empty.FeaturesNeeded)
	assert.True(t, empty.AgreedToTerms)
}

func TestSubmitPostsCamelCaseBody(t *testing.T) {
	var got map[string]any
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, Path, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client(), nil)
	out := c.Submit(context.Background(), sampleBrief())

	require.True(t, out.OK())
	assert.Equal(t, http.StatusCreated, out.StatusCode)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "Aru Coffee", got["businessName"])
	assert.Equal(t, `["Блог","Карта"]`, got["featuresNeeded"])
	assert.Equal(t, true, got["agreedToTerms"])
	assert.Equal(t, true, got["hasLogo"])
	assert.Equal(t, false, got["hasPhotos"])
	assert.Equal(t, "500,000+ ₸", got["budgetRange"])
}

func TestSubmitFailureIsLoggedAndReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	out := NewClient(srv.URL, srv.Client(), logger).Submit(context.Background(), sampleBrief())

	assert.False(t, out.OK())
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, http.StatusUnprocessableEntity, out.StatusCode)
	assert.Contains(t, out.Reason, "422")
	assert.Contains(t, logs.String(), "error submitting brief")
}

func TestSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := NewClient(url, nil, slog.New(slog.NewJSONHandler(io.Discard, nil))).Submit(context.Background(), sampleBrief())
	assert.False(t, out.OK())
	assert.Zero(t, out.StatusCode)
	assert.NotEmpty(t, out.Reason)
}
