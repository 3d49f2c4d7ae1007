package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stridesync/internal/shared/config"
	"stridesync/internal/shared/errors"
)

func testConfig() config.StravaConfig {
	return config.StravaConfig{
		ClientID:     "12345",
		ClientSecret: "secret",
		RedirectURL:  "https://app.example.com/integrations/strava/callback",
	}
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newClient(testConfig(), srv.URL+"/oauth", srv.URL+"/api/v3"), srv
}

func TestAuthorizationURL(t *testing.T) {
	client := NewClient(testConfig())

	rawURL := client.AuthorizationURL("42")
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)

	q := parsed.Query()
	assert.Equal(t, "12345", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "https://app.example.com/integrations/strava/callback", q.Get("redirect_uri"))
	assert.Equal(t, "read,activity:read_all", q.Get("scope"))
	assert.Equal(t, "42", q.Get("state"))
	assert.NotContains(t, rawURL, "secret")
}

func TestExchangeCode_Success(t *testing.T) {
	expiresIn := int64(6 * 3600)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"access_token": "access-1",
			"refresh_token": "refresh-1",
			"expires_in": %d,
			"token_type": "Bearer",
			"athlete": {"id": 9001}
		}`, expiresIn)
	}))

	grant, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)

	assert.Equal(t, "access-1", grant.AccessToken)
	assert.Equal(t, "refresh-1", grant.RefreshToken)
	assert.Equal(t, "9001", grant.AthleteID)
	assert.InDelta(t, time.Now().Unix()+expiresIn, grant.ExpiresAt, 60)
}

func TestExchangeCode_Rejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message": "Bad Request", "errors": [{"code": "invalid"}]}`)
	}))

	_, err := client.ExchangeCode(context.Background(), "bad-code")
	require.Error(t, err)
	assert.True(t, errors.IsProviderAuthError(err))
}

func TestRefreshToken_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-old", r.Form.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"access_token": "access-2",
			"refresh_token": "refresh-2",
			"expires_in": 21600,
			"token_type": "Bearer"
		}`)
	}))

	grant, err := client.RefreshToken(context.Background(), "refresh-old")
	require.NoError(t, err)

	assert.Equal(t, "access-2", grant.AccessToken)
	assert.Equal(t, "refresh-2", grant.RefreshToken)
}

func TestRefreshToken_Revoked(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message": "Bad Request", "errors": [{"field": "refresh_token", "code": "invalid"}]}`)
	}))

	_, err := client.RefreshToken(context.Background(), "revoked")
	require.Error(t, err)
	assert.True(t, errors.IsProviderAuthError(err))
	assert.True(t, errors.IsTerminal(err))
}

func TestListActivities_Paginates(t *testing.T) {
	pages := map[string][]activityPayload{
		"1": make([]activityPayload, perPage),
		"2": {
			{ID: 777, Name: "Morning Run", SportType: "Run", Distance: 5000, MovingTime: 1500, StartDate: "2026-08-20T06:30:00Z"},
		},
	}
	for i := range pages["1"] {
		pages["1"][i] = activityPayload{ID: int64(i + 1), SportType: "Run"}
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/athlete/activities", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.URL.Query().Get("after"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(pages[r.URL.Query().Get("page")]))
	}))

	activities, err := client.ListActivities(context.Background(), "access-1", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	require.Len(t, activities, perPage+1)
	last := activities[perPage]
	assert.Equal(t, "777", last.ID)
	assert.Equal(t, "Run", last.SportType)
	assert.Equal(t, 5000.0, last.Distance)
}

func TestListActivities_RateLimited(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.ListActivities(context.Background(), "access-1", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsProviderRateLimitError(err))
	assert.True(t, errors.IsTransient(err))
}

func TestListActivities_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListActivities(context.Background(), "stale", time.Now())
	require.Error(t, err)
	assert.True(t, errors.IsProviderAuthError(err))
}

func TestFetchActivity(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/activities/777", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": 777, "name": "Tempo", "sport_type": "Run", "distance": 8000, "moving_time": 2400, "start_date": "2026-08-21T07:00:00Z"}`)
	}))

	activity, err := client.FetchActivity(context.Background(), "access-1", "777")
	require.NoError(t, err)

	assert.Equal(t, "777", activity.ID)
	assert.Equal(t, "Tempo", activity.Name)
	assert.True(t, activity.IsRun())
	assert.Equal(t, 2400, activity.MovingTime)
	assert.Equal(t, 2026, activity.StartDate.Year())
}

func TestDeauthorize_BestEffort(t *testing.T) {
	var called bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		require.Equal(t, "/oauth/deauthorize", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.Deauthorize(context.Background(), "access-1"))
	assert.True(t, called)
}

func TestActivity_IsRun(t *testing.T) {
	// every sport the workout taxonomy maps must pass the filter
	assert.True(t, Activity{SportType: "Run"}.IsRun())
	assert.True(t, Activity{SportType: "TrailRun"}.IsRun())
	assert.True(t, Activity{SportType: "VirtualRun"}.IsRun())
	assert.True(t, Activity{SportType: "Treadmill"}.IsRun())
	assert.True(t, Activity{SportType: "Workout"}.IsRun())
	assert.True(t, Activity{SportType: "Race"}.IsRun())
	assert.False(t, Activity{SportType: "Ride"}.IsRun())
	assert.False(t, Activity{SportType: "Swim"}.IsRun())
}

func TestWebhookEvent_IsActivityCreate(t *testing.T) {
	assert.True(t, WebhookEvent{ObjectType: "activity", AspectType: "create"}.IsActivityCreate())
	assert.False(t, WebhookEvent{ObjectType: "activity", AspectType: "update"}.IsActivityCreate())
	assert.False(t, WebhookEvent{ObjectType: "athlete", AspectType: "create"}.IsActivityCreate())
}
