// Package strava wraps the provider's OAuth and activity REST surface.
// The client is stateless: callers pass access tokens in, and every HTTP
// call runs under a bounded timeout.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	stderrors "errors"

	"golang.org/x/oauth2"

	"stridesync/internal/shared/config"
	"stridesync/internal/shared/errors"
)

const (
	defaultOAuthBaseURL = "https://www.strava.com/oauth"
	defaultAPIBaseURL   = "https://www.strava.com/api/v3"

	requestTimeout = 10 * time.Second
	perPage        = 100
)

// TokenGrant is the result of a code exchange or a token refresh.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the access token expiry as epoch seconds.
	ExpiresAt int64
	// AthleteID is only populated on the initial code exchange.
	AthleteID string
}

// Client talks to the provider. All methods are safe for concurrent use.
type Client struct {
	config       *oauth2.Config
	httpClient   *http.Client
	oauthBaseURL string
	apiBaseURL   string
}

// NewClient builds a client from the OAuth application settings.
func NewClient(cfg config.StravaConfig) *Client {
	return newClient(cfg, defaultOAuthBaseURL, defaultAPIBaseURL)
}

func newClient(cfg config.StravaConfig, oauthBaseURL, apiBaseURL string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"read", "activity:read_all"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  oauthBaseURL + "/authorize",
				TokenURL: oauthBaseURL + "/token",
			},
		},
		httpClient:   &http.Client{Timeout: requestTimeout},
		oauthBaseURL: oauthBaseURL,
		apiBaseURL:   apiBaseURL,
	}
}

// AuthorizationURL returns the provider consent URL. The opaque state
// value carries the local user id so the callback can correlate the grant
// without a server-side session.
func (c *Client) AuthorizationURL(state string) string {
	return c.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("approval_prompt", "auto"),
	)
}

// ExchangeCode swaps a one-shot authorization code for a token grant.
// Authorization codes are single-use, so failures are never retried here.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, oauthError("code exchange", err)
	}

	grant := grantFromToken(token)
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			grant.AthleteID = strconv.FormatInt(int64(id), 10)
		}
	}
	if grant.AthleteID == "" {
		return nil, errors.NewProviderAuthError("code exchange", "token response missing athlete id")
	}

	return grant, nil
}

// RefreshToken exchanges a refresh token for a new token pair. A revoked
// refresh token surfaces as ProviderAuthError: terminal, the user has to
// reconnect.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	source := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, oauthError("token refresh", err)
	}

	grant := grantFromToken(token)
	if grant.RefreshToken == "" {
		// The provider rotates refresh tokens on every refresh; keep the
		// old one if the response omitted it.
		grant.RefreshToken = refreshToken
	}

	return grant, nil
}

// activityPayload is the provider's activity wire shape. Fields we do not
// import are left out and ignored by the JSON decoder.
type activityPayload struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	SportType  string  `json:"sport_type"`
	Distance   float64 `json:"distance"`
	MovingTime int     `json:"moving_time"`
	StartDate  string  `json:"start_date"`
}

// Activity is a provider activity in client-facing form.
type Activity struct {
	ID         string
	Name       string
	SportType  string
	Distance   float64
	MovingTime int
	StartDate  time.Time
}

// IsRun reports whether the provider-reported category is a run
// variant. Workout and Race arrive for structured sessions and race
// entries recorded as runs; rides, swims and the rest stay out.
func (a Activity) IsRun() bool {
	switch a.SportType {
	case "Run", "TrailRun", "VirtualRun", "Treadmill", "Workout", "Race":
		return true
	}
	return false
}

func (p activityPayload) toActivity() Activity {
	sportType := p.SportType
	if sportType == "" {
		sportType = p.Type
	}
	startDate, _ := time.Parse(time.RFC3339, p.StartDate)
	return Activity{
		ID:         strconv.FormatInt(p.ID, 10),
		Name:       p.Name,
		SportType:  sportType,
		Distance:   p.Distance,
		MovingTime: p.MovingTime,
		StartDate:  startDate,
	}
}

// ListActivities pages through the athlete's activities after the given
// time. A 429 maps to ProviderRateLimitError so callers can defer to the
// next reconciliation pass instead of demanding reconnection.
func (c *Client) ListActivities(ctx context.Context, accessToken string, after time.Time) ([]Activity, error) {
	var all []Activity

	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s/athlete/activities?%s", c.apiBaseURL, url.Values{
			"after":    {strconv.FormatInt(after.Unix(), 10)},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(perPage)},
		}.Encode())

		body, err := c.apiGet(ctx, "list activities", accessToken, endpoint)
		if err != nil {
			return nil, err
		}

		var payloads []activityPayload
		if err := json.Unmarshal(body, &payloads); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
		}

		for _, p := range payloads {
			all = append(all, p.toActivity())
		}

		if len(payloads) < perPage {
			return all, nil
		}
	}
}

// FetchActivity retrieves a single activity by id. Used by the webhook
// path, which only learns that something changed, not what.
func (c *Client) FetchActivity(ctx context.Context, accessToken, externalID string) (*Activity, error) {
	endpoint := fmt.Sprintf("%s/activities/%s", c.apiBaseURL, url.PathEscape(externalID))

	body, err := c.apiGet(ctx, "fetch activity", accessToken, endpoint)
	if err != nil {
		return nil, err
	}

	var payload activityPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}

	activity := payload.toActivity()
	return &activity, nil
}

// Deauthorize revokes the grant on the provider side. Best-effort: the
// caller clears local state regardless of the outcome.
func (c *Client) Deauthorize(ctx context.Context, accessToken string) error {
	endpoint := c.oauthBaseURL + "/deauthorize"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(url.Values{"access_token": {accessToken}}.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deauthorize request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("deauthorize failed: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) apiGet(ctx context.Context, stage, accessToken, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", stage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.NewProviderAuthError(stage, fmt.Sprintf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, errors.NewProviderRateLimitError(fmt.Sprintf("%s: status %d", stage, resp.StatusCode))
	default:
		return nil, fmt.Errorf("%s failed: status %d, body: %s", stage, resp.StatusCode, string(body))
	}
}

// oauthError maps oauth2 transport errors onto the integration taxonomy.
func oauthError(stage string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if stderrors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusTooManyRequests {
			return errors.NewProviderRateLimitError(stage)
		}
		return errors.NewProviderAuthError(stage, retrieveErr.Error())
	}
	return fmt.Errorf("%s failed: %w", stage, err)
}

func grantFromToken(token *oauth2.Token) *TokenGrant {
	return &TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Unix(),
	}
}
