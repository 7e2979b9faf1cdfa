package gcalendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar API service.
type Client struct {
	service *calendar.Service
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit caps outgoing requests per second. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func newClient(svc *calendar.Service, opts []Option) *Client {
	c := &Client{service: svc}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromCredentialsFile creates a client from a credentials JSON file.
// tokenPath is only read for OAuth desktop credentials.
func NewClientFromCredentialsFile(ctx context.Context, credentialsPath, tokenPath string, opts ...Option) (*Client, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return NewClientFromCredentialsJSON(ctx, data, tokenPath, opts...)
}

// NewClientFromCredentialsJSON accepts service account JSON, or OAuth desktop
// credentials together with a token previously stored at tokenPath.
func NewClientFromCredentialsJSON(ctx context.Context, credentialsJSON []byte, tokenPath string, opts ...Option) (*Client, error) {
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarScope)
	if err == nil {
		svc, svcErr := calendar.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
		if svcErr != nil {
			return nil, fmt.Errorf("failed to create calendar service: %w", svcErr)
		}
		return newClient(svc, opts), nil
	}

	oauthConfig, cfgErr := OAuthConfigFromJSON(credentialsJSON)
	if cfgErr != nil {
		return nil, fmt.Errorf("unsupported credentials format: %w", err)
	}

	if tokenPath == "" {
		tokenPath = "token.json"
	}
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("google credentials are OAuth Desktop type but %s is unusable: %w", tokenPath, err)
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service from OAuth token: %w", err)
	}
	return newClient(svc, opts), nil
}

// NewClientFromHTTP creates a client from a pre-configured HTTP client.
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client, opts ...Option) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return newClient(svc, opts), nil
}

// OAuthConfigFromJSON reads "installed" desktop app credentials.
func OAuthConfigFromJSON(credentialsJSON []byte) (*oauth2.Config, error) {
	var creds struct {
		Installed struct {
			ClientID     string   `json:"client_id"`
			ClientSecret string   `json:"client_secret"`
			RedirectURIs []string `json:"redirect_uris"`
		} `json:"installed"`
	}
	if err := json.Unmarshal(credentialsJSON, &creds); err != nil {
		return nil, err
	}
	if creds.Installed.ClientID == "" {
		return nil, fmt.Errorf("missing installed.client_id")
	}
	cfg := &oauth2.Config{
		ClientID:     creds.Installed.ClientID,
		ClientSecret: creds.Installed.ClientSecret,
		Scopes:       []string{calendar.CalendarScope},
		Endpoint:     google.Endpoint,
	}
	if len(creds.Installed.RedirectURIs) > 0 {
		cfg.RedirectURL = creds.Installed.RedirectURIs[0]
	}
	return cfg, nil
}

// LoadToken reads an OAuth token saved as JSON.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &tok, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// CreateEvent creates a new event.
func (c *Client) CreateEvent(ctx context.Context, req EventInput) (*Event, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	created, err := c.service.Events.Insert(calendarID(req.CalendarID), toAPIEvent(req)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}
	ev := fromAPIEvent(created)
	return &ev, nil
}

// UpdateEvent replaces the time, title and private properties of an event.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, req EventInput) (*Event, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	updated, err := c.service.Events.Patch(calendarID(req.CalendarID), eventID, toAPIEvent(req)).Context(ctx).Do()
	if err != nil {
		if isGone(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to update calendar event: %w", err)
	}
	ev := fromAPIEvent(updated)
	return &ev, nil
}

// DeleteEvent removes an event. Deleting an absent event returns ErrNotFound.
func (c *Client) DeleteEvent(ctx context.Context, calID, eventID string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	if err := c.service.Events.Delete(calendarID(calID), eventID).Context(ctx).Do(); err != nil {
		if isGone(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, eventID)
		}
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}
	return nil
}

// ListEvents returns every page of events. Recurring events are expanded into
// single instances.
func (c *Client) ListEvents(ctx context.Context, req ListEventsRequest) (*ListEventsResult, error) {
	pageSize := req.MaxResults
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	res := &ListEventsResult{}
	pageToken := ""
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		call := c.service.Events.List(calendarID(req.CalendarID)).
			Context(ctx).
			SingleEvents(true).
			MaxResults(pageSize)
		if req.SyncToken != "" {
			call = call.SyncToken(req.SyncToken).ShowDeleted(true)
		} else {
			if !req.TimeMin.IsZero() {
				call = call.TimeMin(req.TimeMin.Format(time.RFC3339))
			}
			if !req.TimeMax.IsZero() {
				call = call.TimeMax(req.TimeMax.Format(time.RFC3339))
			}
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			if req.SyncToken != "" && statusOf(err) == http.StatusGone {
				return nil, ErrSyncTokenExpired
			}
			return nil, fmt.Errorf("failed to list calendar events: %w", err)
		}
		for _, item := range page.Items {
			res.Events = append(res.Events, fromAPIEvent(item))
		}
		if page.NextPageToken == "" {
			res.NextSyncToken = page.NextSyncToken
			return res, nil
		}
		pageToken = page.NextPageToken
	}
}

func calendarID(id string) string {
	if id == "" {
		return DefaultCalendarID
	}
	return id
}

func toAPIEvent(req EventInput) *calendar.Event {
	ev := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.StartTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.EndTime.Format(time.RFC3339),
			TimeZone: req.Timezone,
		},
	}
	if len(req.Private) > 0 {
		ev.ExtendedProperties = &calendar.EventExtendedProperties{Private: req.Private}
	}
	return ev
}

func fromAPIEvent(item *calendar.Event) Event {
	ev := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		HtmlLink:    item.HtmlLink,
		Status:      item.Status,
	}
	if item.Start != nil {
		ev.StartTime, ev.AllDay = parseEventTime(item.Start)
	}
	if item.End != nil {
		ev.EndTime, _ = parseEventTime(item.End)
	}
	if item.ExtendedProperties != nil && len(item.ExtendedProperties.Private) > 0 {
		ev.Private = item.ExtendedProperties.Private
	}
	if item.Updated != "" {
		ev.Updated, _ = time.Parse(time.RFC3339, item.Updated)
	}
	return ev
}

func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		if err == nil && dt.TimeZone != "" {
			if loc, locErr := time.LoadLocation(dt.TimeZone); locErr == nil {
				t = t.In(loc)
			}
		}
		return t, false
	}
	if dt.Date != "" {
		t, _ := time.Parse("2006-01-02", dt.Date)
		return t, true
	}
	return time.Time{}, false
}
