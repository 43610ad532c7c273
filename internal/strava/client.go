package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sstent/stravasync/internal/config"
)

const (
	defaultBaseURL = "https://www.strava.com/api/v3"

	// windowLength bounds how much of the timeline one list call covers, to
	// keep responses small and let a single bad window fail on its own.
	windowLength = 7 * 24 * time.Hour

	defaultPerPage = 200
)

// Client is a Strava API client for listing and fetching activities.
type Client struct {
	baseURL    string
	tokens     *TokenProvider
	httpClient *http.Client
	logger     *slog.Logger
	rateLimit  time.Duration
	perPage    int
	now        func() time.Time
}

// NewClient creates a new Strava API client.
func NewClient(cfg *config.Config, tokens *TokenProvider, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		rateLimit:  cfg.RateLimit,
		perPage:    defaultPerPage,
		now:        time.Now,
	}
}

// FetchSince retrieves every activity started in [since, now), oldest
// window first, as fully detailed records including laps. The interval is
// walked in consecutive windows of at most seven days; a window whose list
// call fails is logged and skipped so one bad stretch does not sink the
// whole run. A failed per-activity detail fetch is fatal, because an
// activity without its laps is not a complete record.
//
// Strava's `after` filter is exclusive of the given second, so an activity
// starting at exactly `since` may not be returned; callers are expected to
// re-request from the last timestamp they have already seen and absorb the
// overlap by id.
func (c *Client) FetchSince(ctx context.Context, since time.Time) ([]DetailedActivity, error) {
	now := c.now()

	var out []DetailedActivity
	for start := since; start.Before(now); start = start.Add(windowLength) {
		end := start.Add(windowLength)
		if end.After(now) {
			end = now
		}

		summaries, err := c.listWindow(ctx, start, end)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrAuthenticationRequired) {
				return nil, err
			}
			c.logger.Error("activity window fetch failed, skipping window",
				"after", start, "before", end, "error", err)
			continue
		}

		for _, summary := range summaries {
			detail, err := c.GetActivity(ctx, summary.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch detail for activity %d: %w", summary.ID, err)
			}
			out = append(out, *detail)
		}
	}

	return out, nil
}

// GetActivity fetches the full record for one activity, laps included.
func (c *Client) GetActivity(ctx context.Context, id int64) (*DetailedActivity, error) {
	var detail DetailedActivity
	if err := c.get(ctx, "/activities/"+strconv.FormatInt(id, 10), nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// listWindow pages through the summaries of one [after, before) window.
func (c *Client) listWindow(ctx context.Context, after, before time.Time) ([]SummaryActivity, error) {
	var all []SummaryActivity
	for page := 1; ; page++ {
		q := url.Values{
			"after":    {strconv.FormatInt(after.Unix(), 10)},
			"before":   {strconv.FormatInt(before.Unix(), 10)},
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
		}

		var batch []SummaryActivity
		if err := c.get(ctx, "/athlete/activities", q, &batch); err != nil {
			return nil, err
		}

		all = append(all, batch...)
		if len(batch) < c.perPage {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, v interface{}) error {
	// Apply rate limiting
	time.Sleep(c.rateLimit)

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: strava rejected the access token", ErrAuthenticationRequired)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("strava returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
