package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is overridable through configuration; it should point at the
// API root, e.g. "https://example.org/api".
const DefaultBaseURL = "http://localhost/api"

const requestTimeout = 30 * time.Second

// Client talks to the remote content API. All passage errors are converted to
// the uniform QueryResult envelope at this boundary.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
		log:        log,
	}
}

// envelope is the raw response wrapper shared by every API action.
type envelope struct {
	Results    json.RawMessage `json:"results"`
	Errors     []string        `json:"errors"`
	ErrorLevel int             `json:"error_level"`
}

func (c *Client) get(action string, params url.Values) (*envelope, *Error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, action)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	c.log.Debug("api request", "action", action)
	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		c.log.Warn("api unreachable", "action", action, "err", err)
		return nil, &Error{
			Message: "Unable to connect to the API. Please check your connection.",
			Status:  0,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: err.Error(), Status: resp.StatusCode}
	}

	var env envelope
	if resp.StatusCode != http.StatusOK {
		// Error bodies still carry the envelope when the server produced them.
		if json.Unmarshal(body, &env) == nil && len(env.Errors) > 0 {
			return nil, &Error{Message: env.Errors[0], Status: resp.StatusCode, Details: env.Errors}
		}
		return nil, &Error{Message: fmt.Sprintf("API Error: %d", resp.StatusCode), Status: resp.StatusCode}
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid API response: %v", err), Status: resp.StatusCode}
	}
	return &env, nil
}

// FetchCatalog loads the translation catalog, sorted by language name then
// display name. This sort order is what initial-selection fallback means by
// "first catalog entry".
func (c *Client) FetchCatalog() ([]Translation, error) {
	params := url.Values{}
	params.Set("order_by_lang_name", "true")

	env, apiErr := c.get("bibles", params)
	if apiErr != nil {
		return nil, apiErr
	}

	byModule := map[string]Translation{}
	if len(env.Results) > 0 {
		if err := json.Unmarshal(env.Results, &byModule); err != nil {
			return nil, &Error{Message: fmt.Sprintf("invalid catalog payload: %v", err)}
		}
	}

	catalog := make([]Translation, 0, len(byModule))
	for module, t := range byModule {
		t.Module = module
		catalog = append(catalog, t)
	}
	sort.Slice(catalog, func(i, j int) bool {
		if catalog[i].Lang != catalog[j].Lang {
			return catalog[i].Lang < catalog[j].Lang
		}
		return catalog[i].DisplayName() < catalog[j].DisplayName()
	})
	return catalog, nil
}

// FetchBooks loads the ordered canonical book list.
func (c *Client) FetchBooks() ([]Book, error) {
	env, apiErr := c.get("books", nil)
	if apiErr != nil {
		return nil, apiErr
	}

	var books []Book
	if len(env.Results) > 0 {
		if err := json.Unmarshal(env.Results, &books); err != nil {
			return nil, &Error{Message: fmt.Sprintf("invalid books payload: %v", err)}
		}
	}
	return books, nil
}

// QueryOptions selects between a reference lookup and a keyword search.
// Exactly one of Reference and Search should be set.
type QueryOptions struct {
	Reference    string
	Search       string
	Bibles       []string
	Highlight    bool
	Context      bool
	ContextRange int
	Page         int
	PageLimit    int
}

// FetchPassage runs the query action. It never returns a Go error: transport
// and server failures come back as an unsuccessful QueryResult.
func (c *Client) FetchPassage(opts QueryOptions) QueryResult {
	params := url.Values{}
	if opts.Reference != "" {
		params.Set("reference", opts.Reference)
	}
	if opts.Search != "" {
		params.Set("search", opts.Search)
	}
	for _, b := range opts.Bibles {
		params.Add("bible", b)
	}
	params.Set("data_format", "passage")
	if opts.Highlight {
		params.Set("highlight", "true")
	}
	if opts.Context {
		params.Set("context", "true")
		if opts.ContextRange > 0 {
			params.Set("context_range", strconv.Itoa(opts.ContextRange))
		}
	}
	if opts.Page > 0 {
		params.Set("page", strconv.Itoa(opts.Page))
		params.Set("page_limit", strconv.Itoa(opts.PageLimit))
	}

	env, apiErr := c.get("query", params)
	if apiErr != nil {
		return QueryResult{Err: apiErr}
	}

	var payload PassagePayload
	if len(env.Results) > 0 {
		if err := json.Unmarshal(env.Results, &payload); err != nil {
			return QueryResult{Err: &Error{Message: fmt.Sprintf("invalid passage payload: %v", err)}}
		}
	} else {
		payload.loaded = true
	}

	return QueryResult{
		Success:  true,
		Results:  payload,
		Metadata: Metadata{Errors: env.Errors, ErrorLevel: env.ErrorLevel},
	}
}
