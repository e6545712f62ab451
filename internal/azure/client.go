package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const apiVersion = "7.1"

// Client talks to the Azure DevOps REST APIs for one project.
//
// All calls go through a shared rate limiter so a report generation run
// issues requests at a predictable pace regardless of how many logs or
// fallback searches it needs.
type Client struct {
	baseURL        string // build APIs, e.g. https://dev.azure.com/{org}
	releaseBaseURL string // release APIs, e.g. https://vsrm.dev.azure.com/{org}
	project        string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewClient creates a client against explicit base URLs. The httpClient is
// expected to carry authentication already (see NewTokenClient).
func NewClient(baseURL, releaseBaseURL, project string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:        baseURL,
		releaseBaseURL: releaseBaseURL,
		project:        project,
		httpClient:     httpClient,
		limiter:        rate.NewLimiter(rate.Limit(5), 10),
	}
}

// NewOrganizationClient creates a client for an Azure DevOps organization,
// authenticated with a bearer token.
func NewOrganizationClient(organization, project, token string) *Client {
	return NewClient(
		fmt.Sprintf("https://dev.azure.com/%s", url.PathEscape(organization)),
		fmt.Sprintf("https://vsrm.dev.azure.com/%s", url.PathEscape(organization)),
		project,
		NewTokenClient(token),
	)
}

// NewTokenClient builds an HTTP client that attaches the given bearer token
// to every request.
func NewTokenClient(token string) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return oauth2.NewClient(context.Background(), ts)
}

// BuildFilter narrows a ListBuilds query.
type BuildFilter struct {
	// MinTime and MaxTime bound the build timestamps. Zero values are omitted.
	MinTime time.Time
	MaxTime time.Time

	// Top caps the number of returned builds. Zero means provider default.
	Top int
}

// get performs a rate-limited authenticated GET and decodes the JSON body.
func (c *Client) get(ctx context.Context, op, rawURL string, out interface{}) error {
	body, err := c.getRaw(ctx, op, rawURL, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (c *Client) getRaw(ctx context.Context, op, rawURL, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err, Hint: "check network connectivity and credentials"}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Hint:       hintForStatus(resp.StatusCode),
			Err:        fmt.Errorf("%s", string(body)),
		}
	}

	return body, nil
}

// buildAPI assembles a build-side endpoint URL with query parameters.
func (c *Client) buildAPI(path string, params url.Values) string {
	params.Set("api-version", apiVersion)
	return fmt.Sprintf("%s/%s/_apis/%s?%s", c.baseURL, url.PathEscape(c.project), path, params.Encode())
}

// releaseAPI assembles a release-side endpoint URL with query parameters.
func (c *Client) releaseAPI(path string, params url.Values) string {
	params.Set("api-version", apiVersion)
	return fmt.Sprintf("%s/%s/_apis/%s?%s", c.releaseBaseURL, url.PathEscape(c.project), path, params.Encode())
}

// ListBuilds returns builds matching the filter. The provider decides the
// ordering unless a time window is given, in which case newest-first is
// requested explicitly.
func (c *Client) ListBuilds(ctx context.Context, filter BuildFilter) ([]Build, error) {
	params := url.Values{}
	if !filter.MinTime.IsZero() {
		params.Set("minTime", filter.MinTime.UTC().Format(time.RFC3339))
	}
	if !filter.MaxTime.IsZero() {
		params.Set("maxTime", filter.MaxTime.UTC().Format(time.RFC3339))
	}
	if filter.Top > 0 {
		params.Set("$top", strconv.Itoa(filter.Top))
	}
	params.Set("queryOrder", "queueTimeDescending")

	var list buildList
	if err := c.get(ctx, "list builds", c.buildAPI("build/builds", params), &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// GetBuild fetches a single build by its opaque ID.
func (c *Client) GetBuild(ctx context.Context, id string) (*Build, error) {
	var build Build
	u := c.buildAPI("build/builds/"+url.PathEscape(id), url.Values{})
	if err := c.get(ctx, "get build", u, &build); err != nil {
		return nil, err
	}
	return &build, nil
}

// GetBuildTimeline fetches the step timeline of a build. The timeline lists
// which steps produced log blobs.
func (c *Client) GetBuildTimeline(ctx context.Context, buildID string) (*Timeline, error) {
	var timeline Timeline
	u := c.buildAPI(fmt.Sprintf("build/builds/%s/timeline", url.PathEscape(buildID)), url.Values{})
	if err := c.get(ctx, "get build timeline", u, &timeline); err != nil {
		return nil, err
	}
	return &timeline, nil
}

// GetLogContent fetches one log blob of a build as plain text.
func (c *Client) GetLogContent(ctx context.Context, buildID string, logID int) (string, error) {
	u := c.buildAPI(fmt.Sprintf("build/builds/%s/logs/%d", url.PathEscape(buildID), logID), url.Values{})
	body, err := c.getRaw(ctx, "get log content", u, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetBuildArtifacts lists the artifacts published by a build.
func (c *Client) GetBuildArtifacts(ctx context.Context, buildID string) ([]Artifact, error) {
	var list artifactList
	u := c.buildAPI(fmt.Sprintf("build/builds/%s/artifacts", url.PathEscape(buildID)), url.Values{})
	if err := c.get(ctx, "get build artifacts", u, &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// GetReleaseDefinitionsByName searches release pipeline definitions by name.
func (c *Client) GetReleaseDefinitionsByName(ctx context.Context, searchText string) ([]ReleaseDefinition, error) {
	params := url.Values{}
	params.Set("searchText", searchText)

	var list releaseDefinitionList
	if err := c.get(ctx, "search release definitions", c.releaseAPI("release/definitions", params), &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// GetReleasesByDefinition lists releases of one definition matching the
// search text, newest first.
func (c *Client) GetReleasesByDefinition(ctx context.Context, definitionID int, searchText string) ([]Release, error) {
	params := url.Values{}
	params.Set("definitionId", strconv.Itoa(definitionID))
	if searchText != "" {
		params.Set("searchText", searchText)
	}
	params.Set("queryOrder", "descending")

	var list releaseList
	if err := c.get(ctx, "list releases", c.releaseAPI("release/releases", params), &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}

// GetReleaseByID fetches one release. Pass expand="environments" to include
// the nested environment and approval structures.
func (c *Client) GetReleaseByID(ctx context.Context, id int, expand string) (*Release, error) {
	params := url.Values{}
	if expand != "" {
		params.Set("$expand", expand)
	}

	var release Release
	u := c.releaseAPI(fmt.Sprintf("release/releases/%d", id), params)
	if err := c.get(ctx, "get release", u, &release); err != nil {
		return nil, err
	}
	return &release, nil
}

// GetReleaseApprovals fetches the flat approval list of a release. This is
// the fallback when the nested per-environment structures are unavailable.
func (c *Client) GetReleaseApprovals(ctx context.Context, releaseID int) ([]Approval, error) {
	params := url.Values{}
	params.Set("releaseIdsFilter", strconv.Itoa(releaseID))
	params.Set("statusFilter", "all")

	var list approvalList
	if err := c.get(ctx, "list release approvals", c.releaseAPI("release/approvals", params), &list); err != nil {
		return nil, err
	}
	return list.Value, nil
}
