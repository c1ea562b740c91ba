// Package npiregistry looks providers up in the CMS NPPES NPI Registry.
package npiregistry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// DefaultURL is the public NPPES API endpoint.
const DefaultURL = "https://npiregistry.cms.hhs.gov/api/"

var ErrNotFound = errors.New("npi not found in registry")

// Provider holds the registry details the claim checks use.
type Provider struct {
	NPI             string `json:"npi"`
	Name            string `json:"name"`
	Type            string `json:"type"` // "Individual" or "Organization"
	Credential      string `json:"credential,omitempty"`
	PrimaryTaxonomy string `json:"primary_taxonomy,omitempty"`
	TaxonomyCode    string `json:"taxonomy_code,omitempty"`
	EnumerationDate string `json:"enumeration_date,omitempty"`
	Status          string `json:"status"` // "A" = active
}

// Active reports whether the registry lists the NPI as active.
func (p *Provider) Active() bool {
	return p.Status == "A"
}

type Lookuper interface {
	Lookup(ctx context.Context, npi string) (*Provider, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a client for baseURL allowing rps requests per second.
// A non-positive rps disables rate limiting.
func NewClient(baseURL string, rps float64, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	limit := rate.Inf
	burst := 1
	if rps > 0 {
		limit = rate.Limit(rps)
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
}

type apiResponse struct {
	ResultCount int         `json:"result_count"`
	Results     []apiResult `json:"results"`
	Errors      []struct {
		Description string `json:"description"`
	} `json:"Errors"`
}

type apiResult struct {
	Number          string        `json:"number"`
	EnumerationType string        `json:"enumeration_type"`
	Basic           apiBasic      `json:"basic"`
	Taxonomies      []apiTaxonomy `json:"taxonomies"`
}

type apiBasic struct {
	FirstName        string `json:"first_name"`
	MiddleName       string `json:"middle_name"`
	LastName         string `json:"last_name"`
	Credential       string `json:"credential"`
	OrganizationName string `json:"organization_name"`
	EnumerationDate  string `json:"enumeration_date"`
	Status           string `json:"status"`
}

type apiTaxonomy struct {
	Code    string `json:"code"`
	Desc    string `json:"desc"`
	Primary bool   `json:"primary"`
}

// Lookup fetches a single NPI. It returns ErrNotFound when the registry has
// no record for it.
func (c *Client) Lookup(ctx context.Context, npi string) (*Provider, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("npi registry rate limit: %w", err)
	}

	q := url.Values{}
	q.Set("version", "2.1")
	q.Set("number", npi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying NPI registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NPI registry returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing NPI registry response: %w", err)
	}
	if len(apiResp.Errors) > 0 {
		return nil, fmt.Errorf("NPI registry error: %s", apiResp.Errors[0].Description)
	}
	if apiResp.ResultCount == 0 || len(apiResp.Results) == 0 {
		return nil, ErrNotFound
	}
	return toProvider(apiResp.Results[0]), nil
}

func toProvider(r apiResult) *Provider {
	p := &Provider{
		NPI:             r.Number,
		EnumerationDate: r.Basic.EnumerationDate,
		Status:          r.Basic.Status,
	}
	if r.EnumerationType == "NPI-1" {
		p.Type = "Individual"
		p.Name = individualName(r.Basic)
		p.Credential = cleanField(r.Basic.Credential)
	} else {
		p.Type = "Organization"
		p.Name = cleanField(r.Basic.OrganizationName)
	}

	for _, t := range r.Taxonomies {
		if t.Primary {
			p.PrimaryTaxonomy, p.TaxonomyCode = t.Desc, t.Code
			break
		}
	}
	if p.PrimaryTaxonomy == "" && len(r.Taxonomies) > 0 {
		p.PrimaryTaxonomy, p.TaxonomyCode = r.Taxonomies[0].Desc, r.Taxonomies[0].Code
	}
	return p
}

func individualName(b apiBasic) string {
	name := cleanField(b.LastName)
	if first := cleanField(b.FirstName); first != "" {
		name += ", " + first
	}
	if middle := cleanField(b.MiddleName); middle != "" {
		name += " " + middle
	}
	return name
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == "--" {
		return ""
	}
	return s
}
