package pagination

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/labstack/echo/v4"
)

func parseQuery(t *testing.T, query string) (Params, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/claims?"+query, nil)
	return Parse(e.NewContext(req, httptest.NewRecorder()))
}

func TestParse(t *testing.T) {
	tests := []struct {
		query   string
		want    Params
		wantErr bool
	}{
		{"", Params{Limit: DefaultLimit}, false},
		{"limit=5&offset=10", Params{Limit: 5, Offset: 10}, false},
		{"limit=0", Params{Limit: DefaultLimit}, false},
		{"limit=1000", Params{Limit: MaxLimit}, false},
		{"limit=ten", Params{}, true},
		{"limit=-1", Params{}, true},
		{"offset=-20", Params{}, true},
		{"offset=1.5", Params{}, true},
	}
	for _, tt := range tests {
		got, err := parseQuery(t, tt.query)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("%q: expected ErrInvalid, got %v", tt.query, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tt.query, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: expected %+v, got %+v", tt.query, tt.want, got)
		}
	}
}

func TestNewPage(t *testing.T) {
	filters := url.Values{"status": {"DRAFT"}, "offset": {"999"}}

	tests := []struct {
		name         string
		params       Params
		total        int
		wantHasMore  bool
		wantNext     string
		wantPrevious string
	}{
		{
			name:        "first page",
			params:      Params{Limit: 10},
			total:       25,
			wantHasMore: true,
			wantNext:    "/claims?limit=10&offset=10&status=DRAFT",
		},
		{
			name:         "middle page",
			params:       Params{Limit: 10, Offset: 10},
			total:        25,
			wantHasMore:  true,
			wantNext:     "/claims?limit=10&offset=20&status=DRAFT",
			wantPrevious: "/claims?limit=10&offset=0&status=DRAFT",
		},
		{
			name:         "last page",
			params:       Params{Limit: 10, Offset: 20},
			total:        25,
			wantPrevious: "/claims?limit=10&offset=10&status=DRAFT",
		},
		{
			name:         "offset not aligned",
			params:       Params{Limit: 10, Offset: 5},
			total:        12,
			wantPrevious: "/claims?limit=10&offset=0&status=DRAFT",
		},
		{
			name:   "empty",
			params: Params{Limit: 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage([]string{"a"}, tt.total, tt.params, "/claims", filters)
			if p.HasMore != tt.wantHasMore {
				t.Errorf("expected has_more %v, got %v", tt.wantHasMore, p.HasMore)
			}
			if p.Links.Next != tt.wantNext {
				t.Errorf("expected next %q, got %q", tt.wantNext, p.Links.Next)
			}
			if p.Links.Previous != tt.wantPrevious {
				t.Errorf("expected previous %q, got %q", tt.wantPrevious, p.Links.Previous)
			}
			if p.Limit != tt.params.Limit || p.Offset != tt.params.Offset || p.Total != tt.total {
				t.Errorf("page fields not copied: %+v", p)
			}
		})
	}
}

func TestNewPage_NilItems(t *testing.T) {
	p := NewPage[int](nil, 0, Params{Limit: DefaultLimit}, "/claims", nil)
	if p.Data == nil || len(p.Data) != 0 {
		t.Errorf("expected empty non-nil data, got %#v", p.Data)
	}
	if p.Links.Self != "/claims?limit=20&offset=0" {
		t.Errorf("unexpected self link %q", p.Links.Self)
	}
}
