package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Nehra4u/Crystal-Ecommerce/pkg/httpclient"
)

const remoteService = "product-service"

// Getter is the HTTP capability RemoteCatalog needs. It is satisfied by
// *httpclient.CircuitBreakerClient.
type Getter interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

// RemoteCatalog reads items from the product service.
type RemoteCatalog struct {
	client  Getter
	baseURL string
}

// NewRemoteCatalog creates a catalog that queries the product service at baseURL.
func NewRemoteCatalog(client Getter, baseURL string) *RemoteCatalog {
	return &RemoteCatalog{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

type remoteProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	Status     string  `json:"status"`
	BasePrice  int64   `json:"base_price"`
	Currency   string  `json:"currency"`
	CategoryID *string `json:"category_id"`
	Category   *struct {
		Slug string `json:"slug"`
	} `json:"category"`
	PrimaryImage *struct {
		URL string `json:"url"`
	} `json:"primary_image"`
	Images []struct {
		URL       string `json:"url"`
		IsPrimary bool   `json:"is_primary"`
	} `json:"images"`
}

func (p remoteProduct) item() Item {
	it := Item{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Price:    p.BasePrice,
		Currency: p.Currency,
		InStock:  p.Status == "published",
	}
	switch {
	case p.Category != nil:
		it.Category = p.Category.Slug
	case p.CategoryID != nil:
		it.Category = *p.CategoryID
	}
	if p.PrimaryImage != nil {
		it.ImageURL = p.PrimaryImage.URL
	}
	for _, img := range p.Images {
		if img.IsPrimary || it.ImageURL == "" {
			it.ImageURL = img.URL
		}
	}
	if it.Currency == "" {
		it.Currency = DefaultCurrency
	}
	return it
}

// Get fetches a single product by id.
func (c *RemoteCatalog) Get(ctx context.Context, id string) (*Item, error) {
	resp, err := c.client.Get(ctx, c.baseURL+"/api/v1/products/"+url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, remoteService)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data *remoteProduct `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("decode product %s: empty data", id)
	}
	it := body.Data.item()
	return &it, nil
}

// List fetches one page from the product service. Paging is translated to the
// service's page/per_page parameters, so Offset is rounded down to a page
// boundary. Only published products count as in stock.
func (c *RemoteCatalog) List(ctx context.Context, f Filter) ([]Item, int, error) {
	perPage := f.Limit
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(f.Offset, 0)/perPage+1))
	q.Set("per_page", strconv.Itoa(perPage))
	if f.Category != "" {
		q.Set("category_id", f.Category)
	}
	if f.InStockOnly {
		q.Set("status", "published")
	}

	resp, err := c.client.Get(ctx, c.baseURL+"/api/v1/products?"+q.Encode())
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, 0, httpclient.ParseResponseError(resp, remoteService)
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Data       []remoteProduct `json:"data"`
		TotalCount int             `json:"total_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, fmt.Errorf("decode product list: %w", err)
	}

	items := make([]Item, 0, len(body.Data))
	for _, p := range body.Data {
		it := p.item()
		if f.InStockOnly && !it.InStock {
			continue
		}
		items = append(items, it)
	}
	return items, body.TotalCount, nil
}
