// Package feed implements the read-only client for the external
// dispatch feed. The feed paginates with an opaque bookmark cursor:
// each page carries the documents plus the bookmark for the next one.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fieldstock/internal/core/apperror"
	"fieldstock/pkg/logger"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultTokenHeader = "X-Auth-Token"

	// maxPages bounds a single fetch so a misbehaving cursor can never
	// trap the loop.
	maxPages = 20
)

// RawTechnician is one technician entry as the feed sends it. Account
// is usually an email address but the feed does not guarantee it.
type RawTechnician struct {
	Account     string `json:"user"`
	DisplayName string `json:"nombre"`
	AccountType *int   `json:"tipocuenta"`
}

// RawOrder is one work order document exactly as the feed sends it.
// Timestamps stay strings here; parsing is the caller's concern because
// the feed mixes several ISO-8601 shapes.
type RawOrder struct {
	ID          string          `json:"id"`
	Number      *int            `json:"numero"`
	FiscalYear  *int            `json:"ejercicio"`
	Date        string          `json:"fecha"`
	StartedAt   string          `json:"horaIni"`
	EndedAt     string          `json:"horaFin"`
	Description string          `json:"trabajoSolicitado"`
	Notes       *string         `json:"notas"`
	Status      int             `json:"estado"`
	Signed      bool            `json:"firmado"`
	Archived    bool            `json:"archivado"`
	Technicians []RawTechnician `json:"tecnicos"`

	ClientInternalCode *string `json:"cliente_codigoInterno"`
	ClientID           *string `json:"cliente_id"`
	ClientCompany      *string `json:"cliente_empresa"`
	ClientTaxID        *string `json:"cliente_cif"`
	ClientAddress      *string `json:"cliente_direccion"`
	ClientProvince     *string `json:"cliente_provincia"`
	ClientCity         *string `json:"cliente_localidad"`
	ClientCountry      *string `json:"cliente_pais"`
	ClientPhone        *string `json:"cliente_telefono"`
	ClientEmail        *string `json:"cliente_email"`
	ClientERPID        *string `json:"cliente_erp_id"`

	ProjectID *string `json:"proyecto_id"`
	ERPID     *string `json:"erp_id"`
}

type page struct {
	Docs     []RawOrder `json:"docs"`
	Bookmark string     `json:"bookmark"`
}

// Config holds the feed endpoint settings.
type Config struct {
	// BaseURL is the full collection endpoint, e.g. "https://feed.example.com/v1/orders/".
	BaseURL string
	// Token is sent on every request. TokenHeader defaults to X-Auth-Token.
	Token       string
	TokenHeader string
	// Timeout bounds each page request. Defaults to 30s.
	Timeout time.Duration
}

// Client fetches work order documents from the feed.
type Client struct {
	baseURL     string
	token       string
	tokenHeader string
	http        *http.Client
	log         *logger.Logger
}

// NewClient creates a feed client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	header := cfg.TokenHeader
	if header == "" {
		header = defaultTokenHeader
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.Token,
		tokenHeader: header,
		http:        &http.Client{Timeout: timeout},
		log:         log.WithComponent("feed"),
	}
}

// FetchAll walks the bookmark cursor and returns every document the
// feed currently exposes. It stops on an empty page, an absent or
// repeated bookmark, or after maxPages. On a request failure it
// returns the documents fetched so far together with the error, so the
// caller can still process the partial batch.
func (c *Client) FetchAll(ctx context.Context) ([]RawOrder, error) {
	var all []RawOrder
	bookmark := ""

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		p, err := c.fetchPage(ctx, bookmark)
		if err != nil {
			return all, apperror.NewUpstream(fmt.Sprintf("feed page %d", pageNum), err)
		}

		if len(p.Docs) == 0 {
			c.log.WithContext(ctx).Debugw("feed exhausted", "page", pageNum)
			break
		}
		all = append(all, p.Docs...)
		c.log.WithContext(ctx).Debugw("feed page fetched", "page", pageNum, "docs", len(p.Docs))

		if p.Bookmark == "" || p.Bookmark == bookmark {
			break
		}
		bookmark = p.Bookmark
	}

	c.log.WithContext(ctx).Infow("feed fetch complete", "orders", len(all))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, bookmark string) (*page, error) {
	target := c.baseURL
	if bookmark != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + "bookmark=" + url.QueryEscape(bookmark)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var p page
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	return &p, nil
}

// timestamp layouts the feed has been observed to emit, most common
// first.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a feed timestamp. The feed emits naive local
// timestamps in several shapes and occasionally appends a zone suffix,
// which is dropped rather than honored: the interval rules are defined
// in the feed's own local clock.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if i := strings.IndexByte(s, '+'); i > 0 {
		s = s[:i]
	} else {
		s = strings.TrimSuffix(s, "Z")
	}

	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
