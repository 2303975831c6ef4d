// internal/lookup/remote.go
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	commonhttp "caab-workers/internal/common/http"

	"github.com/shopspring/decimal"
)

// Remote resolves against the reference-data HTTP service.
type Remote struct {
	baseURL string
	client  *commonhttp.Client
}

func NewRemote(baseURL string, timeout time.Duration) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  commonhttp.NewClient(timeout),
	}
}

func (r *Remote) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := r.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	err := r.client.GetJSON(ctx, u, out)
	if errors.Is(err, commonhttp.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *Remote) Value(ctx context.Context, domain Domain, code string) (Value, error) {
	var v Value
	err := r.get(ctx, "/lookup/common-values", url.Values{"type": {string(domain)}, "code": {code}}, &v)
	if err != nil {
		return Value{}, err
	}
	if v.Code == "" {
		return Value{}, ErrNotFound
	}
	return v, nil
}

func (r *Remote) Provider(ctx context.Context, id int) (Provider, error) {
	var p Provider
	if err := r.get(ctx, "/providers/"+strconv.Itoa(id), nil, &p); err != nil {
		return Provider{}, err
	}
	return p, nil
}

func (r *Remote) PriorAuthorityType(ctx context.Context, code string) (PriorAuthorityType, error) {
	var t PriorAuthorityType
	if err := r.get(ctx, "/lookup/prior-authority-types/"+url.PathEscape(code), nil, &t); err != nil {
		return PriorAuthorityType{}, err
	}
	return t, nil
}

type scopeLimitationResponse struct {
	Content []struct {
		CostLimitation          decimal.Decimal `json:"costLimitation"`
		EmergencyCostLimitation decimal.Decimal `json:"emergencyCostLimitation"`
	} `json:"content"`
}

func (r *Remote) CostLimitation(ctx context.Context, q ScopeLimitationQuery) (decimal.Decimal, error) {
	query := url.Values{
		"category-of-law":   {q.CategoryOfLaw},
		"matter-type":       {q.MatterType},
		"proceeding-code":   {q.ProceedingType},
		"level-of-service":  {q.LevelOfService},
		"scope-limitations": {q.ScopeLimitation},
	}
	if q.Emergency {
		query.Set("emergency", "true")
	}

	var resp scopeLimitationResponse
	if err := r.get(ctx, "/lookup/scope-limitations", query, &resp); err != nil {
		return decimal.Zero, err
	}
	if len(resp.Content) == 0 {
		return decimal.Zero, ErrNotFound
	}
	if q.Emergency {
		return resp.Content[0].EmergencyCostLimitation, nil
	}
	return resp.Content[0].CostLimitation, nil
}

// String identifies the resolver in logs.
func (r *Remote) String() string {
	return fmt.Sprintf("remote(%s)", r.baseURL)
}
