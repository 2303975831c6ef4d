package lookup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() Dataset {
	return Dataset{
		Values: map[Domain][]Value{
			DomainApplicationType: {{Code: "DP", Description: "Emergency - Devolved Powers"}},
			DomainProceedingType: {{
				Code:        "PR1",
				Description: "Non-molestation order",
				Attributes:  map[string]string{AttrLarScope: "FAMILY"},
			}},
		},
		Providers: []Provider{{
			ID:   26517,
			Name: "Firm A",
			Offices: []Office{{
				ID:         145512,
				Name:       "Office 1",
				FeeEarners: []Contact{{ID: 2, Name: "Fee Earner"}, {ID: 3, Name: "Supervisor"}},
			}},
		}},
		PriorAuthorityTypes: []PriorAuthorityType{{Code: "PA1", Description: "Counsel", ValueRequired: true}},
		ScopeLimitations: []ScopeLimitationCost{{
			ScopeLimitationQuery: ScopeLimitationQuery{
				CategoryOfLaw: "FAM", MatterType: "MT", ProceedingType: "PR1",
				LevelOfService: "FR", ScopeLimitation: "SL1",
			},
			CostLimitation:          decimal.RequireFromString("2500"),
			EmergencyCostLimitation: decimal.RequireFromString("1350"),
		}},
	}
}

type countingResolver struct {
	Resolver
	calls int
}

func (c *countingResolver) Value(ctx context.Context, domain Domain, code string) (Value, error) {
	c.calls++
	return c.Resolver.Value(ctx, domain, code)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(testDataset())

	v, err := s.Value(ctx, DomainApplicationType, "DP")
	require.NoError(t, err)
	assert.Equal(t, "Emergency - Devolved Powers", v.Description)

	_, err = s.Value(ctx, DomainApplicationType, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := s.Provider(ctx, 26517)
	require.NoError(t, err)
	office, ok := p.Office(145512)
	require.True(t, ok)
	fe, ok := office.FeeEarner(3)
	require.True(t, ok)
	assert.Equal(t, "Supervisor", fe.Name)

	q := ScopeLimitationQuery{CategoryOfLaw: "FAM", MatterType: "MT", ProceedingType: "PR1",
		LevelOfService: "FR", ScopeLimitation: "SL1"}
	limit, err := s.CostLimitation(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "2500", limit.String())

	q.Emergency = true
	limit, err = s.CostLimitation(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "1350", limit.String())

	q.ScopeLimitation = "OTHER"
	_, err = s.CostLimitation(ctx, q)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadStatic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"values": {"XXCCMS_COURTS": [{"code": "C1", "description": "Leeds"}]},
		"providers": [{"id": 1, "name": "P", "offices": []}]
	}`), 0o600))

	s, err := LoadStatic(path)
	require.NoError(t, err)
	v, err := s.Value(context.Background(), DomainCourt, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Leeds", v.Description)

	_, err = LoadStatic(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCached_HitAvoidsInner(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingResolver{Resolver: NewStatic(testDataset())}
	c := NewCached(inner, rdb, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := c.Value(ctx, DomainProceedingType, "PR1")
		require.NoError(t, err)
		assert.Equal(t, "FAMILY", v.Attributes[AttrLarScope])
	}
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists("lookup:XXCCMS_PROCEEDING:PR1"))

	mr.FastForward(2 * time.Minute)
	_, err := c.Value(ctx, DomainProceedingType, "PR1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCached_NotFoundIsNotCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewCached(NewStatic(testDataset()), rdb, time.Minute)

	_, err := c.Value(context.Background(), DomainCourt, "UNKNOWN")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists("lookup:XXCCMS_COURTS:UNKNOWN"))
}

func TestCached_CostLimitationRoundTripsDecimal(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewCached(NewStatic(testDataset()), rdb, time.Minute)
	q := ScopeLimitationQuery{CategoryOfLaw: "FAM", MatterType: "MT", ProceedingType: "PR1",
		LevelOfService: "FR", ScopeLimitation: "SL1"}

	first, err := c.CostLimitation(context.Background(), q)
	require.NoError(t, err)
	second, err := c.CostLimitation(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestCached_RedisDownFallsThrough(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("lookup:provider:26517").SetErr(errors.New("connection refused"))

	c := NewCached(NewStatic(testDataset()), rdb, time.Minute)
	p, err := c.Provider(context.Background(), 26517)

	require.NoError(t, err)
	assert.Equal(t, "Firm A", p.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/lookup/common-values" && r.URL.Query().Get("code") == "DP":
			_, _ = w.Write([]byte(`{"code":"DP","description":"Emergency - Devolved Powers"}`))
		case r.URL.Path == "/lookup/common-values":
			_, _ = w.Write([]byte(`{}`))
		case r.URL.Path == "/providers/26517":
			_, _ = w.Write([]byte(`{"id":26517,"name":"Firm A","offices":[{"id":1,"name":"O"}]}`))
		case r.URL.Path == "/lookup/scope-limitations":
			assert.Equal(t, "true", r.URL.Query().Get("emergency"))
			_, _ = w.Write([]byte(`{"content":[{"costLimitation":"2500.00","emergencyCostLimitation":1350}]}`))
		case r.URL.Path == "/lookup/prior-authority-types/BAD":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL+"/", time.Second)
	ctx := context.Background()

	v, err := r.Value(ctx, DomainApplicationType, "DP")
	require.NoError(t, err)
	assert.Equal(t, "Emergency - Devolved Powers", v.Description)

	_, err = r.Value(ctx, DomainApplicationType, "XX")
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := r.Provider(ctx, 26517)
	require.NoError(t, err)
	assert.Len(t, p.Offices, 1)

	_, err = r.Provider(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	limit, err := r.CostLimitation(ctx, ScopeLimitationQuery{Emergency: true})
	require.NoError(t, err)
	assert.Equal(t, "1350", limit.String())

	_, err = r.PriorAuthorityType(ctx, "BAD")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
