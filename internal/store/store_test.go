package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/money"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// jsonPath matches a JSONB argument whose value at path equals want. Strings compare unquoted,
// anything else by its raw JSON text so "1350.00" keeps its scale.
type jsonPath struct {
	path string
	want string
}

func (j jsonPath) Match(v driver.Value) bool {
	b, ok := v.([]byte)
	if !ok {
		return false
	}
	r := gjson.GetBytes(b, j.path)
	if r.Type == gjson.String {
		return r.Str == j.want
	}
	return r.Raw == j.want
}

func newCases(t *testing.T) (*Cases, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewCases(db)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func testApplication() models.Application {
	return models.Application{
		CaseReferenceNumber: "300001234567",
		ApplicationType:     models.ApplicationType{ID: "EMER"},
		Costs:               models.CostStructure{DefaultCostLimitation: money.MustParse("1350")},
		Opponents: []models.Opponent{
			{EbsID: "OP1", Party: &models.Organisation{OrganisationName: "Acme Ltd"}},
		},
	}
}

func TestSaveApplication(t *testing.T) {
	s, mock := newCases(t)

	mock.ExpectExec(`INSERT INTO case_applications`).
		WithArgs(
			"300001234567",
			"SOA",
			jsonPath{path: "costs.defaultCostLimitation", want: "1350.00"},
			fixedNow,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.SaveApplication(context.Background(), source.SystemSOA, testApplication())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveApplication_Error(t *testing.T) {
	s, mock := newCases(t)

	mock.ExpectExec(`INSERT INTO case_applications`).
		WillReturnError(errors.New("connection reset"))

	err := s.SaveApplication(context.Background(), source.SystemEBS, testApplication())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "save application 300001234567")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadApplication(t *testing.T) {
	s, mock := newCases(t)

	payload, err := json.Marshal(testApplication())
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT source_system, payload FROM case_applications`).
		WithArgs("300001234567").
		WillReturnRows(sqlmock.NewRows([]string{"source_system", "payload"}).AddRow("EBS", payload))

	app, system, err := s.LoadApplication(context.Background(), "300001234567")
	require.NoError(t, err)
	assert.Equal(t, source.SystemEBS, system)
	assert.Equal(t, "300001234567", app.CaseReferenceNumber)
	assert.True(t, app.Costs.DefaultCostLimitation.Equal(money.MustParse("1350")))
	require.Len(t, app.Opponents, 1)
	assert.Equal(t, models.OpponentOrganisation, app.Opponents[0].Type())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadApplication_NotFound(t *testing.T) {
	s, mock := newCases(t)

	mock.ExpectQuery(`SELECT source_system, payload FROM case_applications`).
		WithArgs("300009999999").
		WillReturnError(sql.ErrNoRows)

	_, _, err := s.LoadApplication(context.Background(), "300009999999")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadApplication_BadPayload(t *testing.T) {
	s, mock := newCases(t)

	mock.ExpectQuery(`SELECT source_system, payload FROM case_applications`).
		WillReturnRows(sqlmock.NewRows([]string{"source_system", "payload"}).AddRow("EBS", []byte(`{"costs":`)))

	_, _, err := s.LoadApplication(context.Background(), "300001234567")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestGraphs(t *testing.T) {
	s, mock := newCases(t)
	g := &models.AssessmentGraph{
		Name:                "meansAssessment",
		CaseReferenceNumber: "300001234567",
		Status:              models.AssessmentStatusComplete,
		EntityTypes: []models.EntityType{{
			Name:     models.EntityTypeGlobal,
			Entities: []models.Entity{{Name: "300001234567"}},
		}},
	}

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("300001234567", "meansAssessment", jsonPath{path: "status", want: "COMPLETE"}, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.SaveGraph(context.Background(), g))

	payload, err := json.Marshal(g)
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT payload FROM assessments`).
		WithArgs("300001234567", "meansAssessment").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))
	got, err := s.LoadGraph(context.Background(), "300001234567", "meansAssessment")
	require.NoError(t, err)
	assert.Equal(t, g, got)

	mock.ExpectQuery(`SELECT payload FROM assessments`).
		WithArgs("300001234567", "meritsAssessment").
		WillReturnError(sql.ErrNoRows)
	got, err = s.LoadGraph(context.Background(), "300001234567", "meritsAssessment")
	assert.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectExec(`DELETE FROM assessments`).
		WithArgs("300001234567", "meansAssessment").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, s.DeleteGraph(context.Background(), "300001234567", "meansAssessment"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
