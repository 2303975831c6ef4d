package submitcaseapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"caab-workers/internal/assessment"
	"caab-workers/internal/common/aws"
	commonErrors "caab-workers/internal/common/errors"
	"caab-workers/internal/common/logger"
	"caab-workers/internal/mapping/adapters"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// ==========================
// Test Helper Functions
// ==========================

const caseRef = "300001234567"

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestInput() *Input {
	return &Input{
		CaseReferenceNumber: caseRef,
		User:                User{LoginID: "SUBMITTER", Username: "Case Worker", UserType: "EXTERNAL"},
	}
}

func testApplication() models.Application {
	return models.Application{
		CaseReferenceNumber: caseRef,
		ApplicationType:     models.ApplicationType{ID: "SUBSTANTIVE"},
		ProviderDetails: models.ProviderDetails{
			Provider:        models.IntDisplayValue{ID: 26517},
			ProviderContact: models.DisplayValue{ID: "PROVIDER1", DisplayValue: "Provider User"},
		},
		Proceedings: []models.Proceeding{
			{EbsID: "P12345", LeadProceedingInd: true, ProceedingType: models.DisplayValue{ID: "PR1"}},
		},
		Opponents: []models.Opponent{
			{EbsID: "OP2", Party: &models.Organisation{OrganisationName: "Acme Ltd"}},
		},
	}
}

type memStore struct {
	app    models.Application
	system source.System
	graphs map[string]*models.AssessmentGraph
}

func (s *memStore) LoadApplication(_ context.Context, ref string) (models.Application, source.System, error) {
	if ref != s.app.CaseReferenceNumber {
		return models.Application{}, "", store.ErrNotFound
	}
	return s.app, s.system, nil
}

func (s *memStore) LoadGraph(_ context.Context, _, name string) (*models.AssessmentGraph, error) {
	return s.graphs[name], nil
}

func newMemStore(t *testing.T, system source.System, withMeans bool) *memStore {
	t.Helper()
	s := &memStore{app: testApplication(), system: system, graphs: map[string]*models.AssessmentGraph{}}
	if withMeans {
		g, err := assessment.Project(s.app, assessment.Means, assessment.Context{Now: fixedNow})
		require.NoError(t, err)
		s.graphs[assessment.Means.Name] = g
	}
	return s
}

type published struct {
	subject string
	body    []byte
	attrs   map[string]string
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, subject string, body []byte, attrs map[string]string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.sent = append(p.sent, published{subject: subject, body: body, attrs: attrs})
	return "msg-1", nil
}

func newTestHandler(t *testing.T, s CaseStore, p Publisher) *Handler {
	t.Helper()
	h := NewHandler(createTestConfig(), s, p, nil, logger.NewTestLogger(t))
	h.now = func() time.Time { return fixedNow }
	h.newID = func() string { return "sub-0001" }
	return h
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHandler(t, newMemStore(t, source.SystemSOA, true), pub)

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)

	assert.Equal(t, &Output{
		SubmissionID:        "sub-0001",
		TransactionID:       "msg-1",
		TargetSystem:        "SOA",
		CaseReferenceNumber: caseRef,
		MeansAssessed:       true,
		MeritsAssessed:      false,
	}, out)

	require.Len(t, pub.sent, 1)
	msg := pub.sent[0]
	assert.Equal(t, submissionSubject, msg.subject)
	assert.Equal(t, map[string]string{
		"submissionId":  "sub-0001",
		"caseReference": caseRef,
		"targetSystem":  "SOA",
	}, msg.attrs)

	assert.Equal(t, caseRef, gjson.GetBytes(msg.body, "caseReferenceNumber").String())
	assert.Equal(t, "CLIENT_PROV_LA", gjson.GetBytes(msg.body, "applicationDetails.meansAssesments.0.results.0.attribute").String())
	assert.False(t, gjson.GetBytes(msg.body, "applicationDetails.meritsAssesments").Exists())
	assert.Equal(t, "Acme Ltd", gjson.GetBytes(msg.body, "applicationDetails.otherParties.0.organisation.organizationName").String())
	assert.Equal(t, source.SystemSOA, adapters.Detect(msg.body))
}

// The published body decodes back to the application that was submitted.
func TestHandler_Execute_TargetOverride(t *testing.T) {
	pub := &fakePublisher{}
	h := newTestHandler(t, newMemStore(t, source.SystemSOA, false), pub)

	input := createTestInput()
	input.TargetSystem = "ebs"
	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "EBS", out.TargetSystem)
	assert.False(t, out.MeansAssessed)

	require.Len(t, pub.sent, 1)
	body := pub.sent[0].body
	assert.Equal(t, "SUBMITTER", gjson.GetBytes(body, "recordHistory.lastUpdatedBy.loginId").String())

	decoded, err := adapters.Decode(source.SystemEBS, body)
	require.NoError(t, err)
	assert.Equal(t, caseRef, decoded.Core().CaseReferenceNumber)
	require.Len(t, decoded.Parties(), 1)
	assert.Equal(t, "OP2", decoded.Parties()[0].OtherPartyID)
}

type fakeSNS struct {
	in *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.in = in
	return &sns.PublishOutput{MessageId: awssdk.String("sns-42")}, nil
}

func TestHandler_Execute_SNSPublisher(t *testing.T) {
	api := &fakeSNS{}
	h := newTestHandler(t, newMemStore(t, source.SystemEBS, true),
		aws.NewPublisherWithAPI(api, "arn:aws:sns:eu-west-2:000000000000:caab-submissions"))

	out, err := h.Execute(context.Background(), createTestInput())
	require.NoError(t, err)
	assert.Equal(t, "sns-42", out.TransactionID)

	require.NotNil(t, api.in)
	assert.Equal(t, "arn:aws:sns:eu-west-2:000000000000:caab-submissions", awssdk.ToString(api.in.TopicArn))
	assert.Equal(t, "sub-0001", awssdk.ToString(api.in.MessageAttributes["submissionId"].StringValue))
	assert.True(t, json.Valid([]byte(awssdk.ToString(api.in.Message))))
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_ApplicationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT source_system, payload FROM case_applications`).
		WithArgs(caseRef).
		WillReturnError(sql.ErrNoRows)

	pub := &fakePublisher{}
	h := newTestHandler(t, store.NewCases(db), pub)
	_, err = h.Execute(context.Background(), createTestInput())
	assert.Equal(t, commonErrors.ErrCodeApplicationNotFound, commonErrors.Normalize(err).Code)
	assert.Empty(t, pub.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_GraphLoadError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	payload, err := json.Marshal(testApplication())
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT source_system, payload FROM case_applications`).
		WithArgs(caseRef).
		WillReturnRows(sqlmock.NewRows([]string{"source_system", "payload"}).AddRow("EBS", payload))
	mock.ExpectQuery(`SELECT payload FROM assessments`).
		WithArgs(caseRef, assessment.Means.Name).
		WillReturnError(errors.New("connection reset"))

	h := newTestHandler(t, store.NewCases(db), &fakePublisher{})
	_, err = h.Execute(context.Background(), createTestInput())
	assert.Equal(t, commonErrors.ErrCodeQueryExecutionFailed, commonErrors.Normalize(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UnknownTarget(t *testing.T) {
	h := newTestHandler(t, newMemStore(t, source.SystemEBS, false), &fakePublisher{})

	input := createTestInput()
	input.TargetSystem = "CCMS"
	_, err := h.Execute(context.Background(), input)
	assert.Equal(t, commonErrors.ErrCodeUnknownSourceSystem, commonErrors.Normalize(err).Code)
}

func TestHandler_Execute_InconsistentGraph(t *testing.T) {
	s := newMemStore(t, source.SystemEBS, true)
	s.graphs[assessment.Means.Name].EntityTypes[0].Entities[0].Name = "300009999999"
	pub := &fakePublisher{}
	h := newTestHandler(t, s, pub)

	_, err := h.Execute(context.Background(), createTestInput())
	assert.Equal(t, commonErrors.ErrCodeAssessmentInconsistent, commonErrors.Normalize(err).Code)
	assert.Empty(t, pub.sent)
}

func TestHandler_Execute_UncorrelatedProceeding(t *testing.T) {
	s := newMemStore(t, source.SystemEBS, false)
	s.app.Proceedings = append(s.app.Proceedings, models.Proceeding{ProceedingType: models.DisplayValue{ID: "PR2"}})
	h := newTestHandler(t, s, &fakePublisher{})

	_, err := h.Execute(context.Background(), createTestInput())
	assert.Equal(t, commonErrors.ErrCodeMissingCorrelationKey, commonErrors.Normalize(err).Code)
}

func TestHandler_Execute_PublishError(t *testing.T) {
	h := newTestHandler(t, newMemStore(t, source.SystemEBS, false), &fakePublisher{err: errors.New("throttled")})

	_, err := h.Execute(context.Background(), createTestInput())
	stdErr := commonErrors.Normalize(err)
	assert.Equal(t, commonErrors.ErrCodeSubmissionPublishFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
