// internal/workers/application/submit-case-application/handler.go
package submitcaseapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"caab-workers/internal/assessment"
	commonErrors "caab-workers/internal/common/errors"
	"caab-workers/internal/common/logger"
	"caab-workers/internal/common/metrics"
	"caab-workers/internal/common/observability"
	"caab-workers/internal/common/validation"
	"caab-workers/internal/correlate"
	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/adapters"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "submit-case-application"

	submissionSubject = "case-submission"
)

// CaseStore is the read side of store.Cases.
type CaseStore interface {
	LoadApplication(ctx context.Context, caseRef string) (models.Application, source.System, error)
	LoadGraph(ctx context.Context, caseRef, name string) (*models.AssessmentGraph, error)
}

// Publisher delivers an encoded submission; *aws.Publisher implements it over SNS.
type Publisher interface {
	PublishJSON(ctx context.Context, subject string, body []byte, attrs map[string]string) (string, error)
}

type Handler struct {
	config     *Config
	store      CaseStore
	publisher  Publisher
	validator  *validation.Validator
	errHandler *commonErrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
	newID      func() string
}

func NewHandler(
	config *Config,
	store CaseStore,
	publisher Publisher,
	validator *validation.Validator,
	log logger.Logger,
) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		publisher:  publisher,
		validator:  validator,
		errHandler: commonErrors.NewErrorHandler(l),
		logger:     l,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if h.validator != nil {
		res, err := h.validator.ValidateInput(TaskType, []byte(job.Variables))
		if err != nil {
			h.fail(ctx, client, job, commonErrors.NewInternalError(err))
			return
		}
		if !res.Valid {
			h.fail(ctx, client, job, commonErrors.NewPayloadInvalidError(res.Summary()))
			return
		}
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, commonErrors.NewPayloadInvalidError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := correlate.CaseReference(input.CaseReferenceNumber); err != nil {
		return nil, commonErrors.NewMissingCorrelationKeyError(err.Error())
	}

	app, mappedFrom, err := h.store.LoadApplication(ctx, input.CaseReferenceNumber)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, commonErrors.NewApplicationNotFoundError(input.CaseReferenceNumber)
	case err != nil:
		return nil, commonErrors.NewQueryExecutionFailedError("load application", err)
	}

	target := mappedFrom
	if input.TargetSystem != "" {
		if target, err = adapters.ParseSystem(input.TargetSystem); err != nil {
			return nil, commonErrors.NewUnknownSourceSystemError(input.TargetSystem)
		}
	}
	encoder, err := adapters.EncoderFor(target)
	if err != nil {
		return nil, commonErrors.NewUnknownSourceSystemError(string(target))
	}

	ctx, span := observability.StartSpan(ctx, "submit-case-application",
		attribute.String("target", string(target)),
		attribute.String("caseReference", input.CaseReferenceNumber))
	defer span.End()

	means, err := h.result(ctx, input.CaseReferenceNumber, assessment.Means)
	if err != nil {
		return nil, err
	}
	merits, err := h.result(ctx, input.CaseReferenceNumber, assessment.Merits)
	if err != nil {
		return nil, err
	}

	sub, err := mapping.Reverse(app, mapping.ReverseOptions{
		Target: target,
		User: source.User{
			LoginID:  input.User.LoginID,
			Username: input.User.Username,
			UserType: input.User.UserType,
		},
		Now:    h.now(),
		Means:  means,
		Merits: merits,
	})
	if err != nil {
		var missing *correlate.MissingKeyError
		if errors.As(err, &missing) {
			return nil, commonErrors.NewMissingCorrelationKeyError(missing.Error())
		}
		return nil, commonErrors.NewInternalError(err)
	}

	body, err := encoder.Encode(sub)
	if err != nil {
		return nil, commonErrors.NewInternalError(fmt.Errorf("encode %s submission: %w", target, err))
	}

	submissionID := h.newID()
	txID, err := h.publisher.PublishJSON(ctx, submissionSubject, body, map[string]string{
		"submissionId":  submissionID,
		"caseReference": input.CaseReferenceNumber,
		"targetSystem":  string(target),
	})
	if err != nil {
		return nil, commonErrors.NewSubmissionPublishFailedError(err)
	}

	h.logger.Info("case submission published", map[string]interface{}{
		"caseReference": input.CaseReferenceNumber,
		"targetSystem":  string(target),
		"submissionId":  submissionID,
		"transactionId": txID,
		"bytes":         len(body),
	})

	return &Output{
		SubmissionID:        submissionID,
		TransactionID:       txID,
		TargetSystem:        string(target),
		CaseReferenceNumber: input.CaseReferenceNumber,
		MeansAssessed:       means != nil,
		MeritsAssessed:      merits != nil,
	}, nil
}

// result folds the stored graph for rb; a case without one submits no result for it.
func (h *Handler) result(ctx context.Context, caseRef string, rb assessment.Rulebase) (*source.AssessmentResult, error) {
	g, err := h.store.LoadGraph(ctx, caseRef, rb.Name)
	if err != nil {
		return nil, commonErrors.NewQueryExecutionFailedError("load "+rb.Name, err)
	}
	if g != nil && !assessment.ReferenceConsistent(g, caseRef) {
		return nil, commonErrors.NewAssessmentInconsistentError(caseRef, rb.Name)
	}
	return assessment.ToResult(g, rb), nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.JobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":       job.Key,
		"submissionId": output.SubmissionID,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.JobsFailed.WithLabelValues(TaskType, string(commonErrors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
