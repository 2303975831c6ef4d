// internal/workers/application/map-case-application/handler.go
package mapcaseapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	commonErrors "caab-workers/internal/common/errors"
	"caab-workers/internal/common/logger"
	"caab-workers/internal/common/metrics"
	"caab-workers/internal/common/observability"
	"caab-workers/internal/common/validation"
	"caab-workers/internal/correlate"
	"caab-workers/internal/lookup"
	"caab-workers/internal/mapping"
	"caab-workers/internal/mapping/adapters"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "map-case-application"
)

// ApplicationStore persists the mapped application.
type ApplicationStore interface {
	SaveApplication(ctx context.Context, system source.System, app models.Application) error
}

// IssueIndexer records data-quality issues.
type IssueIndexer interface {
	Index(ctx context.Context, caseRef string, system source.System, issues []mapping.Issue) error
}

type Handler struct {
	config     *Config
	resolver   lookup.Resolver
	store      ApplicationStore
	issues     IssueIndexer
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *commonErrors.ErrorHandler
	logger     logger.Logger
}

// NewHandler wires the worker. issues, validator and obs may be nil.
func NewHandler(
	config *Config,
	resolver lookup.Resolver,
	store ApplicationStore,
	issues IssueIndexer,
	validator *validation.Validator,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		resolver:   resolver,
		store:      store,
		issues:     issues,
		validator:  validator,
		obs:        obs,
		errHandler: commonErrors.NewErrorHandler(l),
		logger:     l,
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
	if len(input.CasePayload) == 0 {
		return nil, commonErrors.NewPayloadInvalidError("casePayload is required")
	}

	var system source.System
	if input.SourceSystem != "" {
		s, err := adapters.ParseSystem(input.SourceSystem)
		if err != nil {
			return nil, commonErrors.NewUnknownSourceSystemError(input.SourceSystem)
		}
		system = s
	} else {
		system = adapters.Detect(input.CasePayload)
	}

	ctx, span := observability.StartSpan(ctx, "map-case-application",
		attribute.String("source", string(system)))
	defer span.End()

	schema, err := adapters.Decode(system, input.CasePayload)
	if err != nil {
		return nil, commonErrors.NewPayloadInvalidError(err.Error())
	}

	app, issues, err := mapping.Transform(ctx, h.resolver, schema)
	if err != nil {
		h.obs.RecordMapping(ctx, string(system), "failed")
		var missing *correlate.MissingKeyError
		var lookupErr *mapping.LookupError
		switch {
		case errors.As(err, &missing):
			return nil, commonErrors.NewMissingCorrelationKeyError(missing.Error())
		case errors.As(err, &lookupErr):
			return nil, commonErrors.NewLookupUnavailableError(err)
		default:
			return nil, commonErrors.NewInternalError(err)
		}
	}

	if err := h.store.SaveApplication(ctx, system, app); err != nil {
		return nil, commonErrors.NewDatabaseInsertFailedError(err)
	}

	h.recordIssues(ctx, app.CaseReferenceNumber, system, issues)

	outcome := "mapped"
	if len(issues) > 0 {
		outcome = "mapped_with_issues"
	}
	h.obs.RecordMapping(ctx, string(system), outcome)

	h.logger.Info("case application mapped", map[string]interface{}{
		"caseReference": app.CaseReferenceNumber,
		"sourceSystem":  string(system),
		"requestedBy":   input.RequestedBy,
		"proceedings":   len(app.Proceedings),
		"opponents":     len(app.Opponents),
		"issueCount":    len(issues),
	})

	return &Output{
		CaseReferenceNumber: app.CaseReferenceNumber,
		SourceSystem:        string(system),
		Application:         app,
		IssueCount:          len(issues),
		Issues:              issues,
	}, nil
}

// recordIssues counts, logs and indexes issues. A failing index never fails the job.
func (h *Handler) recordIssues(ctx context.Context, caseRef string, system source.System, issues []mapping.Issue) {
	for _, is := range issues {
		metrics.DataQualityIssues.WithLabelValues(string(system), string(is.Kind)).Inc()
		if is.Kind == mapping.UnsupportedDiscriminantVariant {
			h.logger.Warn("defaulted variant", map[string]interface{}{
				"caseReference": caseRef,
				"path":          is.Path,
				"note":          is.Note,
			})
		}
	}

	if len(issues) == 0 || h.issues == nil || !h.config.IndexIssues {
		return
	}
	if err := h.issues.Index(ctx, caseRef, system, issues); err != nil {
		h.logger.Warn("issue indexing failed", map[string]interface{}{
			"caseReference": caseRef,
			"error":         commonErrors.NewIssueIndexFailedError(err).Error(),
		})
	}
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
		"jobKey":        job.Key,
		"caseReference": output.CaseReferenceNumber,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.JobsFailed.WithLabelValues(TaskType, string(commonErrors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
