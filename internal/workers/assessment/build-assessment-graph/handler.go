// internal/workers/assessment/build-assessment-graph/handler.go
package buildassessmentgraph

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
	"caab-workers/internal/lookup"
	"caab-workers/internal/mapping/source"
	"caab-workers/internal/models"
	"caab-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "build-assessment-graph"
)

// GraphStore is the slice of store.Cases this worker uses.
type GraphStore interface {
	LoadApplication(ctx context.Context, caseRef string) (models.Application, source.System, error)
	LoadGraph(ctx context.Context, caseRef, name string) (*models.AssessmentGraph, error)
	SaveGraph(ctx context.Context, g *models.AssessmentGraph) error
	DeleteGraph(ctx context.Context, caseRef, name string) error
}

type Handler struct {
	config     *Config
	store      GraphStore
	resolver   lookup.Resolver
	validator  *validation.Validator
	obs        *observability.Observability
	errHandler *commonErrors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(
	config *Config,
	store GraphStore,
	resolver lookup.Resolver,
	validator *validation.Validator,
	obs *observability.Observability,
	log logger.Logger,
) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		store:      store,
		resolver:   resolver,
		validator:  validator,
		obs:        obs,
		errHandler: commonErrors.NewErrorHandler(l),
		logger:     l,
		now:        func() time.Time { return time.Now().UTC() },
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
	rb, err := assessment.RulebaseByName(input.Rulebase)
	if err != nil {
		return nil, commonErrors.NewUnknownRulebaseError(input.Rulebase)
	}
	if err := correlate.CaseReference(input.CaseReferenceNumber); err != nil {
		return nil, commonErrors.NewMissingCorrelationKeyError(err.Error())
	}

	ctx, span := observability.StartSpan(ctx, "build-assessment-graph",
		attribute.String("rulebase", rb.Name),
		attribute.String("caseReference", input.CaseReferenceNumber))
	defer span.End()

	app, _, err := h.store.LoadApplication(ctx, input.CaseReferenceNumber)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, commonErrors.NewApplicationNotFoundError(input.CaseReferenceNumber)
	case err != nil:
		return nil, commonErrors.NewQueryExecutionFailedError("load application", err)
	}

	titles, err := h.titles(ctx, app.Opponents)
	if err != nil {
		return nil, err
	}

	prior, err := h.store.LoadGraph(ctx, input.CaseReferenceNumber, rb.Name)
	if err != nil {
		return nil, commonErrors.NewQueryExecutionFailedError("load assessment", err)
	}
	if prior != nil && !assessment.ReferenceConsistent(prior, input.CaseReferenceNumber) {
		h.logger.Warn("discarding assessment for another case", map[string]interface{}{
			"error": commonErrors.NewAssessmentInconsistentError(input.CaseReferenceNumber, rb.Name).Error(),
		})
		if err := h.store.DeleteGraph(ctx, input.CaseReferenceNumber, rb.Name); err != nil {
			return nil, commonErrors.NewQueryExecutionFailedError("delete assessment", err)
		}
		prior = nil
	}

	fresh, err := assessment.Project(app, rb, assessment.Context{
		Client: input.Client,
		User:   input.User,
		Titles: titles,
		Now:    h.now(),
	})
	if err != nil {
		var missing *correlate.MissingKeyError
		if errors.As(err, &missing) {
			return nil, commonErrors.NewMissingCorrelationKeyError(missing.Error())
		}
		return nil, commonErrors.NewInternalError(err)
	}

	merged := assessment.Merge(prior, fresh)
	status := assessment.Status(app, merged, rb)
	required := assessment.ReassessmentRequired(app, merged, rb)
	typeChanged := assessment.ApplicationTypeChanged(app, merged)

	graph := assessment.Prune(merged, app)
	graph.Status = status

	if err := h.store.SaveGraph(ctx, graph); err != nil {
		return nil, commonErrors.NewDatabaseInsertFailedError(err)
	}
	prepop := *fresh
	prepop.Name = rb.PrepopName()
	if err := h.store.SaveGraph(ctx, &prepop); err != nil {
		return nil, commonErrors.NewDatabaseInsertFailedError(err)
	}

	h.obs.RecordGraphSize(ctx, rb.Name, entityCount(graph))

	h.logger.Info("assessment graph built", map[string]interface{}{
		"caseReference":          input.CaseReferenceNumber,
		"rulebase":               rb.Name,
		"status":                 status,
		"reassessmentRequired":   required,
		"applicationTypeChanged": typeChanged,
		"priorGraph":             prior != nil,
	})

	return &Output{
		Assessment:             graph,
		Status:                 status,
		ReassessmentRequired:   required,
		ApplicationTypeChanged: typeChanged,
	}, nil
}

// titles resolves the display text of every individual opponent's title code.
// Unknown codes are left out and shown raw.
func (h *Handler) titles(ctx context.Context, opponents []models.Opponent) (map[string]string, error) {
	out := map[string]string{}
	for _, o := range opponents {
		ind := o.Individual()
		if ind == nil || ind.Title == "" {
			continue
		}
		if _, done := out[ind.Title]; done {
			continue
		}
		v, err := h.resolver.Value(ctx, lookup.DomainContactTitle, ind.Title)
		switch {
		case errors.Is(err, lookup.ErrNotFound):
			continue
		case err != nil:
			return nil, commonErrors.NewLookupUnavailableError(err)
		}
		out[ind.Title] = v.Description
	}
	return out, nil
}

func entityCount(g *models.AssessmentGraph) int {
	n := 0
	for _, et := range g.EntityTypes {
		n += len(et.Entities)
	}
	return n
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
		"jobKey": job.Key,
		"status": output.Status,
	})
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.JobsFailed.WithLabelValues(TaskType, string(commonErrors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
