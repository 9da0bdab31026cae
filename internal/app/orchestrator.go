package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kapu/contentful-constructor-go/internal/cache"
	"github.com/kapu/contentful-constructor-go/internal/config"
	"github.com/kapu/contentful-constructor-go/internal/constants"
	"github.com/kapu/contentful-constructor-go/internal/contentful"
	"github.com/kapu/contentful-constructor-go/internal/constructor"
	"github.com/kapu/contentful-constructor-go/internal/domain"
	"github.com/kapu/contentful-constructor-go/internal/indexer"
	"github.com/kapu/contentful-constructor-go/internal/store"
	"github.com/kapu/contentful-constructor-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Uploader is the destination-catalog capability the orchestrator needs.
// Satisfied by constructor.Client; faked in tests.
type Uploader interface {
	UploadCatalog(ctx context.Context, itemsJSONL string, creds constructor.Credentials) (*constructor.UploadResult, error)
	PollTask(ctx context.Context, taskID string, creds constructor.Credentials, interval time.Duration) (map[string]any, error)
}

// ProgressEvent is one step of a running indexation, published for the
// operator panel's live stream.
type ProgressEvent struct {
	Type        string    `json:"type"`
	ContentType string    `json:"contentType,omitempty"`
	Locale      string    `json:"locale,omitempty"`
	Message     string    `json:"message,omitempty"`
	Count       int       `json:"count,omitempty"`
	At          time.Time `json:"at"`
}

type ProgressPublisher interface {
	Publish(ev ProgressEvent)
}

// RunParams are the caller-supplied invocation parameters.
type RunParams struct {
	ContentTypeID string `json:"contentTypeId"`
	// Per-run overrides; applied to both locales.
	Section      string `json:"section,omitempty"`
	Key          string `json:"constructorKey,omitempty"`
	Token        string `json:"constructorToken,omitempty"`
	WaitForTasks bool   `json:"waitForTasks,omitempty"`
}

// LocaleResult summarizes one locale's upload.
type LocaleResult struct {
	Uploaded int    `json:"uploaded"`
	Section  string `json:"section"`
	TaskID   string `json:"taskId,omitempty"`
}

type LocaleResults struct {
	EN LocaleResult `json:"en"`
	FR LocaleResult `json:"fr"`
}

// RunResult is the orchestrator's structured response. Ok=false with no
// error marks a caller-input condition (unsupported content type), not a
// system fault.
type RunResult struct {
	Ok      bool           `json:"ok"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
	Result  *LocaleResults `json:"result,omitempty"`
}

// Dependencies wires the orchestrator. Cache, Runs and Progress are optional.
type Dependencies struct {
	Registry    *indexer.Registry
	Uploader    Uploader
	Credentials config.ConstructorConfig
	Indexing    config.IndexingConfig
	Cache       *cache.Service
	Runs        *store.RunRepository
	Progress    ProgressPublisher
	Logger      *zap.Logger
}

// Orchestrator runs one full indexation: resolve indexer, paginate every
// entry, fan out per locale, upload, report. Stateless across runs.
type Orchestrator struct {
	deps *Dependencies
}

func NewOrchestrator(deps *Dependencies) (*Orchestrator, error) {
	if deps == nil || deps.Registry == nil || deps.Uploader == nil || deps.Logger == nil {
		return nil, fmt.Errorf("orchestrator dependencies incomplete")
	}
	if deps.Indexing.PageSize <= 0 {
		deps.Indexing.PageSize = constants.PaginationConfig.PageSize
	}
	return &Orchestrator{deps: deps}, nil
}

type localeUpload struct {
	locale domain.Locale
	creds  constructor.Credentials
	jsonl  string
	count  int

	result *constructor.UploadResult
}

// Run executes one indexation pass:
// resolve indexer -> paginate all -> normalize+map per locale ->
// upload EN -> upload FR -> report.
func (o *Orchestrator) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	start := time.Now()
	logger := o.deps.Logger

	if strings.TrimSpace(params.ContentTypeID) == "" {
		return nil, errors.NewValidationError("contentTypeId is required", "contentTypeId", params.ContentTypeID)
	}

	idx, exact := o.deps.Registry.Resolve(params.ContentTypeID)
	if !exact {
		if o.deps.Indexing.StrictContentTypes {
			return &RunResult{
				Ok:      false,
				Message: fmt.Sprintf("unsupported content type: %q", params.ContentTypeID),
				Meta:    map[string]any{"contentTypeId": params.ContentTypeID},
			}, nil
		}
		logger.Warn("Unknown content type, using default indexer",
			zap.String("requested", params.ContentTypeID),
			zap.String("resolved", idx.ID()),
		)
	}

	o.publish(ProgressEvent{Type: "run_started", ContentType: idx.ID()})
	logger.Info("Indexation started",
		zap.String("content_type", idx.ID()),
		zap.Int("page_size", o.deps.Indexing.PageSize),
	)

	entries, err := contentful.CollectAll(ctx, idx.FetchPage, o.deps.Indexing.PageSize)
	if err != nil {
		o.publish(ProgressEvent{Type: "run_failed", ContentType: idx.ID(), Message: err.Error()})
		return nil, err
	}

	if len(entries) == 0 {
		res := &RunResult{
			Ok:      true,
			Message: fmt.Sprintf("No %s entries found; nothing to upload.", idx.ID()),
			Meta: map[string]any{
				"contentTypeId": idx.ID(),
				"total":         0,
				"pageSize":      o.deps.Indexing.PageSize,
			},
		}
		o.finishRun(ctx, idx.ID(), res, start)
		return res, nil
	}

	o.publish(ProgressEvent{Type: "entries_collected", ContentType: idx.ID(), Count: len(entries)})

	// Both locale item lists come from the same fetched batch; no re-fetch.
	uploads := []*localeUpload{
		o.prepareLocale(domain.LocaleEN, o.deps.Credentials.EN, params),
		o.prepareLocale(domain.LocaleFR, o.deps.Credentials.FR, params),
	}
	for _, up := range uploads {
		jsonl, err := constructor.BuildJSONL(itemsForLocale(idx, entries, up.locale))
		if err != nil {
			o.publish(ProgressEvent{Type: "run_failed", ContentType: idx.ID(), Message: err.Error()})
			return nil, err
		}
		up.jsonl = jsonl
		up.count = len(entries)
	}

	if o.deps.Indexing.ConcurrentUploads {
		err = o.uploadConcurrent(ctx, idx.ID(), uploads)
	} else {
		err = o.uploadSequential(ctx, idx.ID(), uploads)
	}
	if err != nil {
		o.publish(ProgressEvent{Type: "run_failed", ContentType: idx.ID(), Message: err.Error()})
		return nil, err
	}

	if params.WaitForTasks || o.deps.Indexing.WaitForTasks {
		if err := o.waitForTasks(ctx, uploads); err != nil {
			return nil, err
		}
	}

	res := &RunResult{
		Ok: true,
		Message: fmt.Sprintf("Uploaded %d %s entries per locale (en: %s, fr: %s).",
			len(entries), idx.ID(), uploads[0].creds.Section, uploads[1].creds.Section),
		Meta: map[string]any{
			"contentTypeId": idx.ID(),
			"total":         len(entries),
			"pageSize":      o.deps.Indexing.PageSize,
		},
		Result: &LocaleResults{
			EN: localeResult(uploads[0]),
			FR: localeResult(uploads[1]),
		},
	}

	o.finishRun(ctx, idx.ID(), res, start)
	return res, nil
}

func (o *Orchestrator) prepareLocale(locale domain.Locale, creds config.LocaleCredentials, params RunParams) *localeUpload {
	resolved := constructor.Credentials{
		Key:     creds.Key,
		Token:   creds.Token,
		Section: creds.Section,
	}
	if params.Key != "" {
		resolved.Key = params.Key
	}
	if params.Token != "" {
		resolved.Token = params.Token
	}
	if params.Section != "" {
		resolved.Section = params.Section
	}
	return &localeUpload{locale: locale, creds: resolved}
}

func itemsForLocale(idx indexer.Indexer, entries []*domain.RawEntry, locale domain.Locale) []*domain.CatalogItem {
	items := make([]*domain.CatalogItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, idx.Map(idx.Normalize(entry, locale)))
	}
	return items
}

// uploadSequential uploads EN then FR strictly in order so interleaved
// diagnostics stay coherent. This is the default.
func (o *Orchestrator) uploadSequential(ctx context.Context, contentType string, uploads []*localeUpload) error {
	for _, up := range uploads {
		if err := o.uploadOne(ctx, contentType, up); err != nil {
			return err
		}
	}
	return nil
}

// uploadConcurrent uploads both locales in parallel. The locales share one
// fetched entry set, so the pagination invariant is unaffected; only log
// ordering is traded away.
func (o *Orchestrator) uploadConcurrent(ctx context.Context, contentType string, uploads []*localeUpload) error {
	p := pool.New().WithMaxGoroutines(len(uploads))

	errs := make([]error, len(uploads))
	var mu sync.Mutex

	for i, up := range uploads {
		i, up := i, up
		p.Go(func() {
			err := o.uploadOne(ctx, contentType, up)
			mu.Lock()
			errs[i] = err
			mu.Unlock()
		})
	}
	p.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) uploadOne(ctx context.Context, contentType string, up *localeUpload) error {
	o.publish(ProgressEvent{
		Type:        "upload_started",
		ContentType: contentType,
		Locale:      string(up.locale),
		Count:       up.count,
	})

	result, err := o.deps.Uploader.UploadCatalog(ctx, up.jsonl, up.creds)
	if err != nil {
		return err
	}
	up.result = result

	o.deps.Logger.Info("Catalog uploaded",
		zap.String("content_type", contentType),
		zap.String("locale", string(up.locale)),
		zap.String("section", up.creds.Section),
		zap.Int("items", up.count),
		zap.String("task_id", result.TaskID),
	)
	o.publish(ProgressEvent{
		Type:        "upload_finished",
		ContentType: contentType,
		Locale:      string(up.locale),
		Count:       up.count,
		Message:     result.TaskID,
	})
	return nil
}

func (o *Orchestrator) waitForTasks(ctx context.Context, uploads []*localeUpload) error {
	for _, up := range uploads {
		if up.result == nil || up.result.TaskID == "" {
			continue
		}
		body, err := o.deps.Uploader.PollTask(ctx, up.result.TaskID, up.creds, constants.TaskPollConfig.Interval)
		if err != nil {
			return err
		}
		if constructor.TaskStatus(body) == constructor.TaskStatusFailed {
			return errors.NewAPIError(
				fmt.Sprintf("ingest task %s failed", up.result.TaskID), 502,
				map[string]any{"locale": string(up.locale)},
			)
		}
	}
	return nil
}

func localeResult(up *localeUpload) LocaleResult {
	lr := LocaleResult{
		Uploaded: up.count,
		Section:  up.creds.Section,
	}
	if up.result != nil {
		lr.TaskID = up.result.TaskID
	}
	return lr
}

// finishRun records the outcome in the optional history store and summary
// cache. Failures here never fail a run that already uploaded.
func (o *Orchestrator) finishRun(ctx context.Context, contentType string, res *RunResult, start time.Time) {
	o.publish(ProgressEvent{Type: "run_finished", ContentType: contentType, Message: res.Message})

	rec := &store.RunRecord{
		ContentType: contentType,
		Ok:          res.Ok,
		Message:     res.Message,
		DurationMS:  time.Since(start).Milliseconds(),
	}
	if res.Result != nil {
		rec.ENUploaded = res.Result.EN.Uploaded
		rec.FRUploaded = res.Result.FR.Uploaded
		rec.ENTaskID = res.Result.EN.TaskID
		rec.FRTaskID = res.Result.FR.TaskID
	}

	if o.deps.Runs != nil {
		if err := o.deps.Runs.Record(ctx, rec); err != nil {
			o.deps.Logger.Error("Failed to record run", zap.Error(err))
		}
	}
	if o.deps.Cache != nil {
		if err := o.deps.Cache.SetRunSummary(ctx, contentType, res, constants.ServerConfig.RunCacheTTL); err != nil {
			o.deps.Logger.Error("Failed to cache run summary", zap.Error(err))
		}
	}
}

func (o *Orchestrator) publish(ev ProgressEvent) {
	if o.deps.Progress == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	o.deps.Progress.Publish(ev)
}
