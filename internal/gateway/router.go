package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/filegate/internal/metrics"
	"github.com/dmitrymomot/filegate/pkg/logger"
	"github.com/dmitrymomot/filegate/pkg/storage"
)

// Config wires the gateway. Backend is required; zero values elsewhere
// select the defaults.
type Config struct {
	Backend storage.Storage
	Logger  *slog.Logger

	// ClaimFields is the identity claim lookup order (default DefaultClaimFields).
	ClaimFields []string

	CORS CORSConfig

	// QuotaScope selects bucket-wide or per-tenant accounting (default bucket).
	QuotaScope QuotaScope

	// QuotaCeiling is the byte limit (default DefaultQuotaCeiling).
	QuotaCeiling int64

	// GrantExpiry is the lifetime of presigned URLs (default DefaultGrantExpiry).
	GrantExpiry time.Duration

	// SkipExistenceCheck issues download grants without probing the key first.
	SkipExistenceCheck bool

	// AttachmentDownloads adds Content-Disposition: attachment to download grants.
	AttachmentDownloads bool
}

// ErrNoBackend is returned by New when Config.Backend is nil.
var ErrNoBackend = errors.New("gateway: backend is required")

// Stage is a step of the request state machine. Requests move through the
// stages in order and jump straight to StageResponded on the first failure.
type Stage int

const (
	StageUnauthenticated Stage = iota
	StageValidating
	StageAuthorizing
	StageExecuting
	StageResponded
)

func (s Stage) String() string {
	switch s {
	case StageUnauthenticated:
		return "unauthenticated"
	case StageValidating:
		return "validating"
	case StageAuthorizing:
		return "authorizing"
	case StageExecuting:
		return "executing"
	default:
		return "responded"
	}
}

// exchange carries per-request state between steps.
type exchange struct {
	req      Request
	identity Identity
	filename Filename
	key      string
	size     int64
	body     any
}

type step struct {
	run   func(ctx context.Context, x *exchange) error
	stage Stage
}

// Router dispatches normalized requests and always answers with an envelope.
// It holds no per-request state and is safe for concurrent use.
type Router struct {
	logger    *slog.Logger
	identity  IdentityResolver
	quota     *QuotaAccountant
	grants    *GrantIssuer
	formatter *Formatter
	pipelines map[Operation][]step
}

// New creates a Router from cfg.
func New(cfg Config) (*Router, error) {
	if cfg.Backend == nil {
		return nil, ErrNoBackend
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNope()
	}

	r := &Router{
		logger:    cfg.Logger,
		identity:  NewIdentityResolver(cfg.ClaimFields...),
		quota:     NewQuotaAccountant(cfg.Backend, cfg.QuotaCeiling, cfg.QuotaScope),
		formatter: NewFormatter(cfg.CORS),
		grants: NewGrantIssuer(cfg.Backend,
			WithGrantExpiry(cfg.GrantExpiry),
			WithExistenceCheck(!cfg.SkipExistenceCheck),
			WithAttachmentDownloads(cfg.AttachmentDownloads),
		),
	}

	r.pipelines = map[Operation][]step{
		OpUpload: {
			{stage: StageValidating, run: r.requireFilename},
			{stage: StageValidating, run: r.parseSize},
			{stage: StageAuthorizing, run: r.admitQuota},
			{stage: StageExecuting, run: r.issueUpload},
		},
		OpDownload: {
			{stage: StageValidating, run: r.requireFilename},
			{stage: StageExecuting, run: r.issueDownload},
		},
		OpList: {
			{stage: StageExecuting, run: r.listFiles},
		},
		OpDelete: {
			{stage: StageValidating, run: r.requireFilename},
			{stage: StageExecuting, run: r.deleteFile},
		},
	}

	return r, nil
}

// Formatter returns the router's envelope formatter.
func (r *Router) Formatter() *Formatter {
	return r.formatter
}

// Handle runs req through the state machine. Identity is resolved before
// routing, so an anonymous request is rejected whatever its path.
func (r *Router) Handle(ctx context.Context, req Request) (env Envelope) {
	op := OpUnknown
	stage := StageUnauthenticated

	defer func() {
		if p := recover(); p != nil {
			r.logger.ErrorContext(ctx, "panic while handling request",
				slog.String("operation", op.String()),
				slog.String("stage", stage.String()),
				slog.Any("panic", p),
			)
			env = r.formatter.Error(fmt.Errorf("internal error: %v", p))
		}
		metrics.ObserveRequest(op.String(), env.StatusCode)
	}()

	x := &exchange{req: req}

	id, ok := r.identity.Resolve(req.Claims)
	if !ok {
		return r.fail(ctx, op, stage, missingIdentity())
	}
	x.identity = id
	ctx = logger.WithTenant(ctx, id.String())

	op = req.Operation()
	pipeline, ok := r.pipelines[op]
	if !ok {
		return r.fail(ctx, op, StageValidating, routeNotFound())
	}

	for _, s := range pipeline {
		stage = s.stage
		if err := s.run(ctx, x); err != nil {
			return r.fail(ctx, op, stage, err)
		}
	}

	r.logger.InfoContext(ctx, "request handled",
		slog.String("operation", op.String()),
		slog.String("key", x.key),
	)
	return r.formatter.Format(http.StatusOK, x.body)
}

// fail logs the failure and converts it into an envelope.
func (r *Router) fail(ctx context.Context, op Operation, stage Stage, err error) Envelope {
	gwErr := AsError(err)

	attrs := []any{
		slog.String("operation", op.String()),
		slog.String("stage", stage.String()),
		slog.String("kind", gwErr.Kind.String()),
	}
	if gwErr.Err != nil {
		attrs = append(attrs, slog.String("cause", gwErr.Err.Error()))
	}

	if gwErr.Kind == KindBackendError {
		r.logger.ErrorContext(ctx, "backend call failed", attrs...)
	} else {
		r.logger.InfoContext(ctx, "request rejected", attrs...)
	}

	return r.formatter.Error(gwErr)
}

func (r *Router) requireFilename(_ context.Context, x *exchange) error {
	raw, ok := x.req.Param(ParamFilename)
	if !ok {
		return missingParameter(ParamFilename)
	}
	name, err := ValidateFilename(raw)
	if err != nil {
		return err
	}
	x.filename = name
	x.key = KeyFor(x.identity, name)
	return nil
}

// parseSize reads the optional declared upload size. Absent means zero.
func (r *Router) parseSize(_ context.Context, x *exchange) error {
	raw, ok := x.req.Param(ParamSize)
	if !ok {
		return nil
	}
	size, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return invalidParameter(ParamSize, err)
	}
	if size < 0 {
		return invalidParameter(ParamSize, fmt.Errorf("negative size %d", size))
	}
	x.size = size
	return nil
}

func (r *Router) admitQuota(ctx context.Context, x *exchange) error {
	usage, err := r.quota.Admit(ctx, x.identity, x.size)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			r.logger.WarnContext(ctx, "quota exceeded",
				slog.Int64("usage", usage),
				slog.Int64("size", x.size),
				slog.Int64("ceiling", r.quota.Ceiling()),
			)
		}
		return err
	}
	return nil
}

func (r *Router) issueUpload(ctx context.Context, x *exchange) error {
	grant, err := r.grants.IssueUpload(ctx, x.key)
	if err != nil {
		return err
	}
	metrics.ObserveGrant(OpUpload.String())
	x.body = UploadBody{UploadURL: grant.URL}
	return nil
}

func (r *Router) issueDownload(ctx context.Context, x *exchange) error {
	grant, err := r.grants.IssueDownload(ctx, x.key, x.filename)
	if err != nil {
		return err
	}
	metrics.ObserveGrant(OpDownload.String())
	x.body = DownloadBody{DownloadURL: grant.URL}
	return nil
}

func (r *Router) listFiles(ctx context.Context, x *exchange) error {
	files, err := r.grants.List(ctx, PrefixFor(x.identity))
	if err != nil {
		return err
	}
	x.body = ListBody{Files: files}
	return nil
}

func (r *Router) deleteFile(ctx context.Context, x *exchange) error {
	if err := r.grants.Delete(ctx, x.key); err != nil {
		return err
	}
	x.body = MessageBody{Message: "File deleted successfully"}
	return nil
}
