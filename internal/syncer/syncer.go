// Package syncer drives the bidirectional exchange with the backend:
// completed audits go up, the store and product catalog comes down.
//
// Uploads run first so the backend sees field work even when the catalog
// refresh fails. Each upload that the server acknowledges deletes the audit
// locally; the first failure aborts the run and leaves the remaining audits
// intact for the next attempt. The catalog is replaced only after both
// fetches succeed and return data.
package syncer

import (
	"context"
	"log/slog"

	"github.com/gofrs/flock"

	"fieldaudit/internal/auditdb"
	"fieldaudit/internal/catalog"
	"fieldaudit/internal/config"
	"fieldaudit/internal/faults"
	"fieldaudit/internal/logging"
	"fieldaudit/internal/session"
)

// Backend is the remote surface the orchestrator needs; satisfied by
// api.Client.
type Backend interface {
	Stores(ctx context.Context, token string) ([]catalog.Store, error)
	Products(ctx context.Context, token string) ([]catalog.Product, error)
	UploadAudit(ctx context.Context, payload *auditdb.UploadPayload) error
}

// Result summarizes one sync run.
type Result struct {
	AuditsUploaded int
	AuditsDeleted  int
	Stores         int
	Products       int
}

// Orchestrator coordinates one sync at a time across the local stores.
type Orchestrator struct {
	cfg     *config.Config
	backend Backend
	db      *auditdb.DB
	catalog *catalog.Catalog
	sess    *session.Session
	logger  *slog.Logger
}

// New wires an orchestrator.
func New(cfg *config.Config, backend Backend, db *auditdb.DB, cat *catalog.Catalog, sess *session.Session, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:     cfg,
		backend: backend,
		db:      db,
		catalog: cat,
		sess:    sess,
		logger:  logging.WithComponent(logger, "syncer"),
	}
}

// Run executes a full sync. The data-dir file lock admits one run at a
// time; a second invocation fails fast instead of queueing.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	if !o.sess.Authenticated() {
		return nil, faults.State("not logged in")
	}

	lock := flock.New(o.cfg.SyncLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, faults.Storage("acquire sync lock", err)
	}
	if !locked {
		return nil, faults.Conflict("another sync is already running")
	}
	defer func() { _ = lock.Unlock() }()

	result := &Result{}
	if err := o.uploadCompleted(ctx, result); err != nil {
		return result, err
	}
	if err := o.refreshCatalog(ctx, result); err != nil {
		return result, err
	}

	o.sess.LastSyncedCatalogVersion = catalog.Version
	if err := session.Save(o.cfg.SessionPath(), o.sess); err != nil {
		return result, err
	}

	o.logger.Info("sync complete",
		logging.Int("audits_uploaded", result.AuditsUploaded),
		logging.Int("stores", result.Stores),
		logging.Int("products", result.Products))
	return result, nil
}

// uploadCompleted sends every completed audit, deleting each on success and
// aborting on the first failure.
func (o *Orchestrator) uploadCompleted(ctx context.Context, result *Result) error {
	audits, err := o.db.CompletedAudits(ctx, o.sess.User.ID)
	if err != nil {
		return err
	}

	for i := range audits {
		audit := &audits[i]
		payload, err := o.db.SerializeAudit(ctx, audit, o.sess.User)
		if err != nil {
			return err
		}
		if err := o.backend.UploadAudit(ctx, payload); err != nil {
			o.logger.Warn("audit upload failed, aborting sync",
				logging.String("audit_id", audit.ID), logging.Error(err))
			return err
		}
		result.AuditsUploaded++

		if err := o.db.DeleteAudit(ctx, audit); err != nil {
			return err
		}
		result.AuditsDeleted++
		o.logger.Info("audit uploaded", logging.String("audit_id", audit.ID))
	}
	return nil
}

// refreshCatalog fetches stores then products and swaps the catalog in one
// transaction. An empty fetch fails before anything is mutated.
func (o *Orchestrator) refreshCatalog(ctx context.Context, result *Result) error {
	stores, err := o.backend.Stores(ctx, o.sess.Token)
	if err != nil {
		return err
	}
	if len(stores) == 0 {
		return faults.Server("server returned no stores", nil)
	}

	products, err := o.backend.Products(ctx, o.sess.Token)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return faults.Server("server returned no products", nil)
	}

	if err := o.catalog.ReplaceAll(ctx, stores, products); err != nil {
		return err
	}
	result.Stores = len(stores)
	result.Products = len(products)
	return nil
}
