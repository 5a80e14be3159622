package sharepoint

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"rtm-portal/internal/cache"
	"rtm-portal/internal/config"
	"rtm-portal/internal/database"
	"rtm-portal/internal/model"
	"rtm-portal/internal/store"

	"go.uber.org/zap"
)

const (
	// LockKey guards against two syncs running at once.
	LockKey = "sharepoint:sync:lock"
	LockTTL = 30 * time.Minute
)

// Graph is the part of Client the syncer needs.
type Graph interface {
	ListItemKeys(ctx context.Context, field string) (map[string]string, error)
	CreateListItem(ctx context.Context, fields map[string]any) (string, error)
	ListDriveFiles(ctx context.Context) ([]string, error)
	UploadFile(ctx context.Context, name string, content []byte) (string, error)
}

var (
	listAllRegistrations   = store.ListAllRegistrations
	listAllBuildings       = store.ListAllBuildings
	markRegistrationSynced = store.MarkRegistrationSynced
	createSyncRun          = store.CreateSyncRun
	finishSyncRun          = store.FinishSyncRun
	sleep                  = sleepContext
)

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Syncer performs one-way incremental uploads. Items already present in
// SharePoint are never modified.
type Syncer struct {
	db     database.DB
	graph  Graph
	cfg    config.SharePointConfig
	logger *zap.Logger
}

func NewSyncer(db database.DB, graph Graph, cfg config.SharePointConfig, logger *zap.Logger) *Syncer {
	return &Syncer{db: db, graph: graph, cfg: cfg, logger: logger}
}

// BuildingFileName is the document library name for a building.
func BuildingFileName(buildingID string) string {
	return buildingID + ".json"
}

// RunExclusive runs a sync under the Redis lock, returning cache.ErrLocked
// when another run holds it.
func (s *Syncer) RunExclusive(ctx context.Context, c cache.Cache) (*model.SyncRun, error) {
	unlock, err := cache.Lock(ctx, c, LockKey, LockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release sync lock", zap.Error(err))
		}
	}()
	return s.Run(ctx)
}

// Run uploads local registrations and buildings missing from SharePoint.
// Individual upload failures are recorded on the returned run; an error is
// returned only when the run could not get started or was cancelled.
func (s *Syncer) Run(ctx context.Context) (*model.SyncRun, error) {
	run, err := createSyncRun(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	log := s.logger.With(zap.Int("sync_run_id", run.ID))
	log.Info("sharepoint sync started")

	runErr := s.sync(ctx, run, log)
	if runErr != nil {
		run.Errors = append(run.Errors, runErr.Error())
	}
	if err := finishSyncRun(context.WithoutCancel(ctx), s.db, run); err != nil {
		log.Error("persist sync run", zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	log.Info("sharepoint sync finished",
		zap.Int("registrations_uploaded", run.RegistrationsUploaded),
		zap.Int("buildings_uploaded", run.BuildingsUploaded),
		zap.Int("errors", len(run.Errors)),
	)
	if runErr != nil {
		return run, fmt.Errorf("Run: %w", runErr)
	}
	return run, nil
}

type upload struct {
	kind string
	id   string
	do   func(ctx context.Context) error
}

func (s *Syncer) sync(ctx context.Context, run *model.SyncRun, log *zap.Logger) error {
	keys, err := s.graph.ListItemKeys(ctx, s.cfg.KeyField)
	if err != nil {
		return fmt.Errorf("fetch list items: %w", err)
	}
	files, err := s.graph.ListDriveFiles(ctx)
	if err != nil {
		return fmt.Errorf("fetch library files: %w", err)
	}
	regs, err := listAllRegistrations(ctx, s.db)
	if err != nil {
		return fmt.Errorf("load registrations: %w", err)
	}
	buildings, err := listAllBuildings(ctx, s.db)
	if err != nil {
		return fmt.Errorf("load buildings: %w", err)
	}

	var todo []upload
	for i := range regs {
		r := regs[i]
		key := strconv.Itoa(r.ID)
		if itemID, ok := keys[key]; ok {
			// uploaded before but the local mark was lost
			if r.SharePointItemID == nil {
				if err := markRegistrationSynced(ctx, s.db, r.ID, itemID); err != nil {
					log.Warn("mark registration synced", zap.Int("registration_id", r.ID), zap.Error(err))
				}
			}
			continue
		}
		todo = append(todo, upload{kind: "registration", id: key, do: func(ctx context.Context) error {
			itemID, err := s.graph.CreateListItem(ctx, s.registrationFields(r))
			if err != nil {
				return err
			}
			run.RegistrationsUploaded++
			return markRegistrationSynced(ctx, s.db, r.ID, itemID)
		}})
	}

	existing := make(map[string]bool, len(files))
	for _, f := range files {
		existing[f] = true
	}
	for i := range buildings {
		b := buildings[i]
		name := BuildingFileName(b.ID)
		if existing[name] {
			continue
		}
		todo = append(todo, upload{kind: "building", id: b.ID, do: func(ctx context.Context) error {
			doc, err := json.MarshalIndent(b, "", "  ")
			if err != nil {
				return err
			}
			if _, err := s.graph.UploadFile(ctx, name, doc); err != nil {
				return err
			}
			run.BuildingsUploaded++
			return nil
		}})
	}

	log.Info("sharepoint sync diff computed",
		zap.Int("registrations_local", len(regs)),
		zap.Int("registrations_remote", len(keys)),
		zap.Int("buildings_local", len(buildings)),
		zap.Int("buildings_remote", len(files)),
		zap.Int("to_upload", len(todo)),
	)

	batch := s.cfg.BatchSize
	if batch < 1 {
		batch = 1
	}
	for i, u := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.do(ctx); err != nil {
			msg := fmt.Sprintf("%s %s: %v", u.kind, u.id, err)
			run.Errors = append(run.Errors, msg)
			log.Warn("sharepoint upload failed", zap.String("kind", u.kind), zap.String("id", u.id), zap.Error(err))
		}
		if (i+1)%batch == 0 && i+1 < len(todo) {
			if err := sleep(ctx, s.cfg.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Syncer) registrationFields(r model.RegistrationRow) map[string]any {
	return map[string]any{
		s.cfg.KeyField:    strconv.Itoa(r.ID),
		"Title":           r.UserName,
		"Email":           r.UserEmail,
		"Phone":           r.Phone,
		"FlatNumber":      r.FlatNumber,
		"BuildingId":      r.BuildingID,
		"BuildingAddress": r.BuildingAddress,
		"Postcode":        r.Postcode,
		"LeaseholderType": r.LeaseholderType,
		"InterestedIn":    r.InterestedIn,
		"Status":          r.Status,
		"RegisteredAt":    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
