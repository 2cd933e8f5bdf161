package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldtrack.com/fieldtrack/attendance/core"
	"fieldtrack.com/fieldtrack/attendance/store"
	"fieldtrack.com/fieldtrack/config"
	dbcore "fieldtrack.com/fieldtrack/core"
	"fieldtrack.com/fieldtrack/infrastructure/communication"
	"fieldtrack.com/fieldtrack/infrastructure/filesystem"
	"fieldtrack.com/fieldtrack/infrastructure/mapping"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var ErrMediaNotConfigured = errors.New("media.bucket is not configured")

// App holds the wired services of one process.
type App struct {
	Config     *config.Config
	Store      store.Store
	Media      *filesystem.S3MediaStore
	Alerter    core.Alerter
	Aggregator *core.Aggregator
	Distances  *core.DistanceEngine
	Roster     *core.RosterScanner

	dm          *dbcore.DatabaseManager
	mongoClient *mongo.Client
}

type noMedia struct{}

func (noMedia) Upload(context.Context, []byte, string) (string, error) {
	return "", ErrMediaNotConfigured
}

// Open connects the configured store and builds the services on top of it.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg}

	if cfg.Database.Driver == "mongo" {
		client, db, err := store.ConnectMongo(ctx, cfg.Database.DSN, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		a.mongoClient = client
		a.Store = store.NewMongoStore(db)
	} else {
		dm, err := dbcore.New(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxConnections, dbcore.ParseLogLevel(cfg.Database.LogLevel))
		if err != nil {
			return nil, err
		}
		a.dm = dm
		a.Store = store.NewGormStore(dm)
	}

	var media core.MediaStore = noMedia{}
	if cfg.Media.Bucket != "" {
		s3, err := filesystem.ConnectS3(ctx, cfg.Media.Bucket, cfg.Media.Region, cfg.Media.PublicBaseURL)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
		a.Media = s3
		media = s3
	} else {
		log.Warn().Msg("media.bucket not set, attendance submissions will be rejected")
	}

	a.Alerter = communication.Discard{}
	if cfg.Alerts.SlackToken != "" {
		a.Alerter = communication.NewSlack(cfg.Alerts.SlackToken, communication.SlackOption{
			InfoChannelID:  cfg.Alerts.InfoChannel,
			ErrorChannelID: cfg.Alerts.ErrorChannel,
		})
	}

	maps := mapping.NewClient(cfg.Maps.BaseURL, cfg.Maps.APIKey, cfg.Maps.Timeout)
	var geocoder core.Geocoder = maps
	if cfg.Maps.APIKey == "" {
		log.Warn().Msg("maps.apiKey not set, locations will not be named")
		geocoder = nil
	}

	a.Distances = core.NewDistanceEngine(maps, a.Store)
	a.Aggregator = &core.Aggregator{
		Events:        a.Store,
		Users:         a.Store,
		Media:         media,
		Geocoder:      geocoder,
		Distances:     a.Distances,
		Alerter:       a.Alerter,
		Now:           a.Distances.Now,
		MaxImageBytes: cfg.Media.MaxImageKB * 1024,
	}
	a.Roster = &core.RosterScanner{
		Events:          a.Store,
		Users:           a.Store,
		Now:             a.Distances.Now,
		ExcludedEmails:  cfg.Roster.ExcludedEmails,
		ExcludedRegions: cfg.Roster.ExcludedRegions,
	}
	return a, nil
}

// Migrate creates the relational schema or the document indexes.
func (a *App) Migrate(ctx context.Context) error {
	switch s := a.Store.(type) {
	case *store.GormStore:
		return a.dm.Exec(ctx, func(db *gorm.DB) error { return store.Migrate(db) })
	case *store.MongoStore:
		return s.EnsureIndexes(ctx)
	}
	return fmt.Errorf("store %T cannot be migrated", a.Store)
}

// OrphanedMedia lists uploaded objects that no attendance event points at.
func (a *App) OrphanedMedia(ctx context.Context) ([]string, error) {
	if a.Media == nil {
		return nil, ErrMediaNotConfigured
	}
	keys, err := a.Media.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	events, err := a.Store.ListEvents(ctx, core.EventQuery{})
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]struct{}, len(events))
	for _, e := range events {
		referenced[e.ImageURL] = struct{}{}
	}
	orphans := []string{}
	for _, key := range keys {
		if _, ok := referenced[a.Media.URL(key)]; !ok {
			orphans = append(orphans, key)
		}
	}
	return orphans, nil
}

func (a *App) Close(ctx context.Context) error {
	var errs []string
	if a.dm != nil {
		if err := a.dm.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close: %s", strings.Join(errs, "; "))
	}
	return nil
}
