package controllers

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/VibesDrop/app/models"
	"github.com/ManuelReschke/VibesDrop/app/repository"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/export"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/s3export"
	"github.com/ManuelReschke/VibesDrop/internal/pkg/statistics"
	"github.com/ManuelReschke/VibesDrop/views"
)

const (
	dashboardOptInLimit  = 100
	dashboardEventLimit  = 10
	exportPageSize       = 500
	enrichTimeout        = 15 * time.Second
	defaultEnrichWorkers = 8
)

// ProfileFetcher looks up display data for a user. nil means unknown.
type ProfileFetcher interface {
	GetUserProfile(ctx context.Context, fid int64) *models.Profile
}

// SnapshotUploader stores an export snapshot somewhere durable.
type SnapshotUploader interface {
	UploadCSV(ctx context.Context, data []byte) (*s3export.UploadResult, error)
}

// AdminConfig collects the admin controller dependencies.
type AdminConfig struct {
	Repos       *repository.Repositories
	Profiles    ProfileFetcher
	ScreenViews *counter.Counter
	Uploader    SnapshotUploader
	Channel     string
	Concurrency int
	Now         func() time.Time
}

// AdminController handles the admin dashboard and exports.
type AdminController struct {
	cfg AdminConfig
}

func NewAdminController(cfg AdminConfig) *AdminController {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultEnrichWorkers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &AdminController{cfg: cfg}
}

// HandleDashboard renders stats, recent webhook events and the newest opt-ins.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	optIns := ac.cfg.Repos.OptIn.ListOptIns(ctx, dashboardOptInLimit, 0)
	events := ac.cfg.Repos.Webhook.Recent(ctx, dashboardEventLimit)

	data := views.DashboardData{
		Title:          "/" + ac.cfg.Channel + " Airdrop Admin",
		Channel:        ac.cfg.Channel,
		Stats:          statistics.Summarize(optIns, ac.cfg.Now()),
		StoredOptIns:   ac.cfg.Repos.OptIn.CountOptIns(ctx),
		StoredEvents:   ac.cfg.Repos.Webhook.Count(ctx),
		Events:         views.NewEventRows(events),
		OptIns:         ac.enrich(ctx, optIns),
		S3ExportActive: ac.cfg.Uploader != nil,
	}
	if ac.cfg.ScreenViews != nil {
		screenViews, err := ac.cfg.ScreenViews.ScreenViews(ctx)
		if err != nil {
			log.Warnf("[Admin] Could not load screen counters: %v", err)
		}
		data.ScreenViews = screenViews
	}

	return c.Render(views.DashboardTemplate, data, views.DashboardLayout)
}

// HandleExportCSV streams every stored opt-in as CSV.
func (ac *AdminController) HandleExportCSV(c *fiber.Ctx) error {
	data, err := ac.buildCSV(c.UserContext())
	if err != nil {
		log.Errorf("[Admin] Error building CSV export: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.FileName+`"`)
	return c.Send(data)
}

// HandleExportS3 uploads a CSV snapshot to the configured bucket.
func (ac *AdminController) HandleExportS3(c *fiber.Ctx) error {
	if ac.cfg.Uploader == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "S3 export is disabled"})
	}

	data, err := ac.buildCSV(c.UserContext())
	if err != nil {
		log.Errorf("[Admin] Error building CSV export: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "export failed"})
	}

	result, err := ac.cfg.Uploader.UploadCSV(c.UserContext(), data)
	if err != nil {
		log.Errorf("[Admin] Error uploading CSV export: %v", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "upload failed"})
	}
	return c.JSON(fiber.Map{"success": true, "object": result})
}

func (ac *AdminController) buildCSV(ctx context.Context) ([]byte, error) {
	var all []models.OptIn
	total := ac.cfg.Repos.OptIn.CountOptIns(ctx)
	for offset := 0; int64(offset) < total; offset += exportPageSize {
		page := ac.cfg.Repos.OptIn.ListOptIns(ctx, exportPageSize, offset)
		if len(page) == 0 {
			break
		}
		all = append(all, page...)
	}

	var buf bytes.Buffer
	if err := export.WriteOptInsCSV(&buf, ac.enrich(ctx, all)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// enrich resolves profiles with at most Concurrency lookups in flight.
// Failed lookups fall back to the "Unknown" placeholders.
func (ac *AdminController) enrich(ctx context.Context, optIns []models.OptIn) []models.OptInWithProfile {
	rows := make([]models.OptInWithProfile, len(optIns))
	if ac.cfg.Profiles == nil {
		for i, o := range optIns {
			rows[i] = models.EnrichOptIn(o, nil)
		}
		return rows
	}

	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ac.cfg.Concurrency)
	for i, o := range optIns {
		g.Go(func() error {
			rows[i] = models.EnrichOptIn(o, ac.cfg.Profiles.GetUserProfile(gctx, o.FID))
			return nil
		})
	}
	_ = g.Wait()
	return rows
}
