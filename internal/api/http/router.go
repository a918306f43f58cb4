package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dispute-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Disputes  *handlers.DisputesHandler
	Upload    *handlers.UploadHandler
	Assistant *handlers.AssistantHandler
	Knowledge *handlers.KnowledgeHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/disputes", cfg.Disputes.CreateDispute)
	api.Get("/disputes", cfg.Disputes.ListDisputes)
	api.Get("/disputes/summary", cfg.Disputes.Summary)
	api.Get("/disputes/:ticketId", cfg.Disputes.GetDispute)
	api.Patch("/disputes/:ticketId", cfg.Disputes.UpdateDispute)

	api.Post("/upload", cfg.Upload.UploadWorkbook)
	api.Post("/seed", cfg.Disputes.Seed)

	api.Post("/chat", cfg.Assistant.Chat)
	api.Post("/extract-dispute-details", cfg.Assistant.ExtractDisputeDetails)
	api.Post("/rag-ingest", cfg.Knowledge.IngestDocument)
}
