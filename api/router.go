package api

import (
	"compress/flate"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api/dispatch"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/ingest"
	api_middleware "gitlab.uncharted.software/WM/wm-ingest-queue/api/middleware"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/routes"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

// NewRouter returns a chi router with endpoints registered.
func NewRouter(cfg config.Config, ingestService *ingest.Service, batchQueue queue.BatchQueue,
	dispatcher *dispatch.BatchDispatcher, deadLetter *queue.DeadLetterQueue) (chi.Router, error) {

	// Setup the router and configure baseline middleware
	r := chi.NewRouter()

	r.Use(api_middleware.Logger(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(flate.DefaultCompression))

	// Configure CORS handling
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/ingest", routes.IngestRequest(&cfg, ingestService))
		r.Get("/status/{ingestionID}", routes.StatusRequest(&cfg, ingestService))
		r.Get("/health", routes.HealthCheck(&cfg))
	})

	r.Route("/queue", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/waiting", routes.Waiting(&cfg, batchQueue))
		r.Get("/jobs", routes.JobsRequest(&cfg, batchQueue))
		r.Put("/clear", routes.ClearRequest(&cfg, batchQueue))
	})

	r.Route("/dispatch", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Post("/start", routes.StartRequest(&cfg, dispatcher))
		r.Post("/stop", routes.StopRequest(&cfg, dispatcher))
		r.Get("/status", routes.DispatchStatusRequest(&cfg, batchQueue, dispatcher))
	})

	r.Route("/dead-letter", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", routes.DeadLetterRequest(&cfg, deadLetter))
		r.Put("/retry", routes.RetryFailedRequest(&cfg, deadLetter, ingestService))
		r.Put("/clear", routes.DeadLetterClearRequest(&cfg, deadLetter))
	})

	return r, nil
}
