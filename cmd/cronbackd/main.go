package main

import (
	"log"

	_ "github.com/cronbackhq/cronback/docs" // Import generated docs
	"github.com/cronbackhq/cronback/internal/api"
)

// @title Cronback API
// @version 1.0
// @description Multi-tenant scheduled trigger service. Define cron or timepoint schedules per project and Cronback delivers the configured webhook on every tick, with retries, run history, and attempt-level delivery records.
// @description
// @description ## Concepts
// @description - **Triggers**: Named definitions owning a schedule, a webhook action, and an optional payload
// @description - **Runs**: One execution of a trigger, created per schedule tick or manual run
// @description - **Attempts**: Individual webhook deliveries within a run, retried per the trigger's retry policy
// @description
// @description All /api/v1 routes are project scoped and require the X-Cronback-Project-Id header.

// @contact.name API Support
// @contact.url https://github.com/cronbackhq/cronback

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ProjectIdAuth
// @in header
// @name X-Cronback-Project-Id
// @description Project identifier scoping every /api/v1 request

func main() {
	srv := api.NewServer()
	if err := srv.Serve(); err != nil {
		log.Fatalf("cronback server stopped: %v", err)
	}
}
