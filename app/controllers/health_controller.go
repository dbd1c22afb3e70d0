package controllers

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/ctx"
)

type HealthController struct {
	ready func(context.Context) bool
	now   func() time.Time
}

// NewHealthController reports liveness plus whether ready says the
// database answers.
func NewHealthController(ready func(context.Context) bool) *HealthController {
	return &HealthController{ready: ready, now: time.Now}
}

// HealthReport is the body of GET /health.
type HealthReport struct {
	Status    string    `json:"status"`
	Database  bool      `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Show  GET /health. Always 200: the process is alive even when the
// database is not.
func (hc *HealthController) Show(c *ctx.Context) {
	report := HealthReport{Status: "ok", Database: hc.ready(c.Context()), Timestamp: hc.now().UTC()}
	if !report.Database {
		report.Status = "degraded"
	}
	c.Success(report)
}
