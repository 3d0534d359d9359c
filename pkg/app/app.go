// Package app composes the daemon's long-running components into a single
// oklog/run actor group so that any one component exiting (or an
// interrupt signal arriving) brings the whole process down cleanly.
package app

import (
	"context"

	"github.com/oklog/run"
)

// App holds the set of services that make up the daemon process.
type App struct {
	services []Service
	runner   *run.Group
}

// New returns an empty App ready to accept services via WithService.
func New() *App {
	return &App{
		services: make([]Service, 0),
		runner:   &run.Group{},
	}
}

// WithService registers a service to run as part of the actor group and
// returns the App for chaining.
func (a *App) WithService(s Service) *App {
	a.services = append(a.services, s)
	return a
}

// Run starts every registered service concurrently and blocks until one
// of them returns, at which point the others are canceled and the first
// error is returned.
func (a *App) Run(ctx context.Context) error {
	for _, service := range a.services {
		a.runner.Add(actor(ctx, service))
	}
	return a.runner.Run()
}
