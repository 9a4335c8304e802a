// Marquee - Movie Streaming Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor provides process supervision for Marquee using suture v4.

Long-running components are arranged in a two-layer tree so a crash in
background maintenance never takes the API down:

	RootSupervisor ("marquee")
	├── BackgroundSupervisor ("background-layer")
	│   ├── TrendingWarmer (when the response cache is enabled)
	│   └── UptimeService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with exponential backoff once FailureThreshold is
exceeded within the decay window. Cancelling the context passed to Serve stops
every service; each gets ShutdownTimeout to return.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddBackgroundService(services.NewUptimeService(start, 15*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the zerolog-backed slog handler from the logging package.

See also internal/supervisor/services for the service wrappers.
*/
package supervisor
