package pco

// Routes is the writer service path table. The client composes request URLs
// from these paths and never hardcodes one at a call site, so a deployment
// running the writer behind a rewriting proxy can swap the whole table at
// construction.
type Routes struct {
	// Flask service paths.
	Start        string // POST, starts a writer process for one acquisition
	Status       string // GET, suffixed with /{writer_port}
	Finished     string // GET, final statistics of the most recent run
	Error        string // GET, last error recorded by the service
	ServerLog    string // GET, suffixed with /{service_name}
	ServerUptime string // GET, suffixed with /{service_name}
	Ack          string // GET, liveness probe

	// Writer process paths, valid only while an acquisition runs.
	Statistics string // GET, live run statistics
	Stop       string // GET, stop after the current frame
	Kill       string // GET, terminate immediately
}

// DefaultRoutes returns the path table of the stock writer service.
func DefaultRoutes() Routes {
	return Routes{
		Start:        "/start_pco_writer",
		Status:       "/status",
		Finished:     "/finished",
		Error:        "/error",
		ServerLog:    "/server_log",
		ServerUptime: "/server_uptime",
		Ack:          "/ack",
		Statistics:   "/statistics",
		Stop:         "/stop",
		Kill:         "/kill",
	}
}
