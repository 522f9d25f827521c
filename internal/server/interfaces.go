package server

// Server runs until a termination signal arrives and then shuts down
// gracefully.
type Server interface {
	RunServer()

	Shutdown()
}
