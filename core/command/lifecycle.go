package command

// Shutdown asks the studio to finish the current operation and stop.
// It carries no job ID: shutdown is not correlated to any UI request.
type Shutdown struct{}

func (c *Shutdown) CommandName() string {
	return "Shutdown"
}
