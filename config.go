package warehouse

// Config holds global defaults for World construction.
var Config config = config{}

type config struct {
	events WorldEvents
}

// SetWorldEvents configures the WorldEvents hooks that Factory.NewWorld
// installs on every World it creates afterward.
func (c *config) SetWorldEvents(events WorldEvents) {
	c.events = events
}
