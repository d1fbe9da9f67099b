package agent

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes, seeding
	// all of its random sources from seed
	CreateAgent(seed uint64) (Closer, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
