package game

// Observation is what a controlled bird perceives each frame: the
// horizontal distance to the next unpassed pipe pair and the vertical
// distances to the two edges of its gap.
type Observation struct {
	DeltaX       float64 // distance to the pair's left edge
	DeltaYTop    float64 // bird Y minus the top collider's bottom edge
	DeltaYBottom float64 // bottom collider's top edge minus bird Y
}

// Controller decides and accounts for AI-controlled birds. The game loop is
// controller-agnostic: human play runs with a nil controller and takes its
// decisions from the input frame instead.
type Controller interface {
	// Decide reports whether the bird with the given id should fly this
	// frame.
	Decide(id int, obs Observation) (bool, error)
	// Reward credits fitness to the bird's record.
	Reward(id int, amount float64) error
	// Penalize debits fitness from the bird's record.
	Penalize(id int, amount float64) error
	// Remove retires the bird's record after death. The record keeps its
	// accumulated fitness for end-of-episode selection.
	Remove(id int) error
}
