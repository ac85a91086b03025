package evolve

import "errors"

// Roster contract errors. The game loop treats these as fatal: they mean a
// caller addressed a record that should exist by construction.
var (
	ErrPopulationEmpty = errors.New("evolve: population is empty")
	ErrGenomeNotFound  = errors.New("evolve: genome not found")
	ErrNetworkNotFound = errors.New("evolve: network not found")
)
