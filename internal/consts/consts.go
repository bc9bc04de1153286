package consts

const (
	Gmin        = 1e-12  // Minimum conductance loaded on diagonals
	Abstol      = 1e-12  // Absolute convergence tolerance
	Reltol      = 1e-6   // Relative convergence tolerance
	MaxIter     = 100    // Iteration limit per solve
	NominalTemp = 300.15 // Nominal temperature (K), 27C
)
