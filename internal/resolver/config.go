package resolver

const (
	DefaultRestitution           = 0.4
	DefaultTolerance             = 0.01
	DefaultVelocityLimit         = 0.25
	DefaultAngularLimit          = 0.2
	DefaultFriction              = 0.4
	DefaultMaxPositionIterations = 10000
	DefaultMaxVelocityIterations = 10000
	DefaultVelocityEpsilon       = 0.001
)

// Config tunes the solver.
type Config struct {
	// Restitution is the fraction of closing speed reflected on impact.
	Restitution float64
	// Tolerance is the penetration depth considered resolved.
	Tolerance float64
	// VelocityLimit is the closing speed below which restitution is ignored.
	VelocityLimit float64
	// AngularLimit caps the rotation, in radians, of one position correction.
	AngularLimit float64
	// Friction is the Coulomb coefficient shared by all contacts.
	Friction float64

	MaxPositionIterations int
	MaxVelocityIterations int
	VelocityEpsilon       float64
}

func DefaultConfig() Config {
	return Config{
		Restitution:           DefaultRestitution,
		Tolerance:             DefaultTolerance,
		VelocityLimit:         DefaultVelocityLimit,
		AngularLimit:          DefaultAngularLimit,
		Friction:              DefaultFriction,
		MaxPositionIterations: DefaultMaxPositionIterations,
		MaxVelocityIterations: DefaultMaxVelocityIterations,
		VelocityEpsilon:       DefaultVelocityEpsilon,
	}
}
