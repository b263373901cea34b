// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Simulation variants.
const (
	VariantPulse      = "pulse"      // fixed sink, expand/contract cycle
	VariantConvergent = "convergent" // chained waypoints advancing to a final sink
	VariantTribes     = "tribes"     // drifting attractor cloud, never contracts
)

// Validation sentinels. Construction fails fast on these.
var (
	ErrMaxBranches = errors.New("branch.max_branches must be positive")
	ErrMaxDepth    = errors.New("branch.max_depth must be non-negative")
	ErrVariant     = errors.New("sim.variant must be pulse, convergent, or tribes")
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Sim       SimConfig       `yaml:"sim"`
	Branch    BranchConfig    `yaml:"branch"`
	Growth    GrowthConfig    `yaml:"growth"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Collision CollisionConfig `yaml:"collision"`
	Phase     PhaseConfig     `yaml:"phase"`
	Field     FieldConfig     `yaml:"field"`
	Tribes    TribesConfig    `yaml:"tribes"`
	Render    RenderConfig    `yaml:"render"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// World can be larger than the screen; camera handles the viewport.
type WorldConfig struct {
	Width  int `yaml:"width"`  // World width in world units (0 = use screen width)
	Height int `yaml:"height"` // World height in world units (0 = use screen height)
}

// SimConfig holds top-level simulation parameters.
type SimConfig struct {
	Variant string `yaml:"variant"` // pulse, convergent, or tribes
	TPS     int    `yaml:"tps"`     // Simulation ticks per second (fixed timestep)
}

// BranchConfig holds branch lifecycle parameters.
// Speeds are in world units per tick; lifespans in ticks.
type BranchConfig struct {
	GrowSpeed   float64 `yaml:"grow_speed"`   // Velocity magnitude cap while expanding
	ShrinkSpeed float64 `yaml:"shrink_speed"` // Speed toward the sink while contracting
	MaxDepth    int     `yaml:"max_depth"`    // Maximum branching generation
	MaxBranches int     `yaml:"max_branches"` // Hard population cap
	LifeMin     int     `yaml:"life_min"`     // Minimum lifespan drawn at birth
	LifeMax     int     `yaml:"life_max"`     // Maximum lifespan drawn at birth; also the seed lifespan
}

// GrowthConfig holds steering and wander parameters.
type GrowthConfig struct {
	SteerGain   float64 `yaml:"steer_gain"`   // Attractor pull strength (gentle bias, not a snap)
	Wander      float64 `yaml:"wander"`       // Noise vector magnitude
	NoiseScale  float64 `yaml:"noise_scale"`  // Spatial frequency of the wander field
	NoiseStep   float64 `yaml:"noise_step"`   // Z advance per tick (field evolution speed)
	BranchAngle float64 `yaml:"branch_angle"` // Max |rotation| in radians applied to a child's velocity
}

// SpawnConfig holds probabilistic branching parameters.
type SpawnConfig struct {
	BaseProb        float64 `yaml:"base_prob"`        // Per-branch per-tick spawn probability floor
	EliteBias       float64 `yaml:"elite_bias"`       // How strongly fitness shifts probability toward the elite rate
	EliteMultiplier float64 `yaml:"elite_multiplier"` // Elite rate = base_prob * this
}

// CollisionConfig holds collision reproduction parameters.
type CollisionConfig struct {
	Distance         float64 `yaml:"distance"`          // Pair distance threshold in world units
	ReproductionRate float64 `yaml:"reproduction_rate"` // Per-pair offspring probability
}

// PhaseConfig holds expand/contract cycle parameters.
type PhaseConfig struct {
	CycleSeconds float64 `yaml:"cycle_seconds"` // Full cycle length; first half expands, second contracts
}

// FieldConfig holds attractor field parameters.
type FieldConfig struct {
	Waypoints      int     `yaml:"waypoints"`       // Chain length for the convergent variant
	WaypointSpread float64 `yaml:"waypoint_spread"` // Jitter around the origin-sink line
	CloudCount     int     `yaml:"cloud_count"`     // Attractor count for the tribes variant
	DriftSpeed     float64 `yaml:"drift_speed"`     // Attractor movement per tick
	ArriveDistance float64 `yaml:"arrive_distance"` // Waypoint retirement distance
	SinkEpsilon    float64 `yaml:"sink_epsilon"`    // Contracting branches die within this of the sink
}

// TribesConfig holds multi-lineage parameters for the tribes variant.
type TribesConfig struct {
	Lineages      int     `yaml:"lineages"`       // Founding lineage count
	InjectSeconds float64 `yaml:"inject_seconds"` // Interval between fresh-lineage injections
	InjectCount   int     `yaml:"inject_count"`   // Branches per injection
}

// RenderConfig holds drawing parameters consumed by the renderer, not the core.
type RenderConfig struct {
	TrailOpacity    float64 `yaml:"trail_opacity"`    // Per-frame fade alpha; lower leaves longer trails
	LineThickness   float64 `yaml:"line_thickness"`   // Segment stroke width in world units
	AttractorRadius float64 `yaml:"attractor_radius"` // Marker radius for attractor positions
	ShowAttractors  bool    `yaml:"show_attractors"`  // Draw attractor markers
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Aggregation window in seconds
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32   float32 // Screen.Width as float32
	ScreenH32   float32 // Screen.Height as float32
	WorldW32    float32 // Effective world width as float32
	WorldH32    float32 // Effective world height as float32
	CycleTicks  int     // Phase.CycleSeconds * Sim.TPS
	InjectTicks int     // Tribes.InjectSeconds * Sim.TPS
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Branch.MaxBranches <= 0 {
		return fmt.Errorf("%w: got %d", ErrMaxBranches, c.Branch.MaxBranches)
	}
	if c.Branch.MaxDepth < 0 {
		return fmt.Errorf("%w: got %d", ErrMaxDepth, c.Branch.MaxDepth)
	}
	switch c.Sim.Variant {
	case VariantPulse, VariantConvergent, VariantTribes:
	default:
		return fmt.Errorf("%w: got %q", ErrVariant, c.Sim.Variant)
	}
	if c.Sim.TPS <= 0 {
		return fmt.Errorf("sim.tps must be positive: got %d", c.Sim.TPS)
	}
	if c.Branch.LifeMin <= 0 || c.Branch.LifeMax < c.Branch.LifeMin {
		return fmt.Errorf("branch lifespan range invalid: [%d, %d]", c.Branch.LifeMin, c.Branch.LifeMax)
	}
	if c.Tribes.Lineages <= 0 || c.Tribes.Lineages > 255 {
		return fmt.Errorf("tribes.lineages must be in 1..255: got %d", c.Tribes.Lineages)
	}
	return nil
}

// ComputeDerived calculates values derived from the raw fields. Load calls
// it; callers that mutate raw fields afterwards must call it again before
// handing the config to a consumer.
func (c *Config) ComputeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = c.Screen.Width
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = c.Screen.Height
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)

	c.Derived.CycleTicks = int(c.Phase.CycleSeconds * float64(c.Sim.TPS))
	c.Derived.InjectTicks = int(c.Tribes.InjectSeconds * float64(c.Sim.TPS))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
