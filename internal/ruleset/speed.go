package ruleset

// Speed scales durations and rewards to the pace of the game.
type Speed struct {
	Name string

	// Modifier scales quest durations and countdown seeds.
	Modifier float64

	// GoldGiftModifier scales the tribute gold base.
	GoldGiftModifier float64

	// CityStateTributeScalingInterval: tribute gold grows by 5 once per
	// this many elapsed turns.
	CityStateTributeScalingInterval int
}

// The standard speed table.
var (
	SpeedQuick    = Speed{Name: "Quick", Modifier: 0.67, GoldGiftModifier: 0.67, CityStateTributeScalingInterval: 5}
	SpeedStandard = Speed{Name: "Standard", Modifier: 1.0, GoldGiftModifier: 1.0, CityStateTributeScalingInterval: 10}
	SpeedEpic     = Speed{Name: "Epic", Modifier: 1.5, GoldGiftModifier: 1.5, CityStateTributeScalingInterval: 15}
)

// SpeedByName resolves a speed, defaulting to Standard.
func SpeedByName(name string) Speed {
	switch name {
	case SpeedQuick.Name:
		return SpeedQuick
	case SpeedEpic.Name:
		return SpeedEpic
	default:
		return SpeedStandard
	}
}

// ScaledDuration applies the speed modifier to a base duration in turns.
func (s Speed) ScaledDuration(base int) int {
	if base <= 0 {
		return 0
	}
	d := int(float64(base) * s.Modifier)
	if d < 1 {
		d = 1
	}
	return d
}
