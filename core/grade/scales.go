package grade

import "github.com/shopspring/decimal"

type (
	// Band maps a minimum percentage (inclusive) to a letter and points.
	Band struct {
		Min    decimal.Decimal `json:"min"`
		Letter string          `json:"letter"`
		Points int             `json:"points"`
	}

	// Scale is an ordered grade table, sorted by Min descending. The first
	// band whose Min the percentage reaches wins; anything below the last
	// band's Min still maps to that last band.
	Scale []Band
)

// Scale names
const (
	ScaleNameKCSE   = "kcse"
	ScaleNameSimple = "simple"
)

var (
	// ScaleKCSE is the standard Kenyan 12-point scale. It is the canonical
	// default; override per assessment or via config.
	ScaleKCSE = Scale{
		{Min: decimal.NewFromInt(80), Letter: "A", Points: 12},
		{Min: decimal.NewFromInt(75), Letter: "A-", Points: 11},
		{Min: decimal.NewFromInt(70), Letter: "B+", Points: 10},
		{Min: decimal.NewFromInt(65), Letter: "B", Points: 9},
		{Min: decimal.NewFromInt(60), Letter: "B-", Points: 8},
		{Min: decimal.NewFromInt(55), Letter: "C+", Points: 7},
		{Min: decimal.NewFromInt(50), Letter: "C", Points: 6},
		{Min: decimal.NewFromInt(45), Letter: "C-", Points: 5},
		{Min: decimal.NewFromInt(40), Letter: "D+", Points: 4},
		{Min: decimal.NewFromInt(35), Letter: "D", Points: 3},
		{Min: decimal.NewFromInt(30), Letter: "D-", Points: 2},
		{Min: decimal.Zero, Letter: "E", Points: 1},
	}

	// ScaleSimple is the coarse A+..F scale.
	ScaleSimple = Scale{
		{Min: decimal.NewFromInt(90), Letter: "A+", Points: 7},
		{Min: decimal.NewFromInt(80), Letter: "A", Points: 6},
		{Min: decimal.NewFromInt(70), Letter: "B+", Points: 5},
		{Min: decimal.NewFromInt(60), Letter: "B", Points: 4},
		{Min: decimal.NewFromInt(50), Letter: "C", Points: 3},
		{Min: decimal.NewFromInt(40), Letter: "D", Points: 2},
		{Min: decimal.Zero, Letter: "F", Points: 1},
	}

	scales = map[string]Scale{
		ScaleNameKCSE:   ScaleKCSE,
		ScaleNameSimple: ScaleSimple,
	}
)

// ScaleByName returns the named scale, falling back to ScaleKCSE.
func ScaleByName(name string) Scale {
	if s, ok := scales[name]; ok {
		return s
	}
	return ScaleKCSE
}
