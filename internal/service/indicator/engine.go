package indicator

import (
	"fmt"
	"math"
	"strconv"

	"BarPull/internal/domain/models"

	"github.com/markcheno/go-talib"
)

// Series is one computed output column. NaN and infinities marshal as
// null; encoding/json refuses to emit them as numbers.
type Series []float64

func (s Series) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(s)*8+2)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
		} else {
			buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
		}
	}
	return append(buf, ']'), nil
}

// Param is one named numeric parameter with its default.
type Param struct {
	Name    string  `json:"name"`
	Default float64 `json:"default"`
}

// Spec describes one registered indicator: the input columns it
// consumes, its parameters, and its output series names. All math is
// delegated to go-talib; the spec only adapts column series to it.
type Spec struct {
	Name        string
	Group       string
	Description string
	Inputs      []string
	Params      []Param
	Outputs     []string
	compute     func(cs *models.ColumnSeries, p params) map[string]Series
}

type params map[string]float64

func (p params) get(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return def
}

func (p params) getInt(name string, def float64) int {
	return int(p.get(name, def))
}

// Engine dispatches indicator computations by name.
type Engine struct {
	specs map[string]Spec
}

// NewEngine creates an engine with the full indicator registry.
func NewEngine() *Engine {
	e := &Engine{specs: make(map[string]Spec)}
	registerAll(e)
	return e
}

func (e *Engine) register(s Spec) {
	e.specs[s.Name] = s
}

// Specs returns every registered indicator spec.
func (e *Engine) Specs() []Spec {
	out := make([]Spec, 0, len(e.specs))
	for _, s := range e.specs {
		out = append(out, s)
	}
	return out
}

// Compute runs the named indicator over the column series. kwargs
// override parameter defaults; unknown kwargs are ignored, matching the
// permissive handling of the underlying library.
func (e *Engine) Compute(name string, cs *models.ColumnSeries, kwargs map[string]float64) (map[string]Series, error) {
	spec, ok := e.specs[name]
	if !ok {
		return nil, fmt.Errorf("unknown indicator %q", name)
	}
	if cs == nil || cs.Len() == 0 {
		return nil, fmt.Errorf("indicator %q: empty input series", name)
	}
	for _, input := range spec.Inputs {
		if len(column(cs, input)) != cs.Len() {
			return nil, fmt.Errorf("indicator %q: input column %q incomplete", name, input)
		}
	}

	p := params{}
	for _, def := range spec.Params {
		p[def.Name] = def.Default
	}
	for k, v := range kwargs {
		p[k] = v
	}

	return spec.compute(cs, p), nil
}

func column(cs *models.ColumnSeries, name string) []float64 {
	switch name {
	case "open":
		return cs.Open
	case "high":
		return cs.High
	case "low":
		return cs.Low
	case "close":
		return cs.Close
	case "volume":
		return cs.Volume
	default:
		return nil
	}
}

func registerAll(e *Engine) {
	singlePeriod := func(name, group, desc string, fn func([]float64, int) []float64, defPeriod float64) Spec {
		return Spec{
			Name:        name,
			Group:       group,
			Description: desc,
			Inputs:      []string{"close"},
			Params:      []Param{{Name: "timeperiod", Default: defPeriod}},
			Outputs:     []string{"real"},
			compute: func(cs *models.ColumnSeries, p params) map[string]Series {
				return map[string]Series{"real": fn(cs.Close, p.getInt("timeperiod", defPeriod))}
			},
		}
	}
	hlcPeriod := func(name, group, desc string, fn func([]float64, []float64, []float64, int) []float64, defPeriod float64) Spec {
		return Spec{
			Name:        name,
			Group:       group,
			Description: desc,
			Inputs:      []string{"high", "low", "close"},
			Params:      []Param{{Name: "timeperiod", Default: defPeriod}},
			Outputs:     []string{"real"},
			compute: func(cs *models.ColumnSeries, p params) map[string]Series {
				return map[string]Series{"real": fn(cs.High, cs.Low, cs.Close, p.getInt("timeperiod", defPeriod))}
			},
		}
	}

	const (
		groupOverlap    = "Overlap Studies"
		groupMomentum   = "Momentum Indicators"
		groupVolatility = "Volatility Indicators"
		groupVolume     = "Volume Indicators"
	)

	e.register(singlePeriod("sma", groupOverlap, "Simple Moving Average", talib.Sma, 30))
	e.register(singlePeriod("ema", groupOverlap, "Exponential Moving Average", talib.Ema, 30))
	e.register(singlePeriod("wma", groupOverlap, "Weighted Moving Average", talib.Wma, 30))
	e.register(singlePeriod("rsi", groupMomentum, "Relative Strength Index", talib.Rsi, 14))
	e.register(singlePeriod("mom", groupMomentum, "Momentum", talib.Mom, 10))
	e.register(singlePeriod("roc", groupMomentum, "Rate of Change", talib.Roc, 10))
	e.register(hlcPeriod("atr", groupVolatility, "Average True Range", talib.Atr, 14))
	e.register(hlcPeriod("natr", groupVolatility, "Normalized Average True Range", talib.Natr, 14))
	e.register(hlcPeriod("adx", groupMomentum, "Average Directional Movement Index", talib.Adx, 14))
	e.register(hlcPeriod("cci", groupMomentum, "Commodity Channel Index", talib.Cci, 14))
	e.register(hlcPeriod("willr", groupMomentum, "Williams' %R", talib.WillR, 14))

	e.register(Spec{
		Name:        "macd",
		Group:       groupMomentum,
		Description: "Moving Average Convergence/Divergence",
		Inputs:      []string{"close"},
		Params: []Param{
			{Name: "fastperiod", Default: 12},
			{Name: "slowperiod", Default: 26},
			{Name: "signalperiod", Default: 9},
		},
		Outputs: []string{"macd", "macdsignal", "macdhist"},
		compute: func(cs *models.ColumnSeries, p params) map[string]Series {
			macd, signal, hist := talib.Macd(cs.Close,
				p.getInt("fastperiod", 12), p.getInt("slowperiod", 26), p.getInt("signalperiod", 9))
			return map[string]Series{"macd": macd, "macdsignal": signal, "macdhist": hist}
		},
	})

	e.register(Spec{
		Name:        "bbands",
		Group:       groupOverlap,
		Description: "Bollinger Bands",
		Inputs:      []string{"close"},
		Params: []Param{
			{Name: "timeperiod", Default: 5},
			{Name: "nbdevup", Default: 2},
			{Name: "nbdevdn", Default: 2},
		},
		Outputs: []string{"upperband", "middleband", "lowerband"},
		compute: func(cs *models.ColumnSeries, p params) map[string]Series {
			upper, middle, lower := talib.BBands(cs.Close,
				p.getInt("timeperiod", 5), p.get("nbdevup", 2), p.get("nbdevdn", 2), talib.SMA)
			return map[string]Series{"upperband": upper, "middleband": middle, "lowerband": lower}
		},
	})

	e.register(Spec{
		Name:        "stoch",
		Group:       groupMomentum,
		Description: "Stochastic",
		Inputs:      []string{"high", "low", "close"},
		Params: []Param{
			{Name: "fastk_period", Default: 5},
			{Name: "slowk_period", Default: 3},
			{Name: "slowd_period", Default: 3},
		},
		Outputs: []string{"slowk", "slowd"},
		compute: func(cs *models.ColumnSeries, p params) map[string]Series {
			k, d := talib.Stoch(cs.High, cs.Low, cs.Close,
				p.getInt("fastk_period", 5), p.getInt("slowk_period", 3), talib.SMA,
				p.getInt("slowd_period", 3), talib.SMA)
			return map[string]Series{"slowk": k, "slowd": d}
		},
	})

	e.register(Spec{
		Name:        "obv",
		Group:       groupVolume,
		Description: "On Balance Volume",
		Inputs:      []string{"close", "volume"},
		Outputs:     []string{"real"},
		compute: func(cs *models.ColumnSeries, _ params) map[string]Series {
			return map[string]Series{"real": talib.Obv(cs.Close, cs.Volume)}
		},
	})

	e.register(Spec{
		Name:        "mfi",
		Group:       groupMomentum,
		Description: "Money Flow Index",
		Inputs:      []string{"high", "low", "close", "volume"},
		Params:      []Param{{Name: "timeperiod", Default: 14}},
		Outputs:     []string{"real"},
		compute: func(cs *models.ColumnSeries, p params) map[string]Series {
			return map[string]Series{"real": talib.Mfi(cs.High, cs.Low, cs.Close, cs.Volume, p.getInt("timeperiod", 14))}
		},
	})
}
