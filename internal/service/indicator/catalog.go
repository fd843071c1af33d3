package indicator

import (
	"sort"
	"strconv"
)

// Info is the catalog entry served to clients for one indicator.
// Parameter defaults are rendered as strings so clients that round-trip
// them through form fields do not collapse "2.0" into an int.
type Info struct {
	DisplayName string            `json:"display_name"`
	Group       string            `json:"group"`
	Inputs      []string          `json:"input_names"`
	Parameters  map[string]string `json:"parameters"`
	Outputs     []string          `json:"output_names"`
	Description string            `json:"description,omitempty"`
}

// Describe returns the catalog grouped the way the upstream library
// groups its functions: group name -> indicator name -> info.
func (e *Engine) Describe() map[string]map[string]Info {
	out := make(map[string]map[string]Info)
	for _, s := range e.specs {
		group, ok := out[s.Group]
		if !ok {
			group = make(map[string]Info)
			out[s.Group] = group
		}
		group[s.Name] = describeSpec(s)
	}
	return out
}

// Names returns all indicator names, sorted.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.specs))
	for name := range e.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func describeSpec(s Spec) Info {
	parameters := make(map[string]string, len(s.Params))
	for _, p := range s.Params {
		parameters[p.Name] = formatDefault(p.Default)
	}
	return Info{
		DisplayName: s.Description,
		Group:       s.Group,
		Inputs:      s.Inputs,
		Parameters:  parameters,
		Outputs:     s.Outputs,
		Description: s.Description,
	}
}

func formatDefault(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
