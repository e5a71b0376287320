package synth

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ConfigValueGen struct {
	Gen ValueGen
}

type jsonValueGenImpl struct {
	Uniform     *UniformGen     `json:"uniform,omitempty"`
	RandomWalk  *RandomWalkGen  `json:"randomWalk,omitempty"`
	Exponential *ExponentialGen `json:"exponential,omitempty"`
}

func (g *ConfigValueGen) MarshalJSON() ([]byte, error) {
	var st jsonValueGenImpl
	switch gen := g.Gen.(type) {
	case UniformGen:
		st.Uniform = &gen
	case RandomWalkGen:
		st.RandomWalk = &gen
	case ExponentialGen:
		st.Exponential = &gen
	case nil:
		// do nothing
	default:
		return nil, fmt.Errorf("unknown gen %v", g.Gen)
	}
	return json.Marshal(st)
}

func (g *ConfigValueGen) UnmarshalJSON(data []byte) error {
	var st jsonValueGenImpl
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	found := make([]string, 0, 3)
	if st.Uniform != nil {
		g.Gen = *st.Uniform
		found = append(found, "uniform")
	}
	if st.RandomWalk != nil {
		g.Gen = *st.RandomWalk
		found = append(found, "randomWalk")
	}
	if st.Exponential != nil {
		g.Gen = *st.Exponential
		found = append(found, "exponential")
	}
	if len(found) > 1 {
		return fmt.Errorf("expected at most one value gen, found multiple [%s]",
			strings.Join(found, " "))
	}
	return nil
}

var _ json.Marshaler = new(ConfigValueGen)
var _ json.Unmarshaler = new(ConfigValueGen)
