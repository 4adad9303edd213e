package models

import (
	"encoding/json"
	"fmt"
)

func marshalPair(x, y float64) ([]byte, error) {
	return json.Marshal([2]float64{x, y})
}

func unmarshalPair(data []byte) (float64, float64, error) {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return 0, 0, err
	}
	if len(pair) != 2 {
		return 0, 0, fmt.Errorf("expected [x, y] pair, got %d values", len(pair))
	}
	return pair[0], pair[1], nil
}
