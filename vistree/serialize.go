package vistree

import "encoding/json"

// MarshalAnalysis serialises a VisualTreeAnalysis to JSON.
func MarshalAnalysis(a *VisualTreeAnalysis) ([]byte, error) {
	return json.Marshal(a)
}

// UnmarshalAnalysis deserialises a VisualTreeAnalysis from JSON.
// Missing elements/visualNodeGroups fields decode to empty collections.
func UnmarshalAnalysis(data []byte) (*VisualTreeAnalysis, error) {
	var a VisualTreeAnalysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// MarshalResult serialises a ComparisonResult to JSON.
func MarshalResult(r *ComparisonResult) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult deserialises a ComparisonResult from JSON.
func UnmarshalResult(data []byte) (*ComparisonResult, error) {
	var r ComparisonResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MarshalSettings serialises ComparisonSettings to JSON.
func MarshalSettings(s *ComparisonSettings) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSettings deserialises ComparisonSettings from JSON.
func UnmarshalSettings(data []byte) (*ComparisonSettings, error) {
	var s ComparisonSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
