package model

import "time"

// Frame is one emitted animation step: the smoothed pose plus the
// session and sampling context it was produced under.
type Frame struct {
	Session     string    `json:"session"`
	Step        int       `json:"step"`
	Temperature float64   `json:"temperature"`
	Pose        Pose      `json:"pose"`
	At          time.Time `json:"at"`
}
