package model

import "time"

type Room struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Capacity           int       `json:"capacity"`
	HasProjector       bool      `json:"has_projector"`
	HasVideoConference bool      `json:"has_video_conference"`
	Floor              int       `json:"floor"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
