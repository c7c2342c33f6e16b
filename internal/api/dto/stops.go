package dto

type StopResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type LineStopsResponse struct {
	RouteID   string         `json:"route_id"`
	Direction string         `json:"direction"`
	StopCount int            `json:"stop_count"`
	Stops     []StopResponse `json:"stops"`
}

type StopPointResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Modes     []string `json:"modes"`
	Lines     []string `json:"lines"`
}

type StopsBetweenResponse struct {
	Count          int      `json:"count"`
	FromIndex      int      `json:"from_index"`
	ToIndex        int      `json:"to_index"`
	StopIDsBetween []string `json:"stop_ids_between"`
	AllStopIDs     []string `json:"all_stop_ids"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
