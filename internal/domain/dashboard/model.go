package dashboard

// Stats summarizes the consult workload visible to the caller.
type Stats struct {
	Total            int `json:"total"`
	Pending          int `json:"pending"`
	Accepted         int `json:"accepted"`
	OnTheWay         int `json:"on_the_way"`
	Reviewed         int `json:"reviewed"`
	ProcedurePlanned int `json:"procedure_planned"`
	Completed        int `json:"completed"`
	Cancelled        int `json:"cancelled"`
	Emergency        int `json:"emergency"`
	Today            int `json:"today"`
}

// Bucket is one group in an analytics breakdown.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
