package internal

// UnknownCommissioner marks practices whose commissioner could not be
// resolved. It is never written to the persistent cache, so unresolved
// codes are retried on later runs.
const UnknownCommissioner = "UNKNOWN"

type PracticeRecord struct {
	ODSCode      string `json:"GP_ODS_CODE"`
	Name         string `json:"GP_NAME"`
	RawSystems   string `json:"GP_GPAD_SYSTEMS"`
	MainSystem   string `json:"GP_SYSTEM"`
	Commissioner string `json:"ICB Sub location,omitempty"`
}

type SystemStat struct {
	System     string  `json:"system"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type Statistics struct {
	TotalPractices int          `json:"total_practices"`
	Systems        []SystemStat `json:"systems"`
}

type CommissionerCount struct {
	Commissioner string `json:"commissioner"`
	Count        int    `json:"count"`
}
