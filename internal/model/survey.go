package model

// Dataset represents a parsed survey export: one header row of question
// texts and one row per respondent
type Dataset struct {
	Header []string `json:"header"`
	Rows   [][]string `json:"rows"`

	// SectorColumn is the index of the segmentation column (-1 if none detected)
	SectorColumn int `json:"sector_column"`
}

// Responses returns the number of respondent rows
func (d *Dataset) Responses() int {
	return len(d.Rows)
}

// Questions returns the number of survey questions
func (d *Dataset) Questions() int {
	return len(d.Header)
}

// ResponseGroup is one segment of respondents (e.g. a department) with its
// response count and the raw answer rows belonging to it.
// Derived once from the input dataset and immutable afterwards.
type ResponseGroup struct {
	Key   string     `json:"key"`
	Count int        `json:"count"`
	Rows  [][]string `json:"-"`
}

// Stats summarizes a survey dataset for verbose output and the run manifest
type Stats struct {
	TotalResponses int            `json:"total_responses"`
	TotalQuestions int            `json:"total_questions"`
	SectorColumn   string         `json:"sector_column,omitempty"`
	Sectors        map[string]int `json:"sectors,omitempty"`
}
