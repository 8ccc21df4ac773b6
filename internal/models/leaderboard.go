package models

// AllAroundRow is one gymnast's summed result in a competition
type AllAroundRow struct {
	Rank           int     `json:"rank"`
	GymnastID      int     `json:"gymnast_id"`
	GymnastName    string  `json:"gymnast_name"`
	ClubName       string  `json:"club_name"`
	Level          Level   `json:"level"`
	EntryID        int     `json:"entry_id"`
	Total          float64 `json:"total"`
	EScore         float64 `json:"e_score"`
	DScore         float64 `json:"d_score"`
	Penalty        float64 `json:"penalty"`
	ApparatusCount int     `json:"apparatus_count"`
}

// ApparatusRow is one gymnast's score on a single apparatus
type ApparatusRow struct {
	Rank        int     `json:"rank"`
	GymnastID   int     `json:"gymnast_id"`
	GymnastName string  `json:"gymnast_name"`
	ClubName    string  `json:"club_name"`
	Level       Level   `json:"level"`
	EntryID     int     `json:"entry_id"`
	ScoreID     int     `json:"score_id"`
	EScore      float64 `json:"e_score"`
	DScore      float64 `json:"d_score"`
	Penalty     float64 `json:"penalty"`
	Total       float64 `json:"total"`
}

// EntryProgress reports how many apparatus an entry has been scored on
type EntryProgress struct {
	EntryID     int     `json:"entry_id"`
	GymnastID   int     `json:"gymnast_id"`
	GymnastName string  `json:"gymnast_name"`
	Level       Level   `json:"level"`
	ScoredCount int     `json:"scored_count"`
	TotalCount  int     `json:"total_count"`
	IsComplete  bool    `json:"is_complete"`
	Percentage  float64 `json:"percentage"`
}

// Progress is the scoring progress of a whole competition
type Progress struct {
	CompetitionID int             `json:"competition_id"`
	Entries       []EntryProgress `json:"entries"`
	TotalGymnasts int             `json:"total_gymnasts"`
	FullyScored   int             `json:"fully_scored"`
	Percentage    float64         `json:"percentage"`
	IsComplete    bool            `json:"is_complete"`
}

// ResultRow is one score joined with everything needed to display it
type ResultRow struct {
	ScoreID         int     `json:"id"`
	EntryID         int     `json:"entry_id"`
	GymnastID       int     `json:"gymnast_id"`
	GymnastName     string  `json:"gymnast_name"`
	ClubName        string  `json:"club_name"`
	Level           Level   `json:"level"`
	CompetitionID   int     `json:"competition_id"`
	CompetitionName string  `json:"competition_name"`
	ApparatusID     int     `json:"apparatus_id"`
	ApparatusName   string  `json:"apparatus_name"`
	EScore          float64 `json:"e_score"`
	DScore          float64 `json:"d_score"`
	Penalty         float64 `json:"penalty"`
	Total           float64 `json:"total"`
}

// ApparatusBest is a gymnast's best total on one apparatus
type ApparatusBest struct {
	ApparatusID   int     `json:"apparatus_id"`
	ApparatusName string  `json:"apparatus_name"`
	Best          float64 `json:"best"`
}

// CompetitionResult is a gymnast's all-around total at one competition
type CompetitionResult struct {
	CompetitionID   int     `json:"competition_id"`
	CompetitionName string  `json:"competition_name"`
	Date            string  `json:"date,omitempty"`
	Total           float64 `json:"total"`
}

// GymnastProfile summarises a gymnast's career
type GymnastProfile struct {
	Gymnast       Gymnast             `json:"gymnast"`
	ApparatusBest []ApparatusBest     `json:"apparatus_best"`
	BestAllAround float64             `json:"best_all_around"`
	History       []CompetitionResult `json:"history"`
}
