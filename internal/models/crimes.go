package models

// CrimeRecord is one row of the crime statistics CSV.
type CrimeRecord struct {
	LSOACode      string
	Borough       string
	MajorCategory string
	MinorCategory string
	Value         int
	Year          int
	Month         int
}

// CrimeReport is the answer set computed over one or more crime CSV files.
type CrimeReport struct {
	Rows int `json:"rows"`
	// LeastCommonCrime is the major category with the lowest total.
	LeastCommonCrime string `json:"leastCommonCrime"`
	// MostDangerousBorough is the borough with the highest total.
	MostDangerousBorough string `json:"mostDangerousBorough"`
	// MostCommonCrimeByBorough maps each borough to its top major category.
	MostCommonCrimeByBorough map[string]string `json:"mostCommonCrimeByBorough"`
	// TotalsByYear holds the total number of crimes per year.
	TotalsByYear map[int]int `json:"totalsByYear"`
	// Increasing is true when the latest year of the trend window has more
	// crimes than the earliest one.
	Increasing  bool `json:"increasing"`
	TrendWindow int  `json:"trendWindow"`
}
