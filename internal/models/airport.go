package models

type AirportRecord struct {
	Code        string   `json:"code"`
	DisplayName string   `json:"name"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Aliases     []string `json:"-"`
}

type AirportSearchResult struct {
	Query    string          `json:"query"`
	Airports []AirportRecord `json:"airports"`
	Found    bool            `json:"found"`
}
