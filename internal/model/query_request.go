package model

// QueryRequest is the createQueryRun payload sent to the query service.
type QueryRequest struct {
	SQL            string            `json:"sql"`
	ResultTTLHours int               `json:"resultTTLHours"`
	MaxAgeMinutes  int               `json:"maxAgeMinutes"`
	Tags           map[string]string `json:"tags"`
	DataSource     string            `json:"dataSource"`
	DataProvider   string            `json:"dataProvider"`
}
