package model

// Gazetteer holds the place and site names known to the dataset.
// It grounds keyword extraction: only names listed here can become search keywords
// through the local heuristic.
type Gazetteer struct {
	Provinces []string `json:"provinces"`
	Names     []string `json:"names"`
}
