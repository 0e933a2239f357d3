package domain

// License is one entry of the catalog's license referential, fetched once per
// load cycle and passed into every dataset normalization.
type License struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
