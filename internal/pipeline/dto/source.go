package dto

// DatasetItemsQuery is the query sent to the scraping provider dataset API.
type DatasetItemsQuery struct {
	DatasetID string
	Limit     int
	Offset    int
}
