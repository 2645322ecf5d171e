package models

// UnknownTitle is substituted when an entry carries no title marker.
const UnknownTitle = "Unknown Title"

// GameRecord is one exported (title, rating) row.
type GameRecord struct {
	Title string `json:"title"`

	// Rating is on a 0-5 scale, derived from the star-bar width percentage.
	Rating float64 `json:"rating"`
}

// PageResult is the ordered set of records extracted from one profile page.
type PageResult []GameRecord

// StopReason records why the pagination loop ended.
type StopReason string

const (
	StopEmptyPage     StopReason = "empty_page"
	StopDuplicatePage StopReason = "duplicate_page"
	StopMaxPages      StopReason = "max_pages"
	StopCanceled      StopReason = "canceled"
)

// ExportResult is the outcome of one pagination run over a profile.
type ExportResult struct {
	Username   string       `json:"username"`
	ProfileURL string       `json:"profile_url"`
	Records    []GameRecord `json:"records"`

	// LastPage is the page counter value at which the loop stopped.
	LastPage int `json:"last_page"`

	// PagesFetched counts pages whose records were accumulated.
	PagesFetched int `json:"pages_fetched"`

	StopReason StopReason `json:"stop_reason"`

	// Issues counts fields that fell back to a default during extraction.
	Issues int `json:"issues"`
}
