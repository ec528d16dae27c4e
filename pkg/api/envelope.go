// Package api defines the uniform response envelope returned by every
// rahtash-tms endpoint, plus the error payload shapes the backend emits
// on 4xx and 5xx responses.
package api

// Envelope is the wrapper object every API call returns. Data is a slice
// for list endpoints and a single object for detail and mutation
// endpoints; the pagination fields are only meaningful on list responses.
type Envelope[T any] struct {
	Status       bool    `json:"status"`
	Message      string  `json:"message"`
	Data         T       `json:"data"`
	TotalResults int     `json:"total_results"`
	PerPage      int     `json:"per_page"`
	PageNow      int     `json:"page_now"`
	NextLink     *string `json:"next_link"`
}

// TotalPages derives the page count from total_results and per_page.
// A non-positive per_page yields zero pages rather than a division panic.
func (e *Envelope[T]) TotalPages() int {
	if e.PerPage <= 0 || e.TotalResults <= 0 {
		return 0
	}
	return (e.TotalResults + e.PerPage - 1) / e.PerPage
}

// HasPrev reports whether a previous page exists.
func (e *Envelope[T]) HasPrev() bool {
	return e.PageNow > 1
}

// HasNext reports whether a next page exists. The backend omits next_link
// on the last page, so both signals have to agree.
func (e *Envelope[T]) HasNext() bool {
	return e.PageNow < e.TotalPages() && e.NextLink != nil
}
