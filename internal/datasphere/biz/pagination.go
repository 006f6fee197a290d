package biz

// Pager holds the pagination defaults of one listing.
type Pager struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	DatasetPager     = Pager{DefaultLimit: 20, MaxLimit: 100}
	CommentPager     = Pager{DefaultLimit: 10, MaxLimit: 100}
	UserPager        = Pager{DefaultLimit: 10, MaxLimit: 100}
	AdminUserPager   = Pager{DefaultLimit: 10, MaxLimit: 100}
	LeaderboardPager = Pager{DefaultLimit: 10, MaxLimit: 50}
)

// Normalize clamps page to at least 1 and limit to [1, MaxLimit].
// Non-positive limits fall back to DefaultLimit.
func (p Pager) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = p.DefaultLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

// Offset returns the row offset of a normalized page.
func Offset(page, limit int) int {
	return (page - 1) * limit
}

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}
