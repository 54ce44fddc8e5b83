// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the number of rows shown in paged lists. Kept as an int
// because call sites add/subtract before casting to int64 for SetLimit.
const PageSize = 50

// LimitPlusOne returns PageSize+1 as int64 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne() int64 { return int64(PageSize + 1) }

// ParseStart extracts the 1-based "start" query parameter for display
// ranges. Returns 1 if absent or invalid.
func ParseStart(r *http.Request) int {
	s := query.Get(r, "start")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Result holds the output of TrimPage.
type Result struct {
	HasPrev bool
	HasNext bool
}

// TrimPage trims a slice fetched with LimitPlusOne for keyset pagination.
// It modifies the slice in place and returns the pagination indicators.
//
// Going backwards (before != ""): an overlong page means an older page
// exists, so the first element is trimmed; HasNext is always true.
// Going forwards: an overlong page is cut to PageSize and HasNext set;
// HasPrev is true only when a cursor was followed to get here.
func TrimPage[T any](rows *[]T, before, after string) Result {
	orig := len(*rows)
	var res Result

	if before != "" {
		if orig > PageSize {
			*rows = (*rows)[1:]
			res.HasPrev = true
		}
		res.HasNext = true
		return res
	}

	if orig > PageSize {
		*rows = (*rows)[:PageSize]
		res.HasNext = true
	}
	res.HasPrev = after != ""
	return res
}

// Range holds computed display range values for a paginated list.
type Range struct {
	Start     int // 1-based start index (0 if no results)
	End       int // 1-based end index (0 if no results)
	PrevStart int
	NextStart int
}

// ComputeRange calculates display range values from the current start
// index and the number of rows shown.
func ComputeRange(start, shown int) Range {
	if shown == 0 {
		return Range{Start: 0, End: 0, PrevStart: 1, NextStart: 1}
	}
	prev := start - PageSize
	if prev < 1 {
		prev = 1
	}
	return Range{
		Start:     start,
		End:       start + shown - 1,
		PrevStart: prev,
		NextStart: start + shown,
	}
}

// Direction indicates the pagination direction.
type Direction int

const (
	Forward  Direction = iota // ascending sort, "gt" cursor window
	Backward                  // descending sort, "lt" cursor window
)

// KeysetConfig is the decoded pagination state for one request.
type KeysetConfig struct {
	Direction Direction
	SortOrder int // 1 ascending, -1 descending
	Cursor    *wafflemongo.Cursor
}

// ConfigureKeyset determines the pagination direction and decodes the
// cursor from the before/after query parameters.
func ConfigureKeyset(before, after string) KeysetConfig {
	cfg := KeysetConfig{Direction: Forward, SortOrder: 1}

	if before != "" {
		cfg.Direction = Backward
		cfg.SortOrder = -1
		if c, ok := wafflemongo.DecodeCursor(before); ok {
			cfg.Cursor = &c
		}
	} else if after != "" {
		if c, ok := wafflemongo.DecodeCursor(after); ok {
			cfg.Cursor = &c
		}
	}
	return cfg
}

// ApplyToFind configures FindOptions with the keyset sort and limit.
// _id is the tiebreaker so equal sort keys page deterministically.
func (cfg KeysetConfig) ApplyToFind(find *options.FindOptions, sortField string) {
	find.SetSort(bson.D{
		{Key: sortField, Value: cfg.SortOrder},
		{Key: "_id", Value: cfg.SortOrder},
	}).SetLimit(LimitPlusOne())
}

// KeysetWindow returns the cursor condition for the query filter,
// or nil when no cursor is set.
func (cfg KeysetConfig) KeysetWindow(sortField string) bson.M {
	if cfg.Cursor == nil {
		return nil
	}
	dir := "gt"
	if cfg.Direction == Backward {
		dir = "lt"
	}
	return wafflemongo.KeysetWindow(sortField, dir, cfg.Cursor.CI, cfg.Cursor.ID)
}

// Reverse reverses rows in place, restoring display order after a
// backwards page fetch.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// BuildCursors creates prev/next cursor strings from the first and last
// rows of the page.
func BuildCursors[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) (prev, next string) {
	if len(rows) == 0 {
		return "", ""
	}
	first, last := rows[0], rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(first), idFn(first)),
		wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}
