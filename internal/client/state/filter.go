package state

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/moviekeeper/internal/common"
	"github.com/dmitrijs2005/moviekeeper/internal/models"
)

// RentalOp selects how RentalFilter compares the rental count.
type RentalOp int

const (
	AnyRentals RentalOp = iota
	AtMostRentals
	MoreThanRentals
)

// DefaultRentalThreshold is the split used by "<=" and ">" without a number.
const DefaultRentalThreshold = 10

// RentalFilter keeps items by rental count. The zero value keeps everything.
type RentalFilter struct {
	Op        RentalOp
	Threshold int
}

// ParseRentalFilter reads "any", "<=N" or ">N". An empty string is "any";
// a bare "<=" or ">" uses DefaultRentalThreshold.
func ParseRentalFilter(s string) (RentalFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "any" {
		return RentalFilter{}, nil
	}

	var f RentalFilter
	var num string
	switch {
	case strings.HasPrefix(s, "<="):
		f.Op, num = AtMostRentals, s[2:]
	case strings.HasPrefix(s, ">"):
		f.Op, num = MoreThanRentals, s[1:]
	default:
		return RentalFilter{}, fmt.Errorf("%w: rental filter %q, want <=N, >N or any", common.ErrValidation, s)
	}

	num = strings.TrimSpace(num)
	if num == "" {
		f.Threshold = DefaultRentalThreshold
		return f, nil
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return RentalFilter{}, fmt.Errorf("%w: rental filter %q, want <=N, >N or any", common.ErrValidation, s)
	}
	f.Threshold = n
	return f, nil
}

// Match reports whether m passes f.
func (f RentalFilter) Match(m models.Movie) bool {
	switch f.Op {
	case AtMostRentals:
		return m.RentalCount <= f.Threshold
	case MoreThanRentals:
		return m.RentalCount > f.Threshold
	default:
		return true
	}
}

func (f RentalFilter) String() string {
	switch f.Op {
	case AtMostRentals:
		return "<=" + strconv.Itoa(f.Threshold) + " rentals"
	case MoreThanRentals:
		return ">" + strconv.Itoa(f.Threshold) + " rentals"
	default:
		return "any number of rentals"
	}
}

// Filter returns the items that pass f, in Collection State order.
func (s *Store) Filter(f RentalFilter) []models.Movie {
	items := s.Snapshot().Items
	if f.Op == AnyRentals {
		return items
	}

	out := make([]models.Movie, 0, len(items))
	for _, m := range items {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}
