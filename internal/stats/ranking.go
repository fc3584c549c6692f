package stats

import (
	"fmt"
	"sort"

	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// DefaultTopN is the number of categories shown in rankings
const DefaultTopN = 10

// TopN counts the distinct values of a categorical column and returns the n
// most frequent, descending by count. Ties keep the order in which values were
// first encountered. Empty values are not counted.
func TopN(trips []models.Trip, column string, n int) ([]models.StationRanking, error) {
	if _, ok := models.CategoricalValue(models.Trip{}, column); !ok {
		return nil, fmt.Errorf("column %q cannot be ranked", column)
	}
	if n <= 0 {
		return []models.StationRanking{}, nil
	}

	counts := make(map[string]int)
	var order []string
	for _, t := range trips {
		v, _ := models.CategoricalValue(t, column)
		if v == "" {
			continue
		}
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n > len(order) {
		n = len(order)
	}

	rankings := make([]models.StationRanking, n)
	for i, v := range order[:n] {
		rankings[i] = models.StationRanking{Rank: i + 1, Station: v, Trips: counts[v]}
	}
	return rankings, nil
}
