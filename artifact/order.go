package artifact

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ParseIndex returns the numeric stem of a name such as "12.mp4".
func ParseIndex(name string) (int, error) {
	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	i, err := strconv.Atoi(stem)
	if err != nil {
		return 0, fmt.Errorf("file name %q has no numeric stem", base)
	}
	return i, nil
}

// SortByIndex orders names by the numeric value of their stem, so 10.mp4
// comes after 9.mp4.
func SortByIndex(names []string) ([]string, error) {
	type indexed struct {
		name  string
		index int
	}
	items := make([]indexed, 0, len(names))
	for _, name := range names {
		i, err := ParseIndex(name)
		if err != nil {
			return nil, err
		}
		items = append(items, indexed{name: name, index: i})
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].index < items[b].index
	})

	sorted := make([]string, len(items))
	for i, item := range items {
		sorted[i] = item.name
	}
	return sorted, nil
}
