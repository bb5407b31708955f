package invoicing

import "github.com/shopspring/decimal"

// Section is a run of line items sharing a location label
type Section struct {
	Name  string
	Items []LineItem
	Total decimal.Decimal
}

// GroupBySection groups items by Section() in order of first appearance.
// Each section's Total is the sum of FinalAmount over its own items.
func GroupBySection(items []LineItem) []Section {
	index := make(map[string]int)
	var sections []Section
	for _, item := range items {
		name := item.Section()
		pos, ok := index[name]
		if !ok {
			pos = len(sections)
			index[name] = pos
			sections = append(sections, Section{Name: name, Total: decimal.Zero})
		}
		sections[pos].Items = append(sections[pos].Items, item)
		sections[pos].Total = sections[pos].Total.Add(item.FinalAmount)
	}
	return sections
}
