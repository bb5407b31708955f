package printing

import (
	"github.com/shopspring/decimal"

	"github.com/tileshop/backend/internal/domain/invoicing"
)

// ElementKind identifies what a layout element draws
type ElementKind int

const (
	ElementSectionHeader ElementKind = iota
	ElementItem
	ElementSectionTotal
)

func (k ElementKind) String() string {
	switch k {
	case ElementSectionHeader:
		return "section_header"
	case ElementItem:
		return "item"
	case ElementSectionTotal:
		return "section_total"
	default:
		return "unknown"
	}
}

// Element is one atomic row of the item area placed at Y
type Element struct {
	Kind    ElementKind
	Section string
	// SrNo restarts at 1 for every section. Zero for non-item elements.
	SrNo   int
	Item   *invoicing.LineItem
	Total  decimal.Decimal
	Y      float64
	Height float64
}

// Page is the set of elements placed on one physical page
type Page struct {
	Number   int
	Elements []Element
	// Limit is the bottom of the item area on this page
	Limit float64
}

// Paginate lays the grouped items out onto pages. Elements are packed
// greedily and never split; an element that does not fit starts a new page.
// Rows that would run into the footer on the last page move to a fresh
// page. The result always holds at least one page.
func Paginate(items []invoicing.LineItem, tmap *TemplateMap) []Page {
	start := tmap.Pagination.ContentAreaStartY
	pages := []Page{{Number: 1, Limit: tmap.LimitFor(1)}}
	cursor := start

	place := func(el Element) {
		cur := &pages[len(pages)-1]
		if cursor+el.Height > cur.Limit && len(cur.Elements) > 0 {
			n := cur.Number + 1
			pages = append(pages, Page{Number: n, Limit: tmap.LimitFor(n)})
			cursor = start
			cur = &pages[len(pages)-1]
		}
		el.Y = cursor
		cur.Elements = append(cur.Elements, el)
		cursor += el.Height
	}

	for _, section := range invoicing.GroupBySection(items) {
		place(Element{Kind: ElementSectionHeader, Section: section.Name, Height: tmap.Table.SectionHeader.Height})
		for i := range section.Items {
			item := section.Items[i]
			h := tmap.Table.RowHeight
			if item.HasImage() {
				h = tmap.Table.RowHeightWithImage
			}
			place(Element{Kind: ElementItem, Section: section.Name, SrNo: i + 1, Item: &item, Height: h})
		}
		place(Element{Kind: ElementSectionTotal, Section: section.Name, Total: section.Total, Height: tmap.Table.SectionTotal.Height})
	}
	return clearFooter(pages, tmap)
}

// clearFooter moves the tail of the last page below the footer limit onto
// new pages until the last page ends above it.
func clearFooter(pages []Page, tmap *TemplateMap) []Page {
	footer := tmap.FinalLimit()
	start := tmap.Pagination.ContentAreaStartY
	for {
		last := &pages[len(pages)-1]
		cut := -1
		for i, el := range last.Elements {
			if el.Y+el.Height > footer {
				cut = i
				break
			}
		}
		if cut < 0 {
			last.Limit = min(last.Limit, footer)
			return pages
		}
		// an element taller than the whole area cannot be helped
		if cut == 0 {
			return pages
		}

		moved := append([]Element(nil), last.Elements[cut:]...)
		last.Elements = last.Elements[:cut]
		next := Page{Number: last.Number + 1, Limit: tmap.LimitFor(last.Number + 1)}
		cursor := start
		for _, el := range moved {
			el.Y = cursor
			cursor += el.Height
			next.Elements = append(next.Elements, el)
		}
		pages = append(pages, next)
	}
}
