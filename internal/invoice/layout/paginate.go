package layout

import "fmt"

// BlankInvoice marks a slot with no invoice in it.
const BlankInvoice = -1

// Slot is one placement area of a page. Invoice is the index into the batch,
// or BlankInvoice.
type Slot struct {
	Index   int
	Invoice int
}

func (s Slot) Filled() bool {
	return s.Invoice != BlankInvoice
}

// Page is a fixed-capacity run of slots. Number starts at 1.
type Page struct {
	Number int
	Slots  []Slot
}

// Filled returns the number of non-blank slots.
func (p Page) Filled() int {
	n := 0
	for _, s := range p.Slots {
		if s.Filled() {
			n++
		}
	}
	return n
}

// PageCount is ceil(count / capacity).
func PageCount(count, capacity int) int {
	if capacity <= 0 {
		panic(fmt.Sprintf("layout: invalid page capacity %d", capacity))
	}
	if count <= 0 {
		return 0
	}
	return (count + capacity - 1) / capacity
}

// Paginate partitions count invoices, in order, into pages of capacity
// slots. Trailing slots of the last page are blank so the grid keeps its
// shape.
func Paginate(count, capacity int) []Page {
	total := PageCount(count, capacity)
	pages := make([]Page, 0, total)
	next := 0
	for p := 0; p < total; p++ {
		slots := make([]Slot, capacity)
		for i := range slots {
			slots[i] = Slot{Index: i, Invoice: BlankInvoice}
			if next < count {
				slots[i].Invoice = next
				next++
			}
		}
		pages = append(pages, Page{Number: p + 1, Slots: slots})
	}
	return pages
}

// Placement is where one invoice lands in a paginated batch.
type Placement struct {
	Invoice int
	Page    int
	Slot    int
}

// Placements flattens pages into one entry per filled slot, in invoice
// order.
func Placements(pages []Page) []Placement {
	var out []Placement
	for _, page := range pages {
		for _, slot := range page.Slots {
			if !slot.Filled() {
				continue
			}
			out = append(out, Placement{Invoice: slot.Invoice, Page: page.Number, Slot: slot.Index})
		}
	}
	return out
}
