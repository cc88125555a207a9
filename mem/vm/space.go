package vm

// A Region is a named range [Start, End) of virtual addresses, such as a
// variable allocated by a process.
type Region struct {
	Start uint32
	End   uint32
}

// Empty tells if the region covers no byte.
func (r Region) Empty() bool {
	return r.End <= r.Start
}

// Pages returns the first and the last page the region touches.
func (r Region) Pages() (first, last uint32) {
	return PageSpan(r.Start, r.End-r.Start)
}

// An Area is a contiguous part of the virtual address space with uniform
// usage. Break is the current top of the area. FreeList holds the ranges
// below Break that can be handed out again.
type Area struct {
	ID       int
	Start    uint32
	End      uint32
	Break    uint32
	FreeList []Region
}

// LastPage returns the last page number spanned by the area, following the
// (End-1)/PageSize convention. An area with End 0 spans page 0 only.
func (a Area) LastPage() uint32 {
	if a.End == 0 {
		return 0
	}

	return (a.End - 1) / PageSize
}

// An AddressSpace groups the page table, the areas, and the symbol regions of
// one process.
type AddressSpace struct {
	PageTable *PageTable
	Areas     []Area
	Regions   []Region
}

// NewAddressSpace creates an address space with one empty area and
// numRegions empty symbol regions.
func NewAddressSpace(numRegions int) *AddressSpace {
	return &AddressSpace{
		PageTable: NewPageTable(MaxPageNumber),
		Areas:     []Area{{ID: 0}},
		Regions:   make([]Region, numRegions),
	}
}
