package catalog

import "math"

// Pager traduce página y tamaño a skip/limit, acotando el tamaño al máximo configurado
type Pager struct {
	defaultSize int
	maxSize     int
}

func NewPager(defaultSize, maxSize int) Pager {
	if maxSize < 1 {
		maxSize = 1
	}
	if defaultSize < 1 || defaultSize > maxSize {
		defaultSize = maxSize
	}
	return Pager{defaultSize: defaultSize, maxSize: maxSize}
}

func (p Pager) DefaultSize() int { return p.defaultSize }
func (p Pager) MaxSize() int     { return p.maxSize }

type Page struct {
	Number int
	Size   int
}

func (p Pager) Page(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	if size > p.maxSize {
		size = p.maxSize
	}
	// number*size tiene que entrar en int64 para que skip y hasNext no desborden
	if maxPage := math.MaxInt64 / int64(size); int64(number) > maxPage {
		number = int(maxPage)
	}
	return Page{Number: number, Size: size}
}

func (pg Page) Skip() int64  { return int64(pg.Number-1) * int64(pg.Size) }
func (pg Page) Limit() int64 { return int64(pg.Size) }

type PageInfo struct {
	TotalProducts int64 `json:"totalProducts"`
	TotalPages    int64 `json:"totalPages"`
	CurrentPage   int   `json:"currentPage"`
	PageSize      int   `json:"pageSize"`
	HasNext       bool  `json:"hasNext"`
	HasPrev       bool  `json:"hasPrev"`
}

// Info calcula la metadata de paginación para total coincidencias
func (pg Page) Info(total int64) PageInfo {
	if total < 0 {
		total = 0
	}
	size := int64(pg.Size)
	return PageInfo{
		TotalProducts: total,
		TotalPages:    (total + size - 1) / size,
		CurrentPage:   pg.Number,
		PageSize:      pg.Size,
		HasNext:       pg.Skip()+size < total,
		HasPrev:       pg.Number > 1 && total > 0,
	}
}
