// Package query строит план выборки заметок из постраничного запроса.
// Пакет не имеет состояния и не обращается к хранилищу.
package query

import (
	"strings"
	"time"

	"notes-api/internal/model"
)

// PredicateKind вид предиката фильтрации
type PredicateKind int

const (
	// TextSearch заголовок ИЛИ содержимое содержит подстроку
	TextSearch PredicateKind = iota + 1
	// TitleContains заголовок содержит подстроку
	TitleContains
	// ContentContains содержимое содержит подстроку
	ContentContains
	// CreatedFrom дата создания >= границы
	CreatedFrom
	// CreatedUntil дата создания <= границы
	CreatedUntil
)

// Predicate один условный фильтр плана. Строковые значения хранятся в нижнем регистре.
type Predicate struct {
	Kind  PredicateKind
	Term  string
	Bound time.Time
}

// Order ключ сортировки плана
type Order struct {
	Field      model.SortField
	Column     string
	Descending bool
}

// Plan детерминированный план выборки: фильтры объединяются через AND,
// затем сортировка, затем Offset/Limit. Limit == 0 означает без ограничения.
type Plan struct {
	Filters []Predicate
	Order   Order
	Offset  int
	Limit   int
}

// sortKey описывает колонку и способ сравнения для поля сортировки
type sortKey struct {
	column  string
	compare func(a, b model.Note) int
}

// sortKeys таблица соответствия поля сортировки колонке хранилища и аксессору
var sortKeys = map[model.SortField]sortKey{
	model.SortByTitle: {
		column:  "title",
		compare: func(a, b model.Note) int { return strings.Compare(a.Title, b.Title) },
	},
	model.SortByContent: {
		column:  "content",
		compare: compareContent,
	},
	model.SortByCreated: {
		column:  "created_at",
		compare: func(a, b model.Note) int { return a.CreatedAt.Compare(b.CreatedAt) },
	},
	model.SortByUpdated: {
		column:  "updated_at",
		compare: func(a, b model.Note) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	},
}

// DefaultOrder сортировка по умолчанию: по дате обновления, новые первыми
var DefaultOrder = Order{Field: model.SortByUpdated, Column: "updated_at", Descending: true}

// Build строит план по запросу. Перед построением запрос санитизируется.
func Build(req model.PagedRequest) Plan {
	req = req.Sanitize()

	plan := Plan{
		Order:  ResolveOrder(req.SortBy, req.SortDescending),
		Offset: req.Skip(),
		Limit:  req.PageSize,
	}

	if req.Search != "" {
		plan.Filters = append(plan.Filters, Predicate{Kind: TextSearch, Term: strings.ToLower(req.Search)})
	}
	if req.Title != "" {
		plan.Filters = append(plan.Filters, Predicate{Kind: TitleContains, Term: strings.ToLower(req.Title)})
	}
	if req.Content != "" {
		plan.Filters = append(plan.Filters, Predicate{Kind: ContentContains, Term: strings.ToLower(req.Content)})
	}
	if req.CreatedAfter != nil {
		plan.Filters = append(plan.Filters, Predicate{Kind: CreatedFrom, Bound: req.CreatedAfter.UTC()})
	}
	if req.CreatedBefore != nil {
		plan.Filters = append(plan.Filters, Predicate{Kind: CreatedUntil, Bound: req.CreatedBefore.UTC()})
	}

	return plan
}

// TitleSearch план поиска по заголовку без пагинации, по дате обновления
func TitleSearch(term string) Plan {
	return Plan{
		Filters: []Predicate{{Kind: TitleContains, Term: strings.ToLower(strings.TrimSpace(term))}},
		Order:   DefaultOrder,
	}
}

// All план полной выборки в порядке по умолчанию
func All() Plan {
	return Plan{Order: DefaultOrder}
}

// ResolveOrder сопоставляет имя поля сортировки с ключом.
// Неизвестное или пустое имя дает сортировку по обновлению по убыванию.
func ResolveOrder(sortBy string, descending bool) Order {
	field, ok := model.ParseSortField(sortBy)
	if !ok {
		return DefaultOrder
	}
	return Order{Field: field, Column: sortKeys[field].column, Descending: descending}
}

// Paged сообщает, ограничивает ли план размер выборки
func (p Plan) Paged() bool {
	return p.Limit > 0
}

// Matches проверяет заметку на соответствие всем фильтрам плана
func (p Plan) Matches(n model.Note) bool {
	for _, f := range p.Filters {
		if !f.matches(n) {
			return false
		}
	}
	return true
}

func (f Predicate) matches(n model.Note) bool {
	switch f.Kind {
	case TextSearch:
		return containsFold(n.Title, f.Term) || (n.Content != nil && containsFold(*n.Content, f.Term))
	case TitleContains:
		return containsFold(n.Title, f.Term)
	case ContentContains:
		return n.Content != nil && containsFold(*n.Content, f.Term)
	case CreatedFrom:
		return !n.CreatedAt.Before(f.Bound)
	case CreatedUntil:
		return !n.CreatedAt.After(f.Bound)
	default:
		return true
	}
}

// Compare сравнивает заметки в порядке плана. При равных ключах порядок
// определяется идентификатором по возрастанию, чтобы страницы не перекрывались.
func (p Plan) Compare(a, b model.Note) int {
	key, ok := sortKeys[p.Order.Field]
	if !ok {
		key = sortKeys[model.SortByUpdated]
	}
	c := key.compare(a, b)
	if p.Order.Descending {
		c = -c
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Window возвращает границы страницы [start, end) для выборки длины total.
// Отрицательное смещение дает пустое окно.
func (p Plan) Window(total int) (int, int) {
	if !p.Paged() {
		return 0, total
	}
	if p.Offset < 0 || p.Offset >= total {
		return total, total
	}
	start := p.Offset
	if p.Limit > total-start {
		return start, total
	}
	return start, start + p.Limit
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

// compareContent сравнивает содержимое; отсутствующее содержимое меньше любого
// значения, как NULL при сортировке по возрастанию в SQLite.
func compareContent(a, b model.Note) int {
	switch {
	case a.Content == nil && b.Content == nil:
		return 0
	case a.Content == nil:
		return -1
	case b.Content == nil:
		return 1
	default:
		return strings.Compare(*a.Content, *b.Content)
	}
}
