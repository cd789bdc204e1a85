package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pub-catalog/models"
)

func seedTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	inputs := []models.PublicationInput{
		{
			Title:      "Влияние нанотехнологий на структуру полимеров",
			Authors:    "Иванов И.И., Петров П.П.",
			University: "Московский государственный университет",
			Journal:    "Вестник нанотехнологий",
			Year:       2022,
			Category:   "Q1",
			Database:   "Scopus",
		},
		{
			Title:      "Методы анализа больших данных в биоинформатике",
			Authors:    "Смирнов А.А., Иванов И.И.",
			University: "Санкт-Петербургский политехнический университет",
			Journal:    "Биоинформатика и геномика",
			Year:       2021,
			Category:   "Q2",
			Database:   "Scopus, ВАК",
		},
		{
			Title:      "Автоматизированный анализ медицинских изображений",
			Authors:    "Петров П.П., Сидоров С.С.",
			University: "Новосибирский государственный университет",
			Journal:    "Медицинская информатика",
			Year:       2023,
			Category:   "Q3",
			Database:   "eLIBRARY",
		},
		{
			Title:        "Способ получения биоразлагаемых материалов",
			Authors:      "Кузнецов А.В., Иванов И.И.",
			University:   "Казанский федеральный университет",
			Year:         2022,
			Category:     "Патент",
			Type:         "patent",
			PatentNumber: "RU2712345",
		},
	}
	for _, in := range inputs {
		s.Create(in)
	}
	return s
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	s := NewMemoryStore()
	a := s.Create(models.PublicationInput{Title: "A", Authors: "X", Year: 2020})
	b := s.Create(models.PublicationInput{Title: "B", Authors: "Y", Year: 2021})

	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)
	assert.Equal(t, "article", a.Type)
	assert.False(t, a.CreatedAt.IsZero())

	got := s.Get(a.ID)
	require.NotNil(t, got)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.CreatedAt, got.CreatedAt)
}

func TestGetUnknownIDReturnsNil(t *testing.T) {
	s := seedTestStore(t)
	assert.Nil(t, s.Get(999))
}

func TestUpdateMergesOnlyProvidedFields(t *testing.T) {
	s := seedTestStore(t)
	before := s.Get(1)
	require.NotNil(t, before)

	year := 2099
	updated := s.Update(1, models.PublicationUpdate{Year: &year})
	require.NotNil(t, updated)
	assert.Equal(t, 2099, updated.Year)
	assert.Equal(t, before.Title, updated.Title)
	assert.Equal(t, before.Authors, updated.Authors)
	assert.Equal(t, before.ID, updated.ID)
	assert.Equal(t, before.CreatedAt, updated.CreatedAt)

	assert.Nil(t, s.Update(999, models.PublicationUpdate{Year: &year}))
}

func TestDeleteRemovesRecord(t *testing.T) {
	s := seedTestStore(t)
	require.True(t, s.Delete(2))
	assert.Nil(t, s.Get(2))
	assert.Equal(t, 3, s.Count())
	assert.False(t, s.Delete(2))

	// IDs are never reused after a delete.
	p := s.Create(models.PublicationInput{Title: "New", Authors: "Z", Year: 2024})
	assert.Equal(t, 5, p.ID)
}

func TestGetByIDsKeepsInputOrder(t *testing.T) {
	s := seedTestStore(t)
	pubs := s.GetByIDs([]int{3, 999, 1})
	require.Len(t, pubs, 2)
	assert.Equal(t, 3, pubs[0].ID)
	assert.Equal(t, 1, pubs[1].ID)
}

func TestSearchDefaultsToYearDescending(t *testing.T) {
	s := seedTestStore(t)
	res := s.Search(models.SearchParams{})

	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Data, 4)
	assert.Equal(t, 2023, res.Data[0].Year)
	assert.Equal(t, 2022, res.Data[1].Year)
	assert.Equal(t, 2022, res.Data[2].Year)
	assert.Equal(t, 2021, res.Data[3].Year)
	// Equal years keep insertion order under the stable sort.
	assert.Equal(t, 1, res.Data[1].ID)
	assert.Equal(t, 4, res.Data[2].ID)
}

func TestSearchCategoryCaseInsensitive(t *testing.T) {
	s := seedTestStore(t)
	res := s.Search(models.SearchParams{Category: "q1"})
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Q1", res.Data[0].Category)
}

func TestSearchYearBoundsInclusive(t *testing.T) {
	s := seedTestStore(t)

	res := s.Search(models.SearchParams{YearFrom: 2022})
	assert.Equal(t, 3, res.Total)

	res = s.Search(models.SearchParams{YearFrom: 2021, YearTo: 2021})
	assert.Equal(t, 1, res.Total)

	res = s.Search(models.SearchParams{YearFrom: 2022, YearTo: 2023})
	assert.Equal(t, 3, res.Total)
}

func TestSearchFreeTextDisjunction(t *testing.T) {
	s := seedTestStore(t)

	// Matches a title.
	res := s.Search(models.SearchParams{Query: "нанотехнологий"})
	assert.Equal(t, 1, res.Total)

	// Matches an author across several records.
	res = s.Search(models.SearchParams{Query: "Иванов"})
	assert.Equal(t, 3, res.Total)

	// Matches a university.
	res = s.Search(models.SearchParams{Query: "Казанский"})
	assert.Equal(t, 1, res.Total)

	res = s.Search(models.SearchParams{Query: "никакого совпадения"})
	assert.Equal(t, 0, res.Total)
	assert.Empty(t, res.Data)
}

func TestSearchDatabaseTagDisjunction(t *testing.T) {
	s := seedTestStore(t)

	res := s.Search(models.SearchParams{Database: []string{"вак"}})
	assert.Equal(t, 1, res.Total)

	res = s.Search(models.SearchParams{Database: []string{"ВАК", "eLIBRARY"}})
	assert.Equal(t, 2, res.Total)

	res = s.Search(models.SearchParams{Database: []string{"IEEE"}})
	assert.Equal(t, 0, res.Total)
}

func TestSearchFiltersAreConjunctive(t *testing.T) {
	s := seedTestStore(t)
	res := s.Search(models.SearchParams{Author: "Иванов", YearFrom: 2022})
	assert.Equal(t, 2, res.Total)

	res = s.Search(models.SearchParams{Author: "Иванов", Category: "Q3"})
	assert.Equal(t, 0, res.Total)
}

func TestSearchPagination(t *testing.T) {
	s := seedTestStore(t)

	page1 := s.Search(models.SearchParams{Page: 1, Limit: 2})
	page2 := s.Search(models.SearchParams{Page: 2, Limit: 2})

	assert.Equal(t, 4, page1.Total)
	assert.Equal(t, 4, page2.Total)
	require.Len(t, page1.Data, 2)
	require.Len(t, page2.Data, 2)
	assert.Equal(t, 2023, page1.Data[0].Year)

	// Concatenated pages reproduce the full ordering.
	full := s.Search(models.SearchParams{Limit: 10})
	var ids []int
	for _, p := range append(page1.Data, page2.Data...) {
		ids = append(ids, p.ID)
	}
	var want []int
	for _, p := range full.Data {
		want = append(want, p.ID)
	}
	assert.Equal(t, want, ids)

	// A page past the end is empty but keeps the total.
	past := s.Search(models.SearchParams{Page: 9, Limit: 10})
	assert.Equal(t, 4, past.Total)
	assert.Empty(t, past.Data)
}

func TestSearchNormalizesBadPaging(t *testing.T) {
	s := seedTestStore(t)
	res := s.Search(models.SearchParams{Page: -3, Limit: 0})
	assert.Equal(t, 4, res.Total)
	assert.Len(t, res.Data, 4)
}

func TestSearchSortByTitleAscending(t *testing.T) {
	s := NewMemoryStore()
	s.Create(models.PublicationInput{Title: "beta", Authors: "A", Year: 2020})
	s.Create(models.PublicationInput{Title: "Alpha", Authors: "B", Year: 2021})
	s.Create(models.PublicationInput{Title: "gamma", Authors: "C", Year: 2019})

	res := s.Search(models.SearchParams{SortBy: "title", SortDirection: "asc"})
	require.Len(t, res.Data, 3)
	assert.Equal(t, "Alpha", res.Data[0].Title)
	assert.Equal(t, "beta", res.Data[1].Title)
	assert.Equal(t, "gamma", res.Data[2].Title)
}

// Exercises sorted reads racing concurrent writes; run with -race.
func TestSearchConcurrentWithWrites(t *testing.T) {
	s := seedTestStore(t)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			title := fmt.Sprintf("Edited title %d", i)
			s.Update(1, models.PublicationUpdate{Title: &title})
		}
	}()

	for i := 0; i < 500; i++ {
		res := s.Search(models.SearchParams{SortBy: "title", SortDirection: "asc"})
		assert.Equal(t, 4, res.Total)
	}
	close(stop)
	wg.Wait()
}

func TestSearchReturnsCopies(t *testing.T) {
	s := seedTestStore(t)
	res := s.Search(models.SearchParams{})
	require.NotEmpty(t, res.Data)

	res.Data[0].Title = "mutated"
	fresh := s.Get(res.Data[0].ID)
	require.NotNil(t, fresh)
	assert.NotEqual(t, "mutated", fresh.Title)
}
