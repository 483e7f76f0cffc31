package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerms(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"alice", "456"}, ParseTerms("alice,456"))
	assert.Equal(t, []string{"alice", "456"}, ParseTerms(" alice , 456 ,, "))
	assert.Equal(t, []string{"ali"}, ParseTerms("ali"))
	assert.Nil(t, ParseTerms(""))
	assert.Nil(t, ParseTerms(" , ,"))
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	p := ParsePage("", "")
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 10, p.Size)
	assert.Equal(t, 0, p.Offset())

	p = ParsePage("3", "25")
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 25, p.Size)
	assert.Equal(t, 50, p.Offset())

	p = ParsePage("0", "10000")
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 200, p.Size)

	assert.Equal(t, 0, Page{Number: 1, Size: 10}.Pages(0))
	assert.Equal(t, 3, Page{Number: 1, Size: 10}.Pages(21))
}

type record map[string]string

func (r record) get(field string) string { return r[field] }

var (
	alice = record{"visitor_name": "Alice Doe", "phone": "123"}
	bob   = record{"visitor_name": "Bob", "phone": "456"}
)

func TestMatch_CommaSplitORAcrossTermsAndFields(t *testing.T) {
	t.Parallel()

	p := Predicate{
		Terms:      ParseTerms("alice,456"),
		TermFields: []string{"visitor_name", "phone"},
	}

	assert.True(t, p.Match(alice.get, time.Time{}))
	assert.True(t, p.Match(bob.get, time.Time{}))
}

func TestMatch_DiscreteFilterANDsWithTerms(t *testing.T) {
	t.Parallel()

	// "ali" alone matches Alice, but the phone filter narrows to phone 456,
	// so neither record survives the AND.
	p := Predicate{
		Terms:      ParseTerms("ali"),
		TermFields: []string{"visitor_name", "phone"},
		Filters:    []FieldFilter{{Field: "phone", Value: "456"}},
	}

	assert.False(t, p.Match(alice.get, time.Time{}))
	assert.False(t, p.Match(bob.get, time.Time{}))
}

func TestMatch_ExactAndTimeRange(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	p := Predicate{
		Exact:     []ExactFilter{{Field: "purpose", Value: "case"}},
		TimeField: "visit_time",
		From:      &from,
		To:        &to,
	}

	caseVisit := record{"purpose": "case"}
	assert.True(t, p.Match(caseVisit.get, from.AddDate(0, 0, 10)))
	assert.False(t, p.Match(caseVisit.get, from.AddDate(0, -1, 0)))
	assert.False(t, p.Match(caseVisit.get, to.AddDate(0, 1, 0)))

	personal := record{"purpose": "personal"}
	assert.False(t, p.Match(personal.get, from.AddDate(0, 0, 10)))
}

func TestSQL_PlaceholdersAndArgs(t *testing.T) {
	t.Parallel()

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := Predicate{
		Terms:      []string{"alice", "456"},
		TermFields: []string{"visitor_name", "phone"},
		Filters:    []FieldFilter{{Field: "address", Value: "dhaka"}},
		Exact:      []ExactFilter{{Field: "purpose", Value: "case"}},
		TimeField:  "visit_time",
		From:       &from,
	}

	where, args := p.SQL(1)
	require.Len(t, args, 5)
	assert.Equal(t, "%alice%", args[0])
	assert.Equal(t, "%456%", args[1])
	assert.Equal(t, "%dhaka%", args[2])
	assert.Equal(t, "case", args[3])
	assert.Equal(t, from, args[4])

	assert.Equal(t,
		"(visitor_name ILIKE $1 OR phone ILIKE $1 OR visitor_name ILIKE $2 OR phone ILIKE $2)"+
			" AND address ILIKE $3 AND purpose = $4 AND visit_time >= $5",
		where,
	)
}

func TestSQL_ArgIndexOffsetAndEscaping(t *testing.T) {
	t.Parallel()

	p := Predicate{
		Terms:      []string{"50%_off"},
		TermFields: []string{"name"},
	}
	where, args := p.SQL(3)
	assert.Equal(t, "(name ILIKE $3)", where)
	require.Len(t, args, 1)
	assert.Equal(t, `%50\%\_off%`, args[0])

	empty, args := Predicate{}.SQL(1)
	assert.Empty(t, empty)
	assert.Empty(t, args)
}
