package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexogroup/nexo-server/internal/domain"
)

func member(id, name, email, company, segment string, status domain.MemberStatus) *domain.Member {
	m := &domain.Member{Name: name, Email: email, Status: status}
	m.ID = id
	m.Company = company
	m.Segment = segment
	return m
}

func seededIndex(t *testing.T) *MemberIndex {
	t.Helper()
	x, err := NewMemberIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { x.Close() })

	require.NoError(t, x.Rebuild([]*domain.Member{
		member("mem-1", "Ana Souza", "ana@acme.com", "Acme Advocacia", "Jurídico", domain.MemberActive),
		member("mem-2", "João Pereira", "joao@obra.com.br", "Obra Certa", "Construção Civil", domain.MemberActive),
		member("mem-3", "Carla Dias", "carla@example.com", "Dias Contabilidade", "Contabilidade", domain.MemberInvited),
	}))
	return x
}

func ids(hits []Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func TestSearch_ByName(t *testing.T) {
	x := seededIndex(t)

	hits, err := x.Search(context.Background(), Query{Text: "ana"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "mem-1", hits[0].ID)
}

func TestSearch_AccentInsensitive(t *testing.T) {
	x := seededIndex(t)

	hits, err := x.Search(context.Background(), Query{Text: "joao"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem-2"}, ids(hits))

	hits, err = x.Search(context.Background(), Query{Text: "construção"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem-2"}, ids(hits))
}

func TestSearch_PrefixOfLastWord(t *testing.T) {
	x := seededIndex(t)

	hits, err := x.Search(context.Background(), Query{Text: "conta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem-3"}, ids(hits))
}

func TestSearch_ByEmail(t *testing.T) {
	x := seededIndex(t)

	hits, err := x.Search(context.Background(), Query{Text: "Carla@Example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "mem-3", hits[0].ID)
}

func TestSearch_Filters(t *testing.T) {
	x := seededIndex(t)
	ctx := context.Background()

	active, err := x.Search(ctx, Query{Status: domain.MemberActive})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mem-1", "mem-2"}, ids(active))

	legal, err := x.Search(ctx, Query{Segment: "juridico"})
	require.NoError(t, err)
	assert.Equal(t, []string{"mem-1"}, ids(legal))

	none, err := x.Search(ctx, Query{Text: "ana", Status: domain.MemberInvited})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	x := seededIndex(t)

	hits, err := x.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	limited, err := x.Search(context.Background(), Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestIndexAndRemove(t *testing.T) {
	x := seededIndex(t)
	ctx := context.Background()

	updated := member("mem-3", "Carla Dias", "carla@example.com", "Dias Contabilidade", "Contabilidade", domain.MemberActive)
	require.NoError(t, x.Index(updated))

	active, err := x.Search(ctx, Query{Status: domain.MemberActive})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	require.NoError(t, x.Remove("mem-3"))
	require.NoError(t, x.Remove("mem-unknown"))

	n, err := x.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

func TestRebuildReplacesContents(t *testing.T) {
	x := seededIndex(t)

	require.NoError(t, x.Rebuild([]*domain.Member{
		member("mem-9", "Zeca", "zeca@example.com", "", "", domain.MemberActive),
	}))

	n, err := x.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	hits, err := x.Search(context.Background(), Query{Text: "ana"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}
