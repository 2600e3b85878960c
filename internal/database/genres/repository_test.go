package genres

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovalenko/homelib/internal/database"
	"github.com/akovalenko/homelib/internal/taxonomy"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := database.New(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func sampleTaxonomy() *taxonomy.Taxonomy {
	return &taxonomy.Taxonomy{
		Categories: []taxonomy.Category{
			{
				Name:        "Science Fiction",
				Translation: "Фантастика",
				Subgenres: []taxonomy.Subgenre{
					{Tag: "sf", Name: "Science fiction", Translation: "Научная фантастика"},
					{Tag: "sf_humor", Name: "Humorous SF", Translation: "Юмористическая фантастика"},
				},
			},
			{
				Name:        "Prose",
				Translation: "Проза",
				Subgenres: []taxonomy.Subgenre{
					{Tag: "prose_classic", Name: "Classic prose", Translation: "Классическая проза"},
				},
			},
		},
	}
}

func TestMerge_SeedsEmptyStore(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.Merge(sampleTaxonomy()))

	count, err := repo.NonPlaceholderCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	subs, err := repo.Subgenres()
	require.NoError(t, err)
	require.Len(t, subs, 3)
	for _, g := range subs {
		assert.False(t, g.IsMainTranslation(), "sentinel rows must not surface as subgenres")
	}

	mains, err := repo.MainCategories()
	require.NoError(t, err)
	require.Len(t, mains, 2)
	assert.Equal(t, "Проза", mains[0].Translation)
}

func TestMerge_MonotonicWithSubset(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Merge(sampleTaxonomy()))

	// A source carrying a strict subset of known tags must change nothing.
	subset := &taxonomy.Taxonomy{
		Categories: []taxonomy.Category{
			{
				Name:      "Science Fiction",
				Subgenres: []taxonomy.Subgenre{{Tag: "sf", Name: "Renamed"}},
			},
		},
	}
	require.NoError(t, repo.Merge(subset))

	count, err := repo.NonPlaceholderCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	g, err := repo.ByTag("sf")
	require.NoError(t, err)
	assert.Equal(t, "Science fiction", g.Name, "existing rows are never rewritten")
}

func TestMerge_AdditiveGrowth(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Merge(sampleTaxonomy()))

	grown := sampleTaxonomy()
	grown.Categories[1].Subgenres = append(grown.Categories[1].Subgenres,
		taxonomy.Subgenre{Tag: "prose_contemporary", Name: "Contemporary prose"})
	require.NoError(t, repo.Merge(grown))

	count, err := repo.NonPlaceholderCount()
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	// Nothing was deleted along the way.
	_, err = repo.ByTag("sf_humor")
	require.NoError(t, err)
}

func TestReload_Rebuilds(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.Merge(sampleTaxonomy()))

	smaller := &taxonomy.Taxonomy{
		Categories: []taxonomy.Category{
			{
				Name:      "Prose",
				Subgenres: []taxonomy.Subgenre{{Tag: "prose_classic", Name: "Classic prose"}},
			},
		},
	}
	require.NoError(t, repo.Reload(smaller))

	count, err := repo.NonPlaceholderCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = repo.ByTag("sf")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestByTag_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.ByTag("nope")
	assert.ErrorIs(t, err, database.ErrNotFound)
}
