package alignments

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectGroupFixture registers one canonical lookup plus a member set that
// exercises every shaping rule: source rows that echo the canonical passage
// are dropped, duplicate titles keep their earliest year, and 1853 holds two
// titles so in-year ordering is observable.
func expectGroupFixture(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "dickens_montaigne_groups" WHERE "group_id" = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"source_author", "source_title", "source_year", "group_id"}).
			AddRow("Montaigne", "Essais", int64(1580), int64(5)))

	memberColumns := []string{
		"source_author", "source_title", "source_year",
		"target_author", "target_title", "target_year",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "dickens_montaigne" WHERE "group_id" = $1`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(memberColumns).
			AddRow("Montaigne", "Essais", int64(1580), "Dickens", "Bleak House", int64(1853)).
			AddRow("Montaigne", "Essais", int64(1580), "Cotton", "Essays of Montaigne", int64(1853)).
			AddRow("Florio", "Essayes", int64(1603), "Dickens", "Bleak House", int64(1859)).
			AddRow("Montaigne", "Les Essais", int64(1588), "Woolf", "The Common Reader", int64(1925)))
}

func TestPassageGroup_ResolvesAndSorts(t *testing.T) {
	svc, mock := newTestService(t)
	expectGroupFixture(mock)

	group, err := svc.PassageGroup(context.Background(), testTable, 5)
	require.NoError(t, err)

	assert.Equal(t, "Montaigne", group.OriginalPassage["source_author"])
	assert.Equal(t, "Essais", group.OriginalPassage["source_title"])

	require.Len(t, group.PassageList, 3)
	assert.Equal(t, int64(1603), group.PassageList[0].Year)
	assert.Equal(t, int64(1853), group.PassageList[1].Year)
	assert.Equal(t, int64(1925), group.PassageList[2].Year)

	// The Florio translation differs from the canonical passage in both
	// author and title, so its source side appears; the other rows' source
	// sides echo the canonical author and stay out.
	florio := group.PassageList[0].Result
	require.Len(t, florio, 1)
	assert.Equal(t, "Essayes", florio[0]["title"])
	assert.Equal(t, "source", florio[0]["direction"])
	assert.Equal(t, "Florio", florio[0]["source_author"])
	_, leaked := florio[0]["target_author"]
	assert.False(t, leaked, "source records should not carry target columns")

	// Two titles share 1853 and come back descending; Bleak House keeps its
	// earliest year even though a later copy exists in 1859.
	within := group.PassageList[1].Result
	require.Len(t, within, 2)
	assert.Equal(t, "Essays of Montaigne", within[0]["title"])
	assert.Equal(t, "Bleak House", within[1]["title"])
	assert.Equal(t, "target", within[1]["direction"])
	_, leaked = within[1]["source_author"]
	assert.False(t, leaked, "target records should not carry source columns")

	reader := group.PassageList[2].Result
	require.Len(t, reader, 1)
	assert.Equal(t, "The Common Reader", reader[0]["title"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassageGroup_NotFound(t *testing.T) {
	svc, mock := newTestService(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "dickens_montaigne_groups" WHERE "group_id" = $1`)).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"source_author", "group_id"}))

	_, err := svc.PassageGroup(context.Background(), testTable, 99)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.GroupID != 99 || notFound.Table != testTable {
		t.Errorf("unexpected error detail: %+v", notFound)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassageGroup_Idempotent(t *testing.T) {
	svc, mock := newTestService(t)

	expectGroupFixture(mock)
	first, err := svc.PassageGroup(context.Background(), testTable, 5)
	require.NoError(t, err)

	expectGroupFixture(mock)
	second, err := svc.PassageGroup(context.Background(), testTable, 5)
	require.NoError(t, err)

	// Shaping reduces over maps; repeated lookups must still agree exactly.
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}
