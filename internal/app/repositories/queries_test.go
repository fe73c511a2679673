package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alnet/mentorbridge/internal/app/models"
	"github.com/alnet/mentorbridge/internal/pkg/apperrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, "%acme%", likePattern("  acme "))
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestCheckViolationIsValidationError(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23514", ConstraintName: "messages_content_check"})

	verr := checkViolation(err)
	require.Error(t, verr)
	assert.ErrorIs(t, verr, apperrors.ErrValidationFailed)
	var custom *apperrors.CustomError
	require.True(t, errors.As(verr, &custom))
	assert.Equal(t, "messages_content_check", custom.Details["constraint"])

	assert.NoError(t, checkViolation(&pgconn.PgError{Code: "23505"}))
	assert.NoError(t, checkViolation(errors.New("connection reset")))
}

func TestAlumniSearchQueries(t *testing.T) {
	year := 2015
	minYears := 3
	f := models.AlumniFilter{
		Company:              "acme",
		Location:             "berlin",
		Skills:               []string{"go", "sql"},
		MinYearsOfExperience: &minYears,
		GraduationYear:       &year,
		SortBy:               models.SortGraduationYear,
		Descending:           true,
	}

	pageQ, countQ := alumniSearchQueries(f, 40, 20)

	sql, args, err := pageQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM profiles p JOIN users u ON u.id = p.user_id")
	assert.Contains(t, sql, "p.current_company ILIKE")
	assert.Contains(t, sql, "(p.location ILIKE $")
	assert.Contains(t, sql, "EXISTS (SELECT 1 FROM unnest(p.skills) AS s WHERE s ILIKE ANY($")
	assert.Contains(t, sql, "p.years_of_experience >= $")
	assert.Contains(t, sql, "ORDER BY p.graduation_year DESC NULLS LAST, p.created_at ASC, p.user_id ASC LIMIT 20 OFFSET 40")
	assert.Contains(t, args, "%acme%")
	assert.Contains(t, args, []string{"%go%", "%sql%"})
	assert.Contains(t, args, models.RoleAlumni)

	countSQL, countArgs, err := countQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, countSQL, "SELECT count(*) FROM profiles p JOIN users u")
	assert.NotContains(t, countSQL, "ORDER BY")
	assert.NotContains(t, countSQL, "LIMIT")
	assert.Equal(t, len(args), len(countArgs))
}

func TestAlumniSearchQueriesDefaultOrder(t *testing.T) {
	pageQ, _ := alumniSearchQueries(models.AlumniFilter{}, 0, 10)

	sql, _, err := pageQ.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY p.created_at ASC, p.user_id ASC LIMIT 10 OFFSET 0")
	assert.NotContains(t, sql, "ILIKE")
}

func TestAlumniSortColumnsCoverEveryKey(t *testing.T) {
	for _, key := range models.AlumniSortKeys {
		_, ok := alumniSortColumns[key]
		assert.True(t, ok, key)
	}
}

func TestListForUserPredicate(t *testing.T) {
	user := uuid.New()

	tests := []struct {
		direction models.ConnectionDirection
		want      string
	}{
		{models.DirectionIncoming, "receiver_id = ?"},
		{models.DirectionOutgoing, "requester_id = ?"},
		{models.DirectionAny, "(requester_id = ? OR receiver_id = ?)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.direction), func(t *testing.T) {
			sql, args, err := listForUserPredicate(user, models.ConnectionAccepted, tt.direction).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "status = ?")
			assert.Contains(t, sql, tt.want)
			assert.Equal(t, models.ConnectionAccepted, args[0])
		})
	}
}

func TestStatusesBefore(t *testing.T) {
	assert.Empty(t, statusesBefore(models.MessageSent))
	assert.Equal(t, []models.MessageStatus{models.MessageSent}, statusesBefore(models.MessageDelivered))
	assert.Equal(t, []models.MessageStatus{models.MessageSent, models.MessageDelivered}, statusesBefore(models.MessageRead))
}

func TestApplyJobFilter(t *testing.T) {
	remote := true
	owner := uuid.New()
	q := applyJobFilter(psql.Select("id").From("jobs"), models.JobFilter{
		Search:  "engineer",
		JobType: models.JobInternship,
		Remote:  &remote,
		OwnerID: &owner,
	})

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(title ILIKE $1 OR company ILIKE $2 OR description ILIKE $3)")
	assert.Contains(t, sql, "job_type = $4")
	assert.Contains(t, sql, "remote = $5")
	assert.Contains(t, sql, "owner_id = $6")
	assert.Len(t, args, 6)
}
