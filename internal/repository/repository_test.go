package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func ptr[T any](v T) *T { return &v }

func TestVideoRepository_InsertIfAbsent(t *testing.T) {
	mock := newMock(t)
	repo := NewVideoRepository(mock)
	url := "https://www.youtube.com/shorts/AAAAAAAAAAA"

	mock.ExpectExec(`INSERT INTO videos \(url, user_id\)\s+VALUES \(\$1, \$2\)\s+ON CONFLICT \(url\) DO NOTHING`).
		WithArgs(url, "u1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO videos`).
		WithArgs(url, "u1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), url, "u1")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(context.Background(), url, "u1")
	require.NoError(t, err)
	assert.False(t, inserted, "second upload of the same url must not insert")
}

func TestVideoRepository_InsertIfAbsent_DBError(t *testing.T) {
	mock := newMock(t)
	repo := NewVideoRepository(mock)

	mock.ExpectExec(`INSERT INTO videos`).
		WithArgs("x", "u1").
		WillReturnError(errors.New("db down"))

	_, err := repo.InsertIfAbsent(context.Background(), "x", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert video: db down")
}

func TestVideoRepository_EligibleUploaders_NilSetsBecomeEmptyArrays(t *testing.T) {
	mock := newMock(t)
	repo := NewVideoRepository(mock)

	mock.ExpectQuery(`SELECT v.user_id\s+FROM videos v.*u.country_id IS NOT NULL`).
		WithArgs("me", []string{}, []string{}).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("u2").AddRow("u3"))

	got, err := repo.EligibleUploaders(context.Background(), "me", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, got)
}

func TestVideoRepository_EligibleUploaders_PassesExclusions(t *testing.T) {
	mock := newMock(t)
	repo := NewVideoRepository(mock)

	mock.ExpectQuery(`SELECT v.user_id`).
		WithArgs("me", []string{"u2"}, []string{"https://www.youtube.com/shorts/AAAAAAAAAAA"}).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}))

	got, err := repo.EligibleUploaders(context.Background(), "me",
		[]string{"u2"}, []string{"https://www.youtube.com/shorts/AAAAAAAAAAA"})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestVideoRepository_ListForFeed(t *testing.T) {
	mock := newMock(t)
	repo := NewVideoRepository(mock)

	rows := pgxmock.NewRows([]string{"url", "age", "gender", "name", "google_hash"}).
		AddRow("https://www.youtube.com/shorts/BBBBBBBBBBB", ptr(31), ptr("Female"), ptr("Japan"), "u2").
		AddRow("https://www.youtube.com/shorts/CCCCCCCCCCC", ptr(31), ptr("Female"), ptr("Japan"), "u2")
	mock.ExpectQuery(`SELECT v.url, u.age, u.gender, c.name, u.google_hash.*ORDER BY v.id DESC\s+LIMIT \$3`).
		WithArgs("u2", []string{}, 5).
		WillReturnRows(rows)

	got, err := repo.ListForFeed(context.Background(), "u2", nil, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].UploaderID)
	assert.Equal(t, "Japan", *got[0].Country)
	assert.Equal(t, 31, *got[1].Age)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT google_hash, age, gender, country_id, push_token, created_at\s+FROM users`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestUserRepository_CreateIfAbsentAndUpdate(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO users \(google_hash\)\s+VALUES \(\$1\)\s+ON CONFLICT \(google_hash\) DO NOTHING`).
		WithArgs("h1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`UPDATE users SET age = \$2, gender = \$3, country_id = \$4`).
		WithArgs("h1", 25, "Other", 7).
		WillReturnRows(pgxmock.NewRows([]string{"google_hash", "age", "gender", "country_id", "push_token", "created_at"}).
			AddRow("h1", ptr(25), ptr("Other"), ptr(7), ptr("tok"), created))

	require.NoError(t, repo.CreateIfAbsent(context.Background(), "h1"))

	user, err := repo.UpdateProfile(context.Background(), "h1", 25, "Other", 7)
	require.NoError(t, err)
	assert.True(t, user.ProfileComplete())
	assert.Equal(t, created, user.CreatedAt)
}

func TestUserRepository_UpdatePushToken_UnknownUser(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectExec(`UPDATE users SET push_token`).
		WithArgs(ptr("tok"), "nobody").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePushToken(context.Background(), "nobody", ptr("tok"))
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRatingRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewRatingRepository(mock)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO ratings \(target_user_id, reviewer_id, video_url, rating, political\)`).
		WithArgs("u2", "me", (*string)(nil), 70, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), now))

	rating := &models.Rating{TargetUserID: "u2", ReviewerID: "me", Value: 70, Political: true}
	require.NoError(t, repo.Create(context.Background(), rating))
	assert.Equal(t, int64(9), rating.ID)
	assert.Equal(t, now, rating.CreatedAt)
}

func TestRatingRepository_Create_DuplicateVideo(t *testing.T) {
	mock := newMock(t)
	repo := NewRatingRepository(mock)
	url := "https://www.youtube.com/shorts/AAAAAAAAAAA"

	mock.ExpectQuery(`ON CONFLICT \(reviewer_id, video_url\) WHERE video_url IS NOT NULL DO NOTHING`).
		WithArgs("u2", "me", &url, 10, false).
		WillReturnError(pgx.ErrNoRows)

	err := repo.Create(context.Background(), &models.Rating{TargetUserID: "u2", ReviewerID: "me", VideoURL: &url, Value: 10})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyRated))
}

func TestCountryRepository_List(t *testing.T) {
	mock := newMock(t)
	repo := NewCountryRepository(mock)

	mock.ExpectQuery(`SELECT id, name FROM countries ORDER BY name`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(1, "Canada").AddRow(2, "Japan"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Country{{ID: 1, Name: "Canada"}, {ID: 2, Name: "Japan"}}, got)
}
