package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/anonto42/cinefeed/backend/internal/logging"
	"github.com/anonto42/cinefeed/backend/internal/middleware"
	"github.com/anonto42/cinefeed/backend/internal/models"
	"github.com/anonto42/cinefeed/backend/internal/repositories"
	"github.com/anonto42/cinefeed/backend/internal/services"
	"github.com/anonto42/cinefeed/backend/validators"
)

//nolint:gochecknoinits // keep test output quiet
func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

type memMovies struct{ movies map[primitive.ObjectID]models.Movie }

func (m *memMovies) GetMovieByID(_ context.Context, id string) (*models.Movie, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	mv, ok := m.movies[objID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &mv, nil
}

func (m *memMovies) GetMoviesByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Movie, error) {
	out := map[primitive.ObjectID]models.Movie{}
	for _, id := range ids {
		if mv, ok := m.movies[id]; ok {
			out[id] = mv
		}
	}
	return out, nil
}

type memReviews struct {
	mu      sync.Mutex
	reviews []*models.Review
}

func (m *memReviews) CreateReview(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = primitive.NewObjectID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.reviews = append(m.reviews, r)
	return nil
}

func (m *memReviews) GetReviewByID(_ context.Context, id string) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	for _, r := range m.reviews {
		if r.ID == objID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memReviews) GetRecentVisibleByUserIDs(_ context.Context, ids []uint, since time.Time, limit int64) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Review
	for _, r := range m.reviews {
		if slices.Contains(ids, r.UserID) && r.IsPublished &&
			r.ModerationStatus == models.ModerationApproved && !r.CreatedAt.Before(since) {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b models.Review) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReviews) IncrementCounter(_ context.Context, id, field string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ID.Hex() == id {
			switch field {
			case "likes_count":
				r.LikesCount += delta
			case "comments_count":
				r.CommentsCount += delta
			}
			return nil
		}
	}
	return repositories.ErrNotFound
}

type memLists struct {
	mu    sync.Mutex
	lists []*models.List
}

func (m *memLists) CreateList(_ context.Context, l *models.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.ID = primitive.NewObjectID()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	m.lists = append(m.lists, l)
	return nil
}

func (m *memLists) GetListByID(_ context.Context, id string) (*models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrInvalidID
	}
	for _, l := range m.lists {
		if l.ID == objID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memLists) GetRecentPublicByUserIDs(_ context.Context, ids []uint, since time.Time, limit int64) ([]models.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.List
	for _, l := range m.lists {
		if slices.Contains(ids, l.UserID) && l.IsPublic && !l.CreatedAt.Before(since) {
			out = append(out, *l)
		}
	}
	slices.SortFunc(out, func(a, b models.List) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memLists) IncrementCounter(_ context.Context, id, field string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		if l.ID.Hex() == id {
			switch field {
			case "likes_count":
				l.LikesCount += delta
			case "comments_count":
				l.CommentsCount += delta
			}
			return nil
		}
	}
	return repositories.ErrNotFound
}

type memWatched struct {
	mu      sync.Mutex
	entries []models.WatchedEntry
}

func (m *memWatched) MarkWatched(_ context.Context, e *models.WatchedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.WatchedAt = time.Now()
	for i := range m.entries {
		if m.entries[i].UserID == e.UserID && m.entries[i].MovieID == e.MovieID {
			e.ID = m.entries[i].ID
			m.entries[i] = *e
			return nil
		}
	}
	e.ID = primitive.NewObjectID()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memWatched) GetRecentByUserIDs(context.Context, []uint, time.Time, int64) ([]models.WatchedEntry, error) {
	return nil, nil
}

type pushed struct {
	userID uint
	event  string
}

type recordingRouter struct {
	mu    sync.Mutex
	calls []pushed
}

func (r *recordingRouter) EmitToUser(_ context.Context, userID uint, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, pushed{userID: userID, event: event})
	return nil
}

func (r *recordingRouter) to(userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.userID == userID {
			n++
		}
	}
	return n
}

// testEnv wires every handler against SQLite and in-memory document stores
type testEnv struct {
	e          *echo.Echo
	db         *gorm.DB
	users      map[string]models.User
	movies     *memMovies
	reviews    *memReviews
	lists      *memLists
	watched    *memWatched
	push       *recordingRouter
	dispatcher *services.NotificationDispatcher
}

func newTestEnv(t *testing.T, usernames ...string) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Follow{}, &models.Like{}, &models.Comment{}, &models.Notification{}))

	env := &testEnv{
		e:       echo.New(),
		db:      db,
		users:   map[string]models.User{},
		movies:  &memMovies{movies: map[primitive.ObjectID]models.Movie{}},
		reviews: &memReviews{},
		lists:   &memLists{},
		watched: &memWatched{},
		push:    &recordingRouter{},
	}
	for _, name := range usernames {
		u := models.User{Username: name, Email: name + "@example.com", ShowWatched: true}
		require.NoError(t, db.Create(&u).Error)
		env.users[name] = u
	}

	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	env.dispatcher = services.NewNotificationDispatcher(notificationRepo, env.push)
	notifier := services.NewNotifier(services.NewNotificationFactory(), env.dispatcher, services.NewMentionResolver(userRepo))
	feed := services.NewFeedService(services.NewSocialGraph(followRepo), userRepo, services.DefaultFeedConfig(),
		services.NewReviewSource(env.reviews),
		services.NewListSource(env.lists),
		services.NewWatchedSource(env.watched, env.movies, userRepo),
	)

	env.e.Validator = validators.NewValidator()
	api := env.e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, err := strconv.ParseUint(c.Request().Header.Get("X-Test-User"), 10, 32); err == nil {
				c.Set(middleware.UserIDKey, uint(id))
			}
			return next(c)
		}
	})
	NewUserHandler(userRepo, followRepo).RegisterProfileRoutes(api)
	NewFeedHandler(feed).RegisterFeedRoutes(api)
	NewFollowHandler(followRepo, userRepo, notifier).RegisterFollowRoutes(api)
	NewLikeHandler(likeRepo, userRepo, env.reviews, env.lists, notifier).RegisterLikeRoutes(api)
	NewCommentHandler(commentRepo, userRepo, env.reviews, env.lists, notifier).RegisterCommentRoutes(api)
	NewNotificationHandler(notificationRepo, userRepo, 30).RegisterNotificationRoutes(api)
	NewContentHandler(env.movies, env.reviews, env.lists, env.watched, true).RegisterContentRoutes(api)
	return env
}

func (env *testEnv) id(name string) uint { return env.users[name].ID }

// do performs a request as the named user ("" for anonymous)
func (env *testEnv) do(t *testing.T, method, path, as, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if as != "" {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(env.id(as)), 10))
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	env.dispatcher.Wait()
	return rec
}

func (env *testEnv) notificationsFor(t *testing.T, name string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", env.id(name)).Order("id").Find(&out).Error)
	return out
}

func (env *testEnv) addList(owner string, title string, public bool) *models.List {
	l := &models.List{UserID: env.id(owner), Title: title, IsPublic: public}
	_ = env.lists.CreateList(context.Background(), l)
	return l
}

func (env *testEnv) addReview(owner, movieTitle string, at time.Time) *models.Review {
	r := &models.Review{
		UserID:           env.id(owner),
		MovieID:          primitive.NewObjectID(),
		MovieTitle:       movieTitle,
		Content:          "worth it",
		IsPublished:      true,
		ModerationStatus: models.ModerationApproved,
		CreatedAt:        at,
	}
	_ = env.reviews.CreateReview(context.Background(), r)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	d, ok := decode(t, rec)["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %s", rec.Body.String())
	return d
}

func idStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }
