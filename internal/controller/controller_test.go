package controller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"taskBoard/internal/calendar"
	"taskBoard/internal/client"
	"taskBoard/internal/controller"
	"taskBoard/internal/session"
	"taskBoard/internal/viewmodel"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

var _ controller.API = (*MockAPI)(nil)

func (m *MockAPI) Login(ctx context.Context, username, password string) (*client.AuthUser, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthUser), args.Error(1)
}

func (m *MockAPI) Register(ctx context.Context, username, password string) (*client.AuthUser, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AuthUser), args.Error(1)
}

func (m *MockAPI) ListTasks(ctx context.Context) ([]client.APITask, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.APITask), args.Error(1)
}

func (m *MockAPI) CreateTask(ctx context.Context, data client.CreateTaskData) (*client.APITask, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.APITask), args.Error(1)
}

func (m *MockAPI) UpdateTask(ctx context.Context, id int64, data client.UpdateTaskData) (*client.APITask, error) {
	args := m.Called(ctx, id, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.APITask), args.Error(1)
}

func (m *MockAPI) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPI) ToggleComplete(ctx context.Context, id int64, current bool) (*client.APITask, error) {
	args := m.Called(ctx, id, current)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.APITask), args.Error(1)
}

func str(s string) *string { return &s }

func apiTask(id int64, title string, completed bool) client.APITask {
	return client.APITask{
		ID:          id,
		Title:       title,
		IsCompleted: completed,
		CreatedAt:   "2025-12-01T10:00:00Z",
		UpdatedAt:   "2025-12-01T10:00:00Z",
		RepeatDays:  []string{},
	}
}

// signedIn возвращает контроллер с уже загруженными задачами
func signedIn(t *testing.T, api *MockAPI, tasks ...client.APITask) *controller.Controller {
	t.Helper()
	store := session.NewStore(afero.NewMemMapFs(), "/session.yml")
	require.NoError(t, store.Save(session.Session{UserID: "1", Username: "alice"}))

	api.On("ListTasks", mock.Anything).Return(tasks, nil).Once()
	c := controller.New(api, session.NewGate(store))
	require.NoError(t, c.Start(context.Background()))
	return c
}

// TestController_Start тестирует запуск без сессии
func TestController_Start(t *testing.T) {
	api := new(MockAPI)
	c := controller.New(api, session.NewGate(session.NewStore(afero.NewMemMapFs(), "/session.yml")))

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, session.Unauthenticated, c.State())
	assert.Empty(t, c.Tasks())
	api.AssertNotCalled(t, "ListTasks", mock.Anything)

	_, err := c.AddTask(context.Background(), viewmodel.Draft{Title: "x"}, nil)
	assert.ErrorIs(t, err, controller.ErrNotAuthenticated)
	assert.ErrorIs(t, c.LoadTasks(context.Background()), controller.ErrNotAuthenticated)
}

// TestController_Login тестирует вход и валидацию на клиенте
func TestController_Login(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		password  string
		setupMock func(*MockAPI)
		wantErr   error
		wantState session.State
	}{
		{
			name:     "success",
			username: " alice ",
			password: "secret",
			setupMock: func(m *MockAPI) {
				m.On("Login", mock.Anything, "alice", "secret").Return(&client.AuthUser{ID: 3, Username: "alice"}, nil)
				m.On("ListTasks", mock.Anything).Return([]client.APITask{apiTask(1, "a", false)}, nil)
			},
			wantState: session.Authenticated,
		},
		{
			name:      "short password",
			username:  "alice",
			password:  "abc",
			setupMock: func(m *MockAPI) {},
			wantErr:   controller.ErrPasswordTooShort,
			wantState: session.Unauthenticated,
		},
		{
			name:      "empty username",
			username:  "  ",
			password:  "secret",
			setupMock: func(m *MockAPI) {},
			wantErr:   controller.ErrUsernameRequired,
			wantState: session.Unauthenticated,
		},
		{
			name:     "rejected by service",
			username: "alice",
			password: "wrong",
			setupMock: func(m *MockAPI) {
				m.On("Login", mock.Anything, "alice", "wrong").
					Return(nil, &client.APIError{Status: 401, Message: "invalid username or password"})
			},
			wantState: session.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			tt.setupMock(api)
			store := session.NewStore(afero.NewMemMapFs(), "/session.yml")
			c := controller.New(api, session.NewGate(store))
			require.NoError(t, c.Start(context.Background()))

			err := c.Login(context.Background(), tt.username, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantState == session.Unauthenticated:
				assert.True(t, client.IsUnauthorized(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, "alice", c.Username())
				assert.Len(t, c.ActiveTasks(), 1)
				sess, ok, err := store.Load()
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "3", sess.UserID)
			}
			assert.Equal(t, tt.wantState, c.State())
			api.AssertExpectations(t)
		})
	}
}

// TestController_Register тестирует регистрацию
func TestController_Register(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "bob", "pass").Return(&client.AuthUser{ID: 9, Username: "bob"}, nil)
	api.On("ListTasks", mock.Anything).Return([]client.APITask{}, nil)

	c := controller.New(api, session.NewGate(session.NewStore(afero.NewMemMapFs(), "/s.yml")))
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Register(context.Background(), "bob", "pass"))
	assert.Equal(t, session.Authenticated, c.State())
	assert.Equal(t, controller.ScreenTasks, c.Screen())
}

// TestController_LoadTasks_Retry тестирует ошибку загрузки и повтор
func TestController_LoadTasks_Retry(t *testing.T) {
	api := new(MockAPI)
	store := session.NewStore(afero.NewMemMapFs(), "/session.yml")
	require.NoError(t, store.Save(session.Session{UserID: "1", Username: "alice"}))

	failure := &client.APIError{Status: 500, Message: "Failed to fetch tasks"}
	api.On("ListTasks", mock.Anything).Return(nil, failure).Once()
	api.On("ListTasks", mock.Anything).Return([]client.APITask{apiTask(1, "a", false)}, nil).Once()

	c := controller.New(api, session.NewGate(store))
	err := c.Start(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, c.LoadError(), failure)
	assert.False(t, c.Loading())

	require.NoError(t, c.Retry(context.Background()))
	assert.NoError(t, c.LoadError())
	assert.Len(t, c.Tasks(), 1)
	api.AssertExpectations(t)
}

// TestController_AddTask тестирует добавление задачи в начало списка
func TestController_AddTask(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "old", false))
	c.Navigate(controller.ScreenAdd)

	created := apiTask(2, "Buy milk", false)
	created.AlarmTime = str("00:56")
	api.On("CreateTask", mock.Anything, mock.MatchedBy(func(d client.CreateTaskData) bool {
		return d.Title == "Buy milk" && d.AlarmTime == "00:56" && d.Photo == nil
	})).Return(&created, nil)

	got, err := c.AddTask(context.Background(), viewmodel.Draft{Title: "Buy milk", Alarm: "12:56 AM"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "12:56 AM", got.Alarm)

	tasks := c.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "2", tasks[0].ID)
	assert.Equal(t, controller.ScreenTasks, c.Screen())

	api.On("CreateTask", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()
	_, err = c.AddTask(context.Background(), viewmodel.Draft{Title: "other"}, nil)
	assert.Error(t, err)
	assert.Len(t, c.Tasks(), 2)
}

// TestController_UpdateTask тестирует частичное обновление
func TestController_UpdateTask(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "old", false))

	updated := apiTask(1, "new", false)
	updated.UpdatedAt = "2025-12-02T10:00:00Z"
	api.On("UpdateTask", mock.Anything, int64(1), mock.MatchedBy(func(d client.UpdateTaskData) bool {
		title, ok := d.Title.Value()
		return ok && title == "new" && !d.Details.IsSet() && d.DueDate.IsNull()
	})).Return(&updated, nil)

	got, err := c.UpdateTask(context.Background(), "1", viewmodel.Changes{Title: str("new"), DueDate: client.Set("")})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC), got.LastEditedDate)

	stored, ok := c.Task("1")
	require.True(t, ok)
	assert.Equal(t, "new", stored.Title)

	_, err = c.UpdateTask(context.Background(), "1", viewmodel.Changes{})
	assert.ErrorIs(t, err, controller.ErrNothingToUpdate)

	_, err = c.UpdateTask(context.Background(), "99", viewmodel.Changes{Title: str("x")})
	assert.ErrorIs(t, err, controller.ErrTaskNotFound)
	api.AssertNumberOfCalls(t, "UpdateTask", 1)
}

// TestController_ToggleComplete тестирует переключение и ошибки
func TestController_ToggleComplete(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "a", false))

	done := apiTask(1, "a", true)
	api.On("ToggleComplete", mock.Anything, int64(1), false).Return(&done, nil).Once()

	got, err := c.ToggleComplete(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Empty(t, c.ActiveTasks())
	assert.Len(t, c.CompletedTasks(), 1)

	api.On("ToggleComplete", mock.Anything, int64(1), true).Return(nil, errors.New("offline")).Once()
	_, err = c.ToggleComplete(context.Background(), "1")
	assert.Error(t, err)
	stored, _ := c.Task("1")
	assert.True(t, stored.Completed)
	api.AssertExpectations(t)
}

// TestController_ToggleComplete_Coalesced тестирует объединение одновременных переключений
func TestController_ToggleComplete_Coalesced(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "a", false))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := apiTask(1, "a", true)
	api.On("ToggleComplete", mock.Anything, int64(1), false).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&done, nil).Once()

	var wg sync.WaitGroup
	results := make([]viewmodel.Task, 3)
	errs := make([]error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.ToggleComplete(context.Background(), "1")
	}()
	<-entered

	for i := 1; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.ToggleComplete(context.Background(), "1")
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Completed)
	}
	api.AssertNumberOfCalls(t, "ToggleComplete", 1)
}

// TestController_DeleteTask тестирует удаление после подтверждения
func TestController_DeleteTask(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "a", false), apiTask(2, "b", false))
	require.NoError(t, c.Select("1"))
	assert.Equal(t, controller.ScreenDetail, c.Screen())

	api.On("DeleteTask", mock.Anything, int64(2)).Return(&client.APIError{Status: 404, Message: "Failed to delete task"}).Once()
	assert.Error(t, c.DeleteTask(context.Background(), "2"))
	assert.Len(t, c.Tasks(), 2)

	api.On("DeleteTask", mock.Anything, int64(1)).Return(nil).Once()
	require.NoError(t, c.DeleteTask(context.Background(), "1"))
	assert.Len(t, c.Tasks(), 1)
	assert.Empty(t, c.Selected())
	assert.Equal(t, controller.ScreenTasks, c.Screen())

	assert.ErrorIs(t, c.DeleteTask(context.Background(), "1"), controller.ErrTaskNotFound)
	assert.ErrorIs(t, c.Select("1"), controller.ErrTaskNotFound)
}

// TestController_Calendar тестирует подстановку дня для задач с будильником
func TestController_Calendar(t *testing.T) {
	api := new(MockAPI)
	store := session.NewStore(afero.NewMemMapFs(), "/session.yml")
	require.NoError(t, store.Save(session.Session{UserID: "1", Username: "alice"}))

	alarmOnly := apiTask(1, "alarm", false)
	alarmOnly.AlarmTime = str("07:00")
	due := apiTask(2, "due", false)
	due.DueDate = str("2025-12-25")
	api.On("ListTasks", mock.Anything).Return([]client.APITask{alarmOnly, due}, nil)

	now := time.Date(2025, time.December, 10, 12, 0, 0, 0, time.UTC)
	c := controller.New(api, session.NewGate(store), controller.WithClock(func() time.Time { return now }))
	require.NoError(t, c.Start(context.Background()))

	dec := calendar.Month{Year: 2025, Month: time.December}
	view := c.Calendar(dec, 0)
	assert.Equal(t, 10, view.Selected)
	assert.Equal(t, 10, view.Today)
	require.Len(t, view.Agenda.Tasks, 1)
	assert.Equal(t, "alarm", view.Agenda.Tasks[0].Task.Title)

	next := c.Calendar(dec.Next(), 0)
	assert.Empty(t, next.Placements)
	assert.Equal(t, calendar.NoTasksMessage, next.Agenda.Message())
}

// TestController_Logout тестирует сброс состояния при выходе
func TestController_Logout(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "a", false))
	c.Navigate(controller.ScreenCalendar)

	require.NoError(t, c.Logout())
	assert.Equal(t, session.Unauthenticated, c.State())
	assert.Empty(t, c.Tasks())
	assert.Equal(t, controller.ScreenTasks, c.Screen())
	assert.ErrorIs(t, c.Logout(), session.ErrInvalidTransition)
}

// TestController_SessionChangeDropsResults тестирует, что ответы, пришедшие после выхода, отбрасываются
func TestController_SessionChangeDropsResults(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *MockAPI, entered, release chan struct{})
		call  func(c *controller.Controller) error
	}{
		{
			name: "load finishes after logout",
			setup: func(m *MockAPI, entered, release chan struct{}) {
				m.On("ListTasks", mock.Anything).
					Run(func(mock.Arguments) {
						close(entered)
						<-release
					}).
					Return([]client.APITask{apiTask(2, "stale", false)}, nil).Once()
			},
			call: func(c *controller.Controller) error {
				return c.LoadTasks(context.Background())
			},
		},
		{
			name: "create finishes after logout",
			setup: func(m *MockAPI, entered, release chan struct{}) {
				created := apiTask(2, "stale", false)
				m.On("CreateTask", mock.Anything, mock.Anything).
					Run(func(mock.Arguments) {
						close(entered)
						<-release
					}).
					Return(&created, nil).Once()
			},
			call: func(c *controller.Controller) error {
				_, err := c.AddTask(context.Background(), viewmodel.Draft{Title: "stale"}, nil)
				return err
			},
		},
		{
			name: "update finishes after logout",
			setup: func(m *MockAPI, entered, release chan struct{}) {
				updated := apiTask(1, "stale", false)
				m.On("UpdateTask", mock.Anything, int64(1), mock.Anything).
					Run(func(mock.Arguments) {
						close(entered)
						<-release
					}).
					Return(&updated, nil).Once()
			},
			call: func(c *controller.Controller) error {
				_, err := c.UpdateTask(context.Background(), "1", viewmodel.Changes{Title: str("stale")})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			c := signedIn(t, api, apiTask(1, "a", false))

			entered := make(chan struct{})
			release := make(chan struct{})
			tt.setup(api, entered, release)

			errCh := make(chan error, 1)
			go func() { errCh <- tt.call(c) }()
			<-entered

			require.NoError(t, c.Logout())
			close(release)

			assert.ErrorIs(t, <-errCh, controller.ErrSessionChanged)
			assert.Equal(t, session.Unauthenticated, c.State())
			assert.Empty(t, c.Tasks())
			assert.False(t, c.Loading())
		})
	}
}

// TestController_StaleLoadAfterRelogin тестирует, что старая загрузка не затирает список нового пользователя
func TestController_StaleLoadAfterRelogin(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "alice task", false))

	entered := make(chan struct{})
	release := make(chan struct{})
	api.On("ListTasks", mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return([]client.APITask{apiTask(1, "alice task", false)}, nil).Once()
	api.On("Login", mock.Anything, "bob", "pass").Return(&client.AuthUser{ID: 2, Username: "bob"}, nil)
	api.On("ListTasks", mock.Anything).Return([]client.APITask{apiTask(5, "bob task", false)}, nil).Once()

	errCh := make(chan error, 1)
	go func() { errCh <- c.LoadTasks(context.Background()) }()
	<-entered

	require.NoError(t, c.Logout())
	require.NoError(t, c.Login(context.Background(), "bob", "pass"))
	close(release)

	assert.ErrorIs(t, <-errCh, controller.ErrSessionChanged)
	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "bob task", tasks[0].Title)
	assert.Equal(t, "bob", c.Username())
}

// TestController_ToggleComplete_CallerCancelled тестирует, что отмена первого вызова не ломает объединённые
func TestController_ToggleComplete_CallerCancelled(t *testing.T) {
	api := new(MockAPI)
	c := signedIn(t, api, apiTask(1, "a", false))

	entered := make(chan struct{})
	release := make(chan struct{})
	var sharedCtxErr error
	done := apiTask(1, "a", true)
	api.On("ToggleComplete", mock.Anything, int64(1), false).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
			sharedCtxErr = args.Get(0).(context.Context).Err()
		}).
		Return(&done, nil).Once()

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.ToggleComplete(firstCtx, "1")
		firstErr <- err
	}()
	<-entered

	type result struct {
		task viewmodel.Task
		err  error
	}
	second := make(chan result, 1)
	go func() {
		task, err := c.ToggleComplete(context.Background(), "1")
		second <- result{task, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.True(t, got.task.Completed)
	assert.NoError(t, sharedCtxErr)
	api.AssertNumberOfCalls(t, "ToggleComplete", 1)
}
