// Package controller owns the client-side task list and funnels every
// mutation through the api before updating local state.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"taskBoard/internal/calendar"
	"taskBoard/internal/client"
	"taskBoard/internal/logger"
	"taskBoard/internal/session"
	"taskBoard/internal/viewmodel"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const minPasswordLength = 4

var (
	ErrNotAuthenticated = errors.New("not signed in")
	ErrTaskNotFound     = errors.New("task not found")
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrUsernameRequired = errors.New("username is required")
	ErrNothingToUpdate  = errors.New("no changes")
	ErrSessionChanged   = errors.New("session changed during request")
)

type Screen string

const (
	ScreenTasks     Screen = "tasks"
	ScreenCalendar  Screen = "calendar"
	ScreenDetail    Screen = "detail"
	ScreenAdd       Screen = "add"
	ScreenCompleted Screen = "completed"
)

// API is the part of the task service client the controller drives.
type API interface {
	Login(ctx context.Context, username, password string) (*client.AuthUser, error)
	Register(ctx context.Context, username, password string) (*client.AuthUser, error)
	ListTasks(ctx context.Context) ([]client.APITask, error)
	CreateTask(ctx context.Context, data client.CreateTaskData) (*client.APITask, error)
	UpdateTask(ctx context.Context, id int64, data client.UpdateTaskData) (*client.APITask, error)
	DeleteTask(ctx context.Context, id int64) error
	ToggleComplete(ctx context.Context, id int64, current bool) (*client.APITask, error)
}

type Controller struct {
	api  API
	gate *session.Gate
	now  func() time.Time

	mu       sync.RWMutex
	epoch    uint64 // растёт при каждом входе и выходе
	tasks    []viewmodel.Task
	loading  bool
	loadErr  error
	screen   Screen
	selected string

	toggles singleflight.Group
	locks   *entityLocks
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func New(api API, gate *session.Gate, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		gate:   gate,
		now:    time.Now,
		tasks:  []viewmodel.Task{},
		screen: ScreenTasks,
		locks:  newEntityLocks(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start resolves the stored session and, when signed in, loads the tasks.
func (c *Controller) Start(ctx context.Context) error {
	state, err := c.gate.Start()
	if err != nil && !errors.Is(err, session.ErrInvalidTransition) {
		logger.Warn("Controller: Сессия не прочитана", zap.Error(err))
	}
	if state != session.Authenticated {
		return nil
	}
	return c.LoadTasks(ctx)
}

func (c *Controller) Login(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, username, password, c.api.Login)
}

func (c *Controller) Register(ctx context.Context, username, password string) error {
	return c.authenticate(ctx, username, password, c.api.Register)
}

func (c *Controller) authenticate(ctx context.Context, username, password string,
	call func(context.Context, string, string) (*client.AuthUser, error)) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ErrUsernameRequired
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	u, err := call(ctx, username, password)
	if err != nil {
		return err
	}

	sess := session.Session{UserID: strconv.FormatInt(u.ID, 10), Username: u.Username}
	if err := c.gate.SignIn(sess); err != nil {
		return err
	}

	c.mu.Lock()
	c.epoch++
	c.tasks = []viewmodel.Task{}
	c.screen = ScreenTasks
	c.selected = ""
	c.mu.Unlock()

	logger.Info("Controller: Пользователь вошёл", zap.String("username", u.Username))
	return c.LoadTasks(ctx)
}

// Logout clears the stored session, the task list and the view.
func (c *Controller) Logout() error {
	if err := c.gate.SignOut(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.tasks = []viewmodel.Task{}
	c.loadErr = nil
	c.loading = false
	c.screen = ScreenTasks
	c.selected = ""
	return nil
}

// LoadTasks replaces the list with a fresh fetch. It is the only operation
// that raises the loading flag. A fetch that outlives its session is dropped.
func (c *Controller) LoadTasks(ctx context.Context) error {
	epoch, err := c.authenticated()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.loading = true
	c.loadErr = nil
	c.mu.Unlock()

	apiTasks, err := c.api.ListTasks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		logger.Debug("Controller: Загрузка задач отброшена после смены сессии")
		return ErrSessionChanged
	}
	c.loading = false
	if err != nil {
		c.loadErr = err
		logger.Warn("Controller: Ошибка загрузки задач", zap.Error(err))
		return err
	}
	c.tasks = viewmodel.FromAPIList(apiTasks)
	return nil
}

func (c *Controller) Retry(ctx context.Context) error {
	return c.LoadTasks(ctx)
}

func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Controller) LoadError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

func (c *Controller) AddTask(ctx context.Context, draft viewmodel.Draft, photo *client.Photo) (viewmodel.Task, error) {
	epoch, err := c.authenticated()
	if err != nil {
		return viewmodel.Task{}, err
	}

	data, err := draft.ToCreate()
	if err != nil {
		return viewmodel.Task{}, err
	}
	data.Photo = photo

	created, err := c.api.CreateTask(ctx, data)
	if err != nil {
		return viewmodel.Task{}, err
	}
	t := viewmodel.FromAPI(*created)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return viewmodel.Task{}, ErrSessionChanged
	}
	c.tasks = append([]viewmodel.Task{t}, c.tasks...)
	c.screen = ScreenTasks
	return t, nil
}

// UpdateTask sends only the changed keys and stores the record the service
// returns, timestamps included.
func (c *Controller) UpdateTask(ctx context.Context, id string, changes viewmodel.Changes) (viewmodel.Task, error) {
	numericID, epoch, err := c.ensure(id)
	if err != nil {
		return viewmodel.Task{}, err
	}

	data, err := changes.ToUpdate()
	if err != nil {
		return viewmodel.Task{}, err
	}
	if data.Empty() {
		return viewmodel.Task{}, ErrNothingToUpdate
	}

	unlock := c.locks.lock(id)
	defer unlock()

	updated, err := c.api.UpdateTask(ctx, numericID, data)
	if err != nil {
		return viewmodel.Task{}, err
	}
	t := viewmodel.FromAPI(*updated)
	if err := c.replace(t, epoch); err != nil {
		return viewmodel.Task{}, err
	}
	return t, nil
}

// ToggleComplete flips the completed flag. Concurrent toggles of one task
// share a single request, which no single caller's cancellation aborts;
// each caller still stops waiting when its own ctx is done.
func (c *Controller) ToggleComplete(ctx context.Context, id string) (viewmodel.Task, error) {
	numericID, epoch, err := c.ensure(id)
	if err != nil {
		return viewmodel.Task{}, err
	}

	shareCtx := context.WithoutCancel(ctx)
	ch := c.toggles.DoChan(id, func() (any, error) {
		unlock := c.locks.lock(id)
		defer unlock()

		current, ok := c.Task(id)
		if !ok {
			return nil, ErrTaskNotFound
		}
		updated, err := c.api.ToggleComplete(shareCtx, numericID, current.Completed)
		if err != nil {
			return nil, err
		}
		t := viewmodel.FromAPI(*updated)
		if err := c.replace(t, epoch); err != nil {
			return nil, err
		}
		return t, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return viewmodel.Task{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		logger.Warn("Controller: Не удалось переключить задачу", zap.String("task_id", id), zap.Error(res.Err))
		return viewmodel.Task{}, res.Err
	}
	if res.Shared {
		logger.Debug("Controller: Переключение объединено", zap.String("task_id", id))
	}
	return res.Val.(viewmodel.Task), nil
}

// DeleteTask removes the task locally only after the service confirms.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	numericID, epoch, err := c.ensure(id)
	if err != nil {
		return err
	}

	unlock := c.locks.lock(id)
	defer unlock()

	if err := c.api.DeleteTask(ctx, numericID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrSessionChanged
	}
	for i, t := range c.tasks {
		if t.ID == id {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			break
		}
	}
	if c.selected == id {
		c.selected = ""
		if c.screen == ScreenDetail {
			c.screen = ScreenTasks
		}
	}
	return nil
}

// authenticated returns the current session epoch. The epoch is read before
// the gate so a sign-out racing with the check is always noticed later.
func (c *Controller) authenticated() (uint64, error) {
	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	if c.gate.State() != session.Authenticated {
		return 0, ErrNotAuthenticated
	}
	return epoch, nil
}

// ensure checks the session and that id is in the local list.
func (c *Controller) ensure(id string) (int64, uint64, error) {
	epoch, err := c.authenticated()
	if err != nil {
		return 0, 0, err
	}
	if _, ok := c.Task(id); !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return numericID, epoch, nil
}

func (c *Controller) replace(t viewmodel.Task, epoch uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return ErrSessionChanged
	}
	for i := range c.tasks {
		if c.tasks[i].ID == t.ID {
			c.tasks[i] = t
			return nil
		}
	}
	return nil
}

func (c *Controller) ActiveTasks() []viewmodel.Task {
	return c.filter(func(t viewmodel.Task) bool { return !t.Completed })
}

func (c *Controller) CompletedTasks() []viewmodel.Task {
	return c.filter(func(t viewmodel.Task) bool { return t.Completed })
}

func (c *Controller) Tasks() []viewmodel.Task {
	return c.filter(func(viewmodel.Task) bool { return true })
}

func (c *Controller) filter(keep func(viewmodel.Task) bool) []viewmodel.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := []viewmodel.Task{}
	for _, t := range c.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Controller) Task(id string) (viewmodel.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return viewmodel.Task{}, false
}

// Calendar builds the month view. Alarm-only tasks land on today's date, and
// only while the current month is in view.
func (c *Controller) Calendar(m calendar.Month, selectedDay int) calendar.View {
	today := c.now()
	opts := calendar.PlaceOptions{}
	if m.Contains(today) {
		opts.AlarmFallbackDay = today.Day()
	}
	if selectedDay == 0 && m.Contains(today) {
		selectedDay = today.Day()
	}
	return calendar.NewView(c.Tasks(), m, today, selectedDay, opts)
}

func (c *Controller) Navigate(screen Screen) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = screen
}

// Select opens the detail screen for id.
func (c *Controller) Select(id string) error {
	if _, ok := c.Task(id); !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = id
	c.screen = ScreenDetail
	return nil
}

func (c *Controller) Screen() Screen {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.screen
}

func (c *Controller) Selected() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

func (c *Controller) Username() string {
	return c.gate.Session().Username
}

func (c *Controller) State() session.State {
	return c.gate.State()
}
