package worker

import (
	"context"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule fires once a minute, the resolution of an alarm.
const DefaultSchedule = "* * * * *"

type AlarmSource interface {
	ListWithAlarms(context.Context) ([]*task.Task, error)
}

type Notifier interface {
	Notify(ctx context.Context, t *task.Task) error
}

// LogNotifier writes each reminder to the service log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, t *task.Task) error {
	logger.Info("Worker: Напоминание",
		zap.Int64("user_id", t.UserID),
		zap.Int64("task_id", t.ID),
		zap.String("title", t.Title),
		zap.String("alarm_time", *t.AlarmTime))
	return nil
}

type AlarmWorker struct {
	repo     AlarmSource
	notifier Notifier
	schedule string
	location *time.Location
	cron     *cron.Cron
}

func NewAlarmWorker(repo AlarmSource, notifier Notifier, schedule string, location *time.Location) *AlarmWorker {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if location == nil {
		location = time.Local
	}
	return &AlarmWorker{
		repo:     repo,
		notifier: notifier,
		schedule: schedule,
		location: location,
	}
}

// Start registers the check with cron and returns once scheduling is running.
// The scheduler stops when ctx is done or Stop is called.
func (w *AlarmWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(w.location))
	if _, err := c.AddFunc(w.schedule, func() {
		w.Check(ctx, time.Now().In(w.location))
	}); err != nil {
		return fmt.Errorf("расписание напоминаний %q: %w", w.schedule, err)
	}
	w.cron = c
	c.Start()
	logger.Info("Worker: Напоминания запущены", zap.String("schedule", w.schedule))

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

func (w *AlarmWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	logger.Info("Worker: Напоминания остановлены")
}

// Check notifies every open task whose alarm is set to now's minute and which
// is due on now's day. It returns the number of reminders sent.
func (w *AlarmWorker) Check(ctx context.Context, now time.Time) int {
	start := time.Now()

	tasks, err := w.repo.ListWithAlarms(ctx)
	if err != nil {
		logger.Warn("Worker: Ошибка получения задач", zap.Error(err))
		return 0
	}

	minute := now.Format(task.AlarmLayout)
	sent := 0
	for _, t := range tasks {
		if t.IsCompleted || !t.HasAlarm() || *t.AlarmTime != minute {
			continue
		}
		if !DueToday(t, now) {
			continue
		}
		if err := w.notifier.Notify(ctx, t); err != nil {
			logger.Warn("Worker: Ошибка отправки напоминания", zap.Int64("task_id", t.ID), zap.Error(err))
			continue
		}
		sent++
	}

	logger.Debug("Worker: Проверка напоминаний завершена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("sent", sent))
	return sent
}

// DueToday reports whether an alarm on t should ring on day: a matching repeat
// day, a due date equal to day, or no date constraint at all.
func DueToday(t *task.Task, day time.Time) bool {
	if len(t.RepeatDays) > 0 && t.RepeatsOn(day.Weekday()) {
		return true
	}
	if t.DueDate != nil {
		return t.DueOn(day)
	}
	return len(t.RepeatDays) == 0
}
