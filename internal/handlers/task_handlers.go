package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultMaxUpload = 10 << 20
	formMemory       = 4 << 20
)

type TaskHandler struct {
	TaskService TaskService
	MediaPrefix string
	MaxUpload   int64
}

func NewTaskHandler(taskService TaskService, mediaPrefix string, maxUpload int64) *TaskHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &TaskHandler{
		TaskService: taskService,
		MediaPrefix: strings.TrimSuffix(mediaPrefix, "/"),
		MaxUpload:   maxUpload,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Сервис нездоров", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "taskboard"),
		)
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "taskboard"),
		toPayload("time", time.Now().UTC().Format(time.RFC3339)),
	)
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	tasks, err := s.TaskService.ListTasks(r.Context(), userID)
	if err != nil {
		handleError(w, r, err, "list_tasks")
		return
	}

	logger.Debug("HTTP: Задачи получены", zap.Int64("user_id", userID), zap.Int("count", len(tasks)))
	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, s.MediaPrefix))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUpload)

	var (
		in  service.CreateTaskInput
		err error
	)
	switch mediaType(r) {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		in, err = s.readForm(r)
	case "application/json":
		in, err = readCreateJSON(r)
	default:
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType,
			"Content-Type must be multipart/form-data or application/json", codeUnsupported)
		return
	}
	if err != nil {
		var businessErr *service.BusinessError
		if errors.As(err, &businessErr) {
			handleError(w, r, err, "create_task")
			return
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responseWithError(w, http.StatusRequestEntityTooLarge, "request body too large", codeBadRequest)
			return
		}
		logger.Warn("HTTP: Ошибка чтения тела запроса", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid request body", codeBadRequest)
		return
	}
	if in.Photo != nil {
		if closer, ok := in.Photo.Content.(interface{ Close() error }); ok {
			defer closer.Close()
		}
	}

	created, err := s.TaskService.CreateTask(r.Context(), userID, in)
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, dto.FromTask(created, s.MediaPrefix))
}

func (s *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), userID, id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTask(found, s.MediaPrefix))
}

func (s *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if mt := mediaType(r); mt != "application/json" {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", mt))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", codeUnsupported)
		return
	}

	defer r.Body.Close()
	patch, err := dto.DecodePatch(r.Body)
	if err != nil {
		var businessErr *service.BusinessError
		if errors.As(err, &businessErr) {
			handleError(w, r, err, "update_task")
			return
		}
		logger.Warn("HTTP: Ошибка чтения JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid JSON body", codeBadRequest)
		return
	}

	if patch.Empty() {
		found, err := s.TaskService.GetTask(r.Context(), userID, id)
		if err != nil {
			handleError(w, r, err, "update_task")
			return
		}
		responseWithBody(w, http.StatusOK, dto.FromTask(found, s.MediaPrefix))
		return
	}

	options, err := patch.Options()
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), userID, id, options...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", updated.ID),
		zap.Int("http_status", http.StatusOK))
	responseWithBody(w, http.StatusOK, dto.FromTask(updated, s.MediaPrefix))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), userID, id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.Int64("task_id", id),
		zap.Int("http_status", http.StatusNoContent))
	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) caller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, middleware.ErrNoUser.Error(), service.CodeUnauthorized)
		return 0, false
	}
	return userID, true
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid task id", codeBadRequest)
		return 0, false
	}
	return id, true
}

func (s *TaskHandler) readForm(r *http.Request) (service.CreateTaskInput, error) {
	var in service.CreateTaskInput

	if mediaType(r) == "multipart/form-data" {
		if err := r.ParseMultipartForm(formMemory); err != nil {
			return in, err
		}
	} else if err := r.ParseForm(); err != nil {
		return in, err
	}

	req := dto.CreateTaskRequest{
		Title:     r.FormValue("title"),
		Details:   r.FormValue("details"),
		AlarmTime: r.FormValue("alarm_time"),
		DueDate:   r.FormValue("due_date"),
	}
	if raw := strings.TrimSpace(r.FormValue("repeat_days")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.RepeatDays); err != nil {
			return in, service.NewValidationError("repeat_days", "expected a JSON array of day names")
		}
	}
	if err := validateRequest(req); err != nil {
		return in, err
	}
	in = toCreateInput(req)

	if r.MultipartForm != nil {
		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
			in.Photo = &service.PhotoUpload{Filename: header.Filename, Content: file}
		case errors.Is(err, http.ErrMissingFile):
		default:
			return in, err
		}
	}
	return in, nil
}

func readCreateJSON(r *http.Request) (service.CreateTaskInput, error) {
	defer r.Body.Close()

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.CreateTaskInput{}, err
	}
	if err := validateRequest(req); err != nil {
		return service.CreateTaskInput{}, err
	}
	return toCreateInput(req), nil
}

func toCreateInput(req dto.CreateTaskRequest) service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:      req.Title,
		Details:    req.Details,
		AlarmTime:  req.AlarmTime,
		RepeatDays: req.RepeatDays,
		DueDate:    req.DueDate,
	}
}
