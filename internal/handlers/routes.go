package handlers

import (
	"net/http"

	"taskBoard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// Mount registers the REST api on r. Task routes accept both the bare and
// the trailing slash form of every path.
func Mount(r chi.Router, tasks *TaskHandler, auth *AuthHandler, authenticator middleware.Authenticator, media http.Handler) {
	r.Get("/health", tasks.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/login/", auth.Login)
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/register/", auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(authenticator))

			r.Get("/todos", tasks.ListTasks)
			r.Get("/todos/", tasks.ListTasks)
			r.Post("/todos", tasks.PostTask)
			r.Post("/todos/", tasks.PostTask)

			for _, pattern := range []string{"/todos/{id}", "/todos/{id}/"} {
				r.Get(pattern, tasks.GetTask)
				r.Patch(pattern, tasks.PatchTask)
				r.Delete(pattern, tasks.DeleteTask)
			}
		})
	})

	if media != nil {
		r.Handle("/media/photos/*", http.StripPrefix("/media/photos", media))
	}
}
