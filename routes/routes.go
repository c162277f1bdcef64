package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/zenrsr/form-craft/app"
	"github.com/zenrsr/form-craft/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	// public form page, reachable without a session
	root.Get("/share/{urlId}", PublicFormPage(app))

	// builder UI requires a session; anything else is public
	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Authenticated(app.Config)).
		Mount("/app", serveAppFiles("/app"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Post("/auth/signup", Signup(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	// public form access by sharing token
	api.Get("/share/{urlId}", PublicGetForm(app))
	api.Post("/forms/submit", SubmitForm(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.Config))

		// CRUD forms
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get(`/forms/{id:^\d+$}`, GetForm(app))
		r.Put(`/forms/{id:^\d+$}`, UpdateForm(app))
		r.Delete(`/forms/{id:^\d+$}`, DeleteForm(app))
		r.Get(`/forms/{id:^\d+$}/render`, RenderForm(app))

		r.Get("/submissions", ListSubmissions(app))
		r.Get("/submissions/{id}/export", ExportSubmission(app))
	})

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func serveAppFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
