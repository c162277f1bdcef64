package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/zenrsr/form-craft/app"
	"github.com/zenrsr/form-craft/httpx"
	"github.com/zenrsr/form-craft/model"
	"github.com/zenrsr/form-craft/schema"
)

// fetchSharedForm loads a form by its public sharing token. No owner
// scoping: the token itself is the capability.
func fetchSharedForm(app app.App, r *http.Request, urlId string) (model.Form, error) {
	form := model.Form{}
	var fieldsJson string
	err := app.QueryRowContext(r.Context(), `
		SELECT id, title, description, fields, url_id
		FROM form
		WHERE url_id = ?`,
		urlId,
	).Scan(&form.ID, &form.Title, &form.Description, &fieldsJson, &form.URLID)
	if errors.Is(err, sql.ErrNoRows) {
		return form, httpx.NotFoundError("Form")
	}
	if err != nil {
		return form, httpx.InternalError("db.get_shared_form", err)
	}

	err = json.Unmarshal([]byte(fieldsJson), &form.Fields)
	if err != nil {
		return form, httpx.InternalError("db.get_shared_form.parse_fields", err)
	}
	return form, nil
}

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := fetchSharedForm(app, r, chi.URLParam(r, "urlId"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		// respondents never see internal ids or versions
		form.ID = 0
		form.Version = 0
		render.JSON(w, r, form)
	}
}

// PublicFormPage renders the shared form as a standalone HTML page.
func PublicFormPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := fetchSharedForm(app, r, chi.URLParam(r, "urlId"))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(`<!doctype html><html><head><title>` + html.EscapeString(form.Title) + `</title></head><body>`))
		w.Write([]byte(`<form method="POST" action="/api/forms/submit" data-url-id="` + html.EscapeString(form.URLID) + `">`))
		w.Write([]byte(schema.RenderForm(form, schema.PublicContext)))
		w.Write([]byte(`<button type="submit">Submit</button></form></body></html>`))
	}
}

func SubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URLID string `json:"urlId"`
			// kept raw so the stored document preserves the client's key order
			Responses json.RawMessage `json:"responses"`
		}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.WriteError(w, r, httpx.ValidationError("Invalid request body."))
			return
		}
		if body.URLID == "" || len(body.Responses) == 0 {
			httpx.WriteError(w, r, httpx.ValidationError("Invalid request: Form ID and responses are required."))
			return
		}

		responses := map[string]any{}
		err = json.Unmarshal(body.Responses, &responses)
		if err != nil {
			httpx.WriteError(w, r, httpx.ValidationError("Invalid request: responses must be an object."))
			return
		}

		form, err := fetchSharedForm(app, r, body.URLID)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		if errs := schema.ValidateResponses(form.Fields, responses); len(errs) > 0 {
			httpx.WriteError(w, r, httpx.FieldValidationError(errs))
			return
		}

		email, ok := schema.EmailValue(form.Fields, responses)
		if !ok {
			httpx.WriteError(w, r, httpx.ValidationError("Submission requires a valid email field."))
			return
		}

		submissionId := uuid.Must(uuid.NewV4()).String()
		_, err = app.ExecContext(r.Context(), `
			INSERT INTO submission (id, form_id, email, responses, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			submissionId,
			form.ID,
			email,
			string(body.Responses),
			time.Now(),
		)
		if err != nil {
			// the unique (form_id, email) index decides duplicates
			var sqlErr sqlite3.Error
			if errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique {
				httpx.WriteError(w, r, httpx.DuplicateSubmissionError())
				return
			}
			httpx.WriteError(w, r, httpx.InternalError("db.insert_submission", err))
			return
		}

		render.JSON(w, r, map[string]any{
			"id":      submissionId,
			"message": "Form submitted successfully.",
		})
	}
}
