package routes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"github.com/zenrsr/form-craft/app"
	"github.com/zenrsr/form-craft/httpx"
	"github.com/zenrsr/form-craft/model"
	"github.com/zenrsr/form-craft/routes/middlewares"
	"github.com/zenrsr/form-craft/schema"
)

// decodeFormBody parses and normalizes a form document from the request,
// enforcing the save-time preconditions shared by create and update.
func decodeFormBody(r *http.Request) (model.Form, error) {
	form := model.Form{}
	err := render.DecodeJSON(r.Body, &form)
	if err != nil {
		return form, httpx.ValidationError("Invalid request body.")
	}
	if form.Title == "" || form.Fields == nil {
		return form, httpx.ValidationError("Invalid input. Title and fields are required.")
	}

	form.Fields, err = schema.Normalize(form.Fields)
	if err != nil {
		return form, httpx.ValidationError(err.Error())
	}
	if err := schema.ValidateForm(form); err != nil {
		return form, httpx.ValidationError(err.Error())
	}
	return form, nil
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := decodeFormBody(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		fieldsJson, err := json.Marshal(form.Fields)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.insert_form.encode_fields", err))
			return
		}

		urlId := uuid.Must(uuid.NewV4()).String()

		var formId int
		err = app.QueryRowContext(r.Context(), `
			INSERT INTO form (owner_id, title, description, fields, url_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`,
			middlewares.Username(r),
			form.Title,
			form.Description,
			string(fieldsJson),
			urlId,
			time.Now(),
		).Scan(&formId)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.insert_form", err))
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":    formId,
			"urlId": urlId,
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT f.id, f.title, f.description, f.url_id, f.created_at, f.fields, COUNT(s.id)
			FROM form f
			LEFT OUTER JOIN submission s ON (f.id = s.form_id)
			WHERE f.owner_id = ?
			GROUP BY f.id, f.title, f.description, f.url_id, f.created_at, f.fields
			ORDER BY f.created_at DESC`,
			middlewares.Username(r),
		)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.get_forms", err))
			return
		}
		defer rows.Close()

		forms := []model.FormSummary{}
		for rows.Next() {
			s := model.FormSummary{}
			var fieldsJson string
			err = rows.Scan(&s.ID, &s.Title, &s.Description, &s.URLID, &s.CreatedAt, &fieldsJson, &s.SubmissionCount)
			if err != nil {
				httpx.WriteError(w, r, httpx.InternalError("db.get_forms.scan", err))
				return
			}
			err = json.Unmarshal([]byte(fieldsJson), &s.Fields)
			if err != nil {
				httpx.WriteError(w, r, httpx.InternalError("db.get_forms.parse_fields", err))
				return
			}
			forms = append(forms, s)
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

// fetchForm loads one owner-scoped form.
func fetchForm(app app.App, r *http.Request, formId int) (model.Form, error) {
	form := model.Form{}
	var fieldsJson string
	err := app.QueryRowContext(r.Context(), `
		SELECT id, version, title, description, fields, url_id, created_at
		FROM form
		WHERE id = ? AND owner_id = ?`,
		formId,
		middlewares.Username(r),
	).Scan(&form.ID, &form.Version, &form.Title, &form.Description, &fieldsJson, &form.URLID, &form.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return form, httpx.NotFoundError("Form")
	}
	if err != nil {
		return form, httpx.InternalError("db.get_form", err)
	}

	err = json.Unmarshal([]byte(fieldsJson), &form.Fields)
	if err != nil {
		return form, httpx.InternalError("db.get_form.parse_fields", err)
	}
	return form, nil
}

func formIdParam(r *http.Request) (int, error) {
	formId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, httpx.ValidationError("Invalid form ID.")
	}
	return formId, nil
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := formIdParam(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		form, err := fetchForm(app, r, formId)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := formIdParam(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		form, err := decodeFormBody(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		fieldsJson, err := json.Marshal(form.Fields)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.update_form.encode_fields", err))
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.begin_tx", err))
			return
		}
		defer tx.Rollback()

		var exists bool
		err = tx.QueryRowContext(r.Context(), `
			SELECT 1 FROM form
			WHERE id = ? AND owner_id = ?`,
			formId,
			middlewares.Username(r),
		).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.WriteError(w, r, httpx.NotFoundError("Form"))
			return
		}
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.update_form.exists", err))
			return
		}

		res, err := tx.ExecContext(r.Context(), `
			UPDATE form
			SET
				title = ?,
				description = ?,
				fields = ?,
				version = version + 1
			WHERE	id = ?
				AND owner_id = ?
				AND version = ?`,
			form.Title,
			form.Description,
			string(fieldsJson),
			formId,
			middlewares.Username(r),
			form.Version,
		)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.update_form", err))
			return
		}
		// optimistic lock
		n, err := res.RowsAffected()
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.update_form.verify", err))
			return
		}
		if n < 1 {
			httpx.WriteError(w, r, httpx.ConflictError("The form was modified by someone else. Reload and retry."))
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.update_form.commit", err))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := formIdParam(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		// submissions go with the form via the cascading foreign key
		res, err := app.ExecContext(r.Context(), `
			DELETE FROM form
			WHERE id = ? AND owner_id = ?`,
			formId,
			middlewares.Username(r),
		)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.delete_form", err))
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.delete_form.verify", err))
			return
		}
		if n < 1 {
			httpx.WriteError(w, r, httpx.NotFoundError("Form"))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func RenderForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := formIdParam(r)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		form, err := fetchForm(app, r, formId)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}

		ctx := schema.PreviewContext
		if r.URL.Query().Get("mode") == "editor" {
			ctx = schema.EditorContext
		}

		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write([]byte(schema.RenderForm(form, ctx)))
	}
}

type formSubmissions struct {
	FormID      int                `json:"formId"`
	FormTitle   string             `json:"formTitle"`
	Submissions []model.Submission `json:"submissions"`
}

func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT f.id, f.title, s.id, s.email, s.responses, s.created_at
			FROM form f
			LEFT OUTER JOIN submission s ON (f.id = s.form_id)
			WHERE f.owner_id = ?
			ORDER BY f.created_at DESC, s.created_at`,
			middlewares.Username(r),
		)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.get_submissions", err))
			return
		}
		defer rows.Close()

		grouped := []formSubmissions{}
		for rows.Next() {
			var formId int
			var formTitle string
			var subId, email, responses sql.NullString
			var createdAt sql.NullTime
			err = rows.Scan(&formId, &formTitle, &subId, &email, &responses, &createdAt)
			if err != nil {
				httpx.WriteError(w, r, httpx.InternalError("db.get_submissions.scan", err))
				return
			}

			lastIdx := len(grouped) - 1
			if lastIdx < 0 || grouped[lastIdx].FormID != formId {
				grouped = append(grouped, formSubmissions{
					FormID:      formId,
					FormTitle:   formTitle,
					Submissions: []model.Submission{},
				})
				lastIdx++
			}

			if !subId.Valid {
				// form without submissions yet
				continue
			}

			sub := model.Submission{
				ID:        subId.String,
				FormID:    formId,
				Email:     email.String,
				CreatedAt: createdAt.Time,
			}
			err = json.Unmarshal([]byte(responses.String), &sub.Responses)
			if err != nil {
				httpx.WriteError(w, r, httpx.InternalError("db.get_submissions.parse_responses", err))
				return
			}
			grouped[lastIdx].Submissions = append(grouped[lastIdx].Submissions, sub)
		}

		render.JSON(w, r, grouped)
	}
}
