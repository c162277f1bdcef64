package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zenrsr/form-craft/app"
	"github.com/zenrsr/form-craft/codec"
	"github.com/zenrsr/form-craft/httpx"
	"github.com/zenrsr/form-craft/model"
	"github.com/zenrsr/form-craft/routes/middlewares"
)

// ExportSubmission streams one submission as a CSV file. The join on the
// form's owner keeps exports scoped to the caller.
func ExportSubmission(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionId := chi.URLParam(r, "id")

		sub := model.Submission{}
		var responsesJson string
		err := app.QueryRowContext(r.Context(), `
			SELECT s.id, s.form_id, s.email, s.responses, s.created_at
			FROM submission s
			INNER JOIN form f ON (f.id = s.form_id)
			WHERE s.id = ? AND f.owner_id = ?`,
			submissionId,
			middlewares.Username(r),
		).Scan(&sub.ID, &sub.FormID, &sub.Email, &responsesJson, &sub.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.WriteError(w, r, httpx.NotFoundError("Submission"))
			return
		}
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("db.get_submission", err))
			return
		}

		record, err := codec.Export(sub, []byte(responsesJson))
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("export.encode", err))
			return
		}

		w.Header().Set("content-type", "text/csv; charset=utf-8")
		w.Header().Set("content-disposition", `attachment; filename="submission_`+sub.ID+`.csv"`)
		err = codec.WriteCSV(w, record)
		if err != nil {
			httpx.WriteError(w, r, httpx.InternalError("export.write", err))
		}
	}
}
