package utils

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

type PageMeta struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

func JSONPage(ctx iris.Context, data interface{}, page, perPage int, total int64) {
	ctx.JSON(iris.Map{
		"data":  data,
		"meta":  PageMeta{Page: page, PerPage: perPage, Total: total},
		"links": iris.Map{},
	})
}

func JSONError(ctx iris.Context, status int, code, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"error": code, "message": message})
}

// RedirectWithMessage sends the guest to a safe page with a human-readable
// status message. Raw error detail never travels through here.
func RedirectWithMessage(ctx iris.Context, path, kind, message string) {
	q := url.Values{}
	q.Set("message", message)
	q.Set("messageType", kind)
	ctx.Redirect(path+"?"+q.Encode(), iris.StatusSeeOther)
}

// HandleValidationErrors turns ctx.ReadJSON validation failures into a 422
// with per-field detail.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]iris.Map, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, iris.Map{
				"field": e.Field(),
				"tag":   e.Tag(),
			})
		}
		ctx.StatusCode(iris.StatusUnprocessableEntity)
		ctx.JSON(iris.Map{"error": "validation", "fields": fields})
		return
	}
	ctx.StatusCode(iris.StatusBadRequest)
	ctx.JSON(iris.Map{"error": "invalid_payload", "message": "invalid request payload"})
}
