package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"brandwatch/internal/db"
	"brandwatch/internal/models"
)

// badParam is a query or path parameter that failed to parse.
type badParam struct {
	name string
	msg  string
}

func (e *badParam) Error() string {
	return e.name + ": " + e.msg
}

// paramError answers a parse failure with a 400 naming the parameter.
func paramError(c fiber.Ctx, err error) error {
	var bp *badParam
	if errors.As(err, &bp) {
		return jsonErrorDetails(c, fiber.StatusBadRequest, "invalid "+bp.name, map[string]string{bp.name: bp.msg})
	}
	return jsonError(c, fiber.StatusBadRequest, err.Error())
}

func pathID(c fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &badParam{name: name, msg: "must be a valid UUID"}
	}
	return id, nil
}

// pageParams reads the 1-based page query parameter.
func pageParams(c fiber.Ctx) (int, db.Page, error) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, db.Page{}, &badParam{name: "page", msg: "must be a positive integer"}
		}
		page = n
	}
	return page, db.Page{Limit: PageSize, Offset: (page - 1) * PageSize}, nil
}

func brandParam(c fiber.Ctx) (*uuid.UUID, error) {
	raw := c.Query("brand")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &badParam{name: "brand", msg: "must be a valid UUID"}
	}
	return &id, nil
}

func dateParams(c fiber.Ctx) (models.DateRange, error) {
	r := models.DateRange{Start: c.Query("start_date"), End: c.Query("end_date")}
	for _, p := range [...]struct{ name, value string }{{"start_date", r.Start}, {"end_date", r.End}} {
		if p.value == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, p.value); err != nil {
			return r, &badParam{name: p.name, msg: "must be a date in YYYY-MM-DD format"}
		}
	}
	return r, nil
}

func rankingFilter(c fiber.Ctx) (db.RankingFilter, error) {
	brand, err := brandParam(c)
	if err != nil {
		return db.RankingFilter{}, err
	}
	dates, err := dateParams(c)
	if err != nil {
		return db.RankingFilter{}, err
	}
	return db.RankingFilter{BrandID: brand, Keyword: c.Query("keyword"), Dates: dates}, nil
}

func citationFilter(c fiber.Ctx) (db.CitationFilter, error) {
	brand, err := brandParam(c)
	if err != nil {
		return db.CitationFilter{}, err
	}
	dates, err := dateParams(c)
	if err != nil {
		return db.CitationFilter{}, err
	}
	f := db.CitationFilter{BrandID: brand, AIModel: c.Query("ai_model"), Dates: dates}
	if raw := c.Query("mentioned"); raw != "" {
		m, err := strconv.ParseBool(raw)
		if err != nil {
			return db.CitationFilter{}, &badParam{name: "mentioned", msg: "must be true or false"}
		}
		f.Mentioned = &m
	}
	return f, nil
}

func reviewFilter(c fiber.Ctx) (db.ReviewFilter, error) {
	brand, err := brandParam(c)
	if err != nil {
		return db.ReviewFilter{}, err
	}
	dates, err := dateParams(c)
	if err != nil {
		return db.ReviewFilter{}, err
	}
	return db.ReviewFilter{BrandID: brand, Platform: c.Query("platform"), Dates: dates}, nil
}
