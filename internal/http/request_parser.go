package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"pocketbook/internal/core"
	"pocketbook/internal/form"
)

const maxBodyBytes = 1 << 16

// selectedMonth reads the month query parameter. An absent parameter
// selects the current month; an empty one selects every month.
func selectedMonth(r *http.Request, current core.YearMonth) (core.YearMonth, error) {
	values, present := r.URL.Query()["month"]
	if !present {
		return current, nil
	}
	raw := strings.TrimSpace(values[0])
	if raw == "" {
		return core.YearMonth{}, nil
	}
	return core.ParseYearMonth(raw)
}

// looseString accepts a JSON string or number, so the widget may send the
// amount either way. Numbers are rewritten in plain decimal notation, so
// 1e2 arrives as 100.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("number %s: %w", n, err)
	}
	*s = looseString(d.String())
	return nil
}

type submitRequest struct {
	Type        looseString `json:"type"`
	Amount      looseString `json:"amount"`
	Category    looseString `json:"category"`
	Date        looseString `json:"date"`
	Description looseString `json:"description"`
}

// parseForm reads the transaction form from a JSON or url-encoded body.
func parseForm(w http.ResponseWriter, r *http.Request) (form.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return form.Form{}, fmt.Errorf("parse form: %w", err)
		}
		return form.Form{
			Type:        r.PostForm.Get("type"),
			Amount:      r.PostForm.Get("amount"),
			Category:    r.PostForm.Get("category"),
			Date:        r.PostForm.Get("date"),
			Description: r.PostForm.Get("description"),
		}, nil
	}

	var req submitRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		return form.Form{}, fmt.Errorf("decode body: %w", err)
	}
	return form.Form{
		Type:        string(req.Type),
		Amount:      string(req.Amount),
		Category:    string(req.Category),
		Date:        string(req.Date),
		Description: string(req.Description),
	}, nil
}
