package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tair/wishlist-service/internal/wishlist/domain"
)

var (
	errMissingName  = errors.New("product name is missing")
	errMissingPrice = errors.New("product price is missing")
)

// productPayload is the catalog JSON keyed by field. Only name and price are
// mandatory; every other field is decoded on its own and falls back to its
// zero value when absent or of an unexpected type.
type productPayload map[string]json.RawMessage

func parseProduct(data string) (*domain.ProductDetails, error) {
	var p productPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decode product payload: %w", err)
	}

	name := p.text("name")
	if name == "" {
		return nil, errMissingName
	}
	price, ok := p.number("price")
	if !ok || price == 0 {
		return nil, errMissingPrice
	}
	if price < 0 || price > domain.MaxPrice {
		return nil, fmt.Errorf("product price %v out of range", price)
	}

	stock := 0
	if n, ok := p.number("totalStock"); ok && n > 0 {
		stock = int(n)
	}

	return &domain.ProductDetails{
		Name:        name,
		Price:       price,
		Images:      p.images(),
		Category:    p.text("category"),
		Description: p.text("description"),
		Variants:    arrayOrEmpty(p["variants"]),
		TotalStock:  stock,
		Reviews:     arrayOrEmpty(p["reviews"]),
	}, nil
}

// text returns the field when it is a JSON string, "" otherwise
func (p productPayload) text(key string) string {
	var s string
	if err := json.Unmarshal(p[key], &s); err != nil {
		return ""
	}
	return s
}

// number returns the field when it is a JSON number
func (p productPayload) number(key string) (float64, bool) {
	raw := bytes.TrimSpace(p[key])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

// images takes the first usable of images, url and image
func (p productPayload) images() []string {
	for _, key := range []string{"images", "url", "image"} {
		if imgs := stringList(p[key]); len(imgs) > 0 {
			return imgs
		}
	}
	return []string{}
}

// stringList accepts either a JSON string or a list of strings
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one == "" {
			return nil
		}
		return []string{one}
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		out := many[:0]
		for _, s := range many {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// arrayOrEmpty keeps a JSON array verbatim and replaces anything else with []
func arrayOrEmpty(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return json.RawMessage("[]")
	}
	return append(json.RawMessage(nil), trimmed...)
}
