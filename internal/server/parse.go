package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/atikulmunna/grokline/internal/aggregator"
	errs "github.com/atikulmunna/grokline/internal/errors"
	"github.com/atikulmunna/grokline/internal/model"
	"github.com/atikulmunna/grokline/internal/source"
)

// result is the wire form of one Outcome.
type result struct {
	Fields *model.FieldMap `json:"fields,omitempty"`
	Error  string          `json:"error,omitempty"`
	Raw    string          `json:"raw,omitempty"`
}

type parseResponse struct {
	Results []result         `json:"results"`
	Stats   aggregator.Stats `json:"stats"`
}

func toResult(o model.Outcome) result {
	if !o.Matched() {
		return result{Error: o.String(), Raw: o.Raw()}
	}
	fields := o.Fields()
	if _, err := fields.MarshalJSON(); err != nil {
		return result{Error: errs.Serialization("render json", err).Error()}
	}
	return result{Fields: &fields}
}

// handleParse runs every line of the request body through the extractor.
// The body is a JSON array of strings, a JSON object {"lines": [...]}, or
// plain text with one line per row.
func (s *Server) handleParse(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var lines []string
	if c.ContentType() == "application/json" {
		lines, err = s.decodeJSONLines(body)
	} else {
		lines, err = splitLines(body)
	}
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"error": err,
		}).Debug("rejected parse request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stats aggregator.Stats
	results := make([]result, 0, len(lines))
	for _, line := range lines {
		o := s.extractor.Extract(line, &stats)
		s.metrics.observe(o)
		results = append(results, toResult(o))
	}

	c.JSON(http.StatusOK, parseResponse{Results: results, Stats: stats})
}

func (s *Server) decodeJSONLines(body []byte) ([]string, error) {
	p := s.parsers.Get()
	defer s.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	var items []*fastjson.Value
	switch v.Type() {
	case fastjson.TypeArray:
		items, _ = v.Array()
	case fastjson.TypeObject:
		lv := v.Get("lines")
		if lv == nil {
			return nil, errors.New(`missing "lines" array`)
		}
		if items, err = lv.Array(); err != nil {
			return nil, fmt.Errorf(`"lines": %w`, err)
		}
	default:
		return nil, fmt.Errorf("expected array or object, got %s", v.Type())
	}

	lines := make([]string, 0, len(items))
	for i, item := range items {
		b, err := item.StringBytes()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		lines = append(lines, string(b))
	}
	return lines, nil
}

// splitLines splits a text body the same way the console source reads stdin.
func splitLines(body []byte) ([]string, error) {
	src := source.NewConsole(bytes.NewReader(body))
	var lines []string
	for {
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
}
