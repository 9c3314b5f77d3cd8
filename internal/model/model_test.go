package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"

	errs "github.com/atikulmunna/grokline/internal/errors"
)

func TestFieldMapSorted(t *testing.T) {
	m := NewFieldMap(map[string]string{"verb": "GET", "client": "10.0.0.1", "bytes": "512"})

	assert.Equal(t, []string{"bytes", "client", "verb"}, m.Names())
	assert.Equal(t, []string{"512", "10.0.0.1", "GET"}, m.Values())
	assert.Equal(t, 3, m.Len())

	v, ok := m.Get("client")
	assert.True(t, ok)
	assert.Equal(t, "10.0.0.1", v)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestFieldMapCopies(t *testing.T) {
	m := NewFieldMap(map[string]string{"a": "1"})
	fields := m.Fields()
	fields[0].Value = "changed"

	v, _ := m.Get("a")
	assert.Equal(t, "1", v)
}

func TestFieldMapMarshalJSONOrder(t *testing.T) {
	m := NewFieldMap(map[string]string{"z": "last", "a": `quote " and \ slash`, "m": "<tag>"})

	out, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":"quote \" and \\ slash","m":"<tag>","z":"last"}`, string(out))

	v, err := fastjson.ParseBytes(out)
	require.NoError(t, err)
	obj, err := v.Object()
	require.NoError(t, err)

	got := map[string]string{}
	obj.Visit(func(key []byte, val *fastjson.Value) {
		got[string(key)] = string(val.GetStringBytes())
	})
	assert.Equal(t, m.Map(), got)
}

func TestFieldMapMarshalJSONEmpty(t *testing.T) {
	out, err := json.Marshal(NewFieldMap(nil))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}

func TestFieldMapMarshalJSONInvalidUTF8(t *testing.T) {
	m := NewFieldMap(map[string]string{"msg": "bad \xff byte"})

	_, err := json.Marshal(m)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInvalidUTF8)
}

func TestOutcome(t *testing.T) {
	ok := Matched(NewFieldMap(map[string]string{"a": "1"}))
	assert.True(t, ok.Matched())
	assert.NoError(t, ok.Err())
	assert.Equal(t, 1, ok.Fields().Len())

	failed := Failed(ReasonNoMatch, "garbage line \r\n")
	assert.False(t, failed.Matched())
	assert.Equal(t, ReasonNoMatch, failed.Reason())
	assert.Equal(t, "garbage line \r\n", failed.Raw())
	assert.Equal(t, `no match against data: "garbage line"`, failed.String())
	assert.True(t, errs.Is(failed.Err(), errs.KindNoMatch))
	assert.False(t, errs.IsFatal(failed.Err()))
}

func TestOutcomeKeepsLineVerbatim(t *testing.T) {
	failed := Failed(ReasonNoMatch, "say \"hi\"\tnow\n")
	assert.Equal(t, "no match against data: \"say \"hi\"\tnow\"", failed.String())
}

func TestOutcomeMatcherFailure(t *testing.T) {
	failed := Failed("regexp: bad capture", "some line")
	assert.Equal(t, `regexp: bad capture against data: "some line"`, failed.String())
	assert.True(t, errs.Is(failed.Err(), errs.KindExtract))
	assert.False(t, errs.Is(failed.Err(), errs.KindNoMatch))
	assert.False(t, errs.IsFatal(failed.Err()))
}
