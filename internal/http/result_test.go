package httpapi

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultEnvelopeJSON(t *testing.T) {
	b, err := json.Marshal(Ok(map[string]int{"total_foods": 3}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":2000,"type":"success","message":"ok","result":{"total_foods":3}}`, string(b))

	b, err = json.Marshal(Fail("patient not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":-1,"type":"error","message":"patient not found","result":null}`, string(b))

	b, err = json.Marshal(failWith(ResultError, "validation failed", map[string]string{"title": "is required"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":-1,"type":"error","message":"validation failed","result":{"title":"is required"}}`, string(b))
}
