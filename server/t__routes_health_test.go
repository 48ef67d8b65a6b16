package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestHealthcheck(t *testing.T) {
	assert := assert.New(t)
	viper.Set("ENV", "local")
	t.Cleanup(func() { viper.Set("ENV", "") })

	ts := newTestServer(t, stubLedger{})

	resp, err := http.Get(ts.URL + "/alive")
	assert.Nil(err)
	defer resp.Body.Close()
	assertValidJSONResponse(assert, resp)

	body := healthcheckResponse{}
	assert.Nil(json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal("storefront operational", body.Message)
	assert.Equal("local", body.Env)
}
