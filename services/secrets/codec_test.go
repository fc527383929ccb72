package secrets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"
)

func decode(t *testing.T, blob datatypes.JSON) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &out))
	return out
}

func TestUnmaskEncryptedExtra_MaskedFieldKeepsStoredValue(t *testing.T) {
	stored := datatypes.JSON(`{"password":"s3cret","account":"acme"}`)
	masked := `{"password":"` + PasswordMask + `","account":"acme-eu"}`

	merged := decode(t, UnmaskEncryptedExtra(stored, masked))

	assert.Equal(t, "s3cret", merged["password"])
	assert.Equal(t, "acme-eu", merged["account"])
}

func TestUnmaskEncryptedExtra_NestedObjects(t *testing.T) {
	stored := datatypes.JSON(`{"credentials":{"token":"tok-1","region":"eu"}}`)
	masked := `{"credentials":{"token":"` + PasswordMask + `","region":"us"}}`

	merged := decode(t, UnmaskEncryptedExtra(stored, masked))

	credentials := merged["credentials"].(map[string]interface{})
	assert.Equal(t, "tok-1", credentials["token"])
	assert.Equal(t, "us", credentials["region"])
}

func TestUnmaskEncryptedExtra_MaskWithNoStoredValuePassesThrough(t *testing.T) {
	merged := decode(t, UnmaskEncryptedExtra(nil, `{"password":"`+PasswordMask+`"}`))

	assert.Equal(t, PasswordMask, merged["password"])
}

func TestUnmaskEncryptedExtra_AbsentPayloadKeepsStoredBlob(t *testing.T) {
	stored := datatypes.JSON(`{"password":"s3cret"}`)

	assert.Equal(t, stored, UnmaskEncryptedExtra(stored, ""))
}

func TestUnmaskEncryptedExtra_MalformedPayloadIsOpaque(t *testing.T) {
	stored := datatypes.JSON(`{"password":"s3cret"}`)

	out := UnmaskEncryptedExtra(stored, "not json at all")

	assert.Equal(t, datatypes.JSON("not json at all"), out)
}

func TestMaskEncryptedExtra_MasksEveryStringValue(t *testing.T) {
	stored := datatypes.JSON(`{"password":"s3cret","nested":{"token":"tok"},"port":3306}`)

	masked := decode(t, datatypes.JSON(MaskEncryptedExtra(stored)))

	assert.Equal(t, PasswordMask, masked["password"])
	assert.Equal(t, PasswordMask, masked["nested"].(map[string]interface{})["token"])
	assert.Equal(t, float64(3306), masked["port"])
}
