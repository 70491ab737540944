package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	ID string `json:"_id"`
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "data envelope", body: `{"data": [{"_id": "a"}, {"_id": "b"}]}`, want: 2},
		{name: "named envelope", body: `{"students": [{"_id": "a"}]}`, want: 1},
		{name: "bare array", body: ` [{"_id": "a"}]`, want: 1},
		{name: "data wins", body: `{"data": [], "students": [{"_id": "a"}]}`, want: 0},
		{name: "data not a list", body: `{"data": {"_id": "a"}, "students": [{"_id": "b"}]}`, want: 1},
		{name: "empty body", body: "", want: 0},
		{name: "unknown shape", body: `{"items": [{"_id": "a"}]}`, want: 0},
		{name: "garbage", body: `<html>`, want: 0},
		{name: "malformed element", body: `{"data": [{"_id": 1}]}`, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeList[item]([]byte(tc.body), "students")
			assert.NotNil(t, got)
			assert.Len(t, got, tc.want)
		})
	}
}

func TestDecodeOne(t *testing.T) {
	assert.Equal(t, "a", decodeOne[item]([]byte(`{"data": {"_id": "a"}}`)).ID)
	assert.Equal(t, "b", decodeOne[item]([]byte(`{"_id": "b"}`)).ID)
	assert.Empty(t, decodeOne[item]([]byte(`[1]`)).ID)
	assert.Empty(t, decodeOne[item](nil).ID)
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Xato", messageOf([]byte(`{"message": "Xato"}`)))
	assert.Equal(t, "Boshqa", messageOf([]byte(`{"message": "", "error": "Boshqa"}`)))
	assert.Empty(t, messageOf([]byte(`{"message": 42}`)))
	assert.Empty(t, messageOf([]byte(`Internal Server Error`)))
}

func TestFirstString(t *testing.T) {
	body := []byte(`{"data": {"image": "https://cdn/x.jpg"}}`)
	assert.Equal(t, "https://cdn/x.jpg", firstString(body, []interface{}{"image"}, []interface{}{"data", "image"}))
	assert.Empty(t, firstString(body, []interface{}{"imageUrl"}))
}

func TestDecodeMap(t *testing.T) {
	assert.Equal(t, "x", decodeMap([]byte(`{"message": "x"}`))["message"])
	assert.Empty(t, decodeMap([]byte(`oops`)))
	assert.NotNil(t, decodeMap([]byte(`null`)))
}
