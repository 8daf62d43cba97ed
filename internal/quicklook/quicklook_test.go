package quicklook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Text("a")
	var _ Value = Int(1)
	var _ Value = Uint(1)
	var _ Value = Float(1)
	var _ Value = Double(1)
	var _ Value = Bool(true)
	var _ Value = URL("https://example.com")
	var _ Value = Rectangle{}
	var _ Value = Point{}
	var _ Value = Size{}
	var _ Value = Range{}
	var _ Value = Image{}
	var _ Value = Sound{}
	var _ Value = Color{}
	var _ Value = BezierPath{}
	var _ Value = AttributedString{}
	var _ Value = View{}
	var _ Value = Sprite{}
	var _ Value = Raw{}
}

func TestMarshal(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"text", Text("hello"), `{"kind":"text","value":"hello"}`},
		{"int", Int(-4), `{"kind":"int","value":-4}`},
		{"bool", Bool(true), `{"kind":"bool","value":true}`},
		{"point", Point{X: 1, Y: 2}, `{"kind":"point","value":{"x":1,"y":2}}`},
		{"range", Range{Location: 3, Length: 4}, `{"kind":"range","value":{"length":4,"location":3}}`},
		{"raw", Raw{Data: []byte("hi"), Tag: "utf8"}, `{"kind":"raw","value":{"data":"aGk=","tag":"utf8"}}`},
		{"color", Color{Object: "red"}, `{"kind":"color","value":"red"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var env struct {
				Kind string `json:"kind"`
			}
			require.NoError(t, json.Unmarshal(data, &env))
			assert.Equal(t, tt.value.Kind(), env.Kind)
		})
	}
}

func TestMarshalNil(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	assert.Equal(t, `text("x")`, String(Text("x")))
	assert.Equal(t, "int(3)", String(Int(3)))
	assert.Equal(t, "point(1, 2)", String(Point{X: 1, Y: 2}))
	assert.Equal(t, "raw(2 bytes, png)", String(Raw{Data: []byte{1, 2}, Tag: "png"}))
	assert.Equal(t, "sprite", String(Sprite{}))
	assert.Equal(t, "<none>", String(nil))
}
