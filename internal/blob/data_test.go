package blob

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestDecodeData_PrefixedObject(t *testing.T) {
	res := DecodeData([]byte("\x00\x00\x01\x00{\"a\":1}"))
	if !res.HasJSON {
		t.Fatalf("expected JSON, preview %q", res.Preview)
	}
	if res.Preview != `{"a":1}` {
		t.Fatalf("Preview = %q", res.Preview)
	}
	want := map[string]any{"a": json.Number("1")}
	if !reflect.DeepEqual(res.JSON, want) {
		t.Fatalf("JSON = %#v, want %#v", res.JSON, want)
	}
}

func TestDecodeData_PrefixedArray(t *testing.T) {
	res := DecodeData([]byte("\x00\x03[\"a\",\"b\"]\n"))
	if !res.HasJSON {
		t.Fatal("expected JSON")
	}
	want := []any{"a", "b"}
	if !reflect.DeepEqual(res.JSON, want) {
		t.Fatalf("JSON = %#v", res.JSON)
	}
}

func TestDecodeData_RoundTrip(t *testing.T) {
	values := []any{
		map[string]any{"groups": []any{map[string]any{"id": "g1", "n": 3, "ok": true}}},
		[]any{"example.com", 1.25, nil, map[string]any{}},
		map[string]any{"theme": "dark", "version": "1.2.3", "nested": map[string]any{"x": []any{}}},
	}
	for _, x := range values {
		payload, err := json.Marshal(x)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		blob := append([]byte{0x00, 0x01, 0x02, 0x00}, payload...)
		res := DecodeData(blob)
		if !res.HasJSON {
			t.Fatalf("payload %s: no JSON", payload)
		}
		again, err := json.Marshal(res.JSON)
		if err != nil {
			t.Fatalf("re-marshal: %v", err)
		}
		if string(again) != string(payload) {
			t.Fatalf("round trip = %s, want %s", again, payload)
		}
	}
}

func TestDecodeData_BracketInNoise(t *testing.T) {
	blob := []byte("\x00[\x01{\"a\":1}")
	res := DecodeData(blob)
	if res.HasJSON {
		t.Fatal("expected parse failure")
	}
	if res.Preview != string(blob) {
		t.Fatalf("Preview = %q, want full text", res.Preview)
	}
}

func TestDecodeData_TrailingGarbageFails(t *testing.T) {
	res := DecodeData([]byte("\x00{\"a\":1}\x00\x00zz"))
	if res.HasJSON {
		t.Fatal("expected parse failure")
	}
}

func TestDecodeData_NoBracket(t *testing.T) {
	res := DecodeData([]byte("\x00plain text"))
	if res.HasJSON || res.Preview != "\x00plain text" {
		t.Fatalf("got %+v", res)
	}
}

func TestDecodeData_StringInput(t *testing.T) {
	res := DecodeData(`{"b":true}`)
	if !res.HasJSON || res.Preview != "" {
		t.Fatalf("got %+v", res)
	}
	if res := DecodeData("not json"); res.HasJSON || res.Preview != "" {
		t.Fatalf("got %+v", res)
	}
}

func TestDecodeData_Empty(t *testing.T) {
	for _, in := range []Input{nil, []byte{}, "", int64(3)} {
		if res := DecodeData(in); res != (DataResult{}) {
			t.Fatalf("DecodeData(%#v) = %+v, want zero", in, res)
		}
	}
}
