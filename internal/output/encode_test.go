package output

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	Skip  string   `json:"-"`
	Ratio float64  `json:"ratio,omitempty"`
}

func TestEncodeDeterministic(t *testing.T) {
	v := map[string]interface{}{
		"zebra": 1,
		"alpha": 2,
		"mid":   []int{3, 2, 1},
	}
	a, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("encodes differ:\n%s\n%s", a, b)
	}
	// json.Marshal sorts map keys.
	if want := `{"alpha":2,"mid":[3,2,1],"zebra":1}`; string(a) != want {
		t.Errorf("encoded = %s, want %s", a, want)
	}
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	got, err := Encode(sample{Name: "x", Skip: "hidden"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s := string(got)
	if strings.Contains(s, "count") || strings.Contains(s, "tags") {
		t.Errorf("omitempty fields present: %s", s)
	}
	if strings.Contains(s, "hidden") {
		t.Errorf("json:\"-\" field present: %s", s)
	}
}

func TestEncodeRoundsFloats(t *testing.T) {
	got, err := Encode(sample{Name: "x", Ratio: 0.123456789})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(string(got), "0.123457") {
		t.Errorf("float not rounded: %s", got)
	}
}

func TestEncodeNilPointer(t *testing.T) {
	var p *sample
	got, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(got) != "null" {
		t.Errorf("nil pointer = %s, want null", got)
	}
}

func TestEncodeNoHTMLEscaping(t *testing.T) {
	got, err := Encode(map[string]string{"op": "a<b"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.Contains(string(got), `<`) {
		t.Errorf("html-escaped output: %s", got)
	}
}

func TestEncodeIndented(t *testing.T) {
	got, err := EncodeIndented(sample{Name: "x", Count: 2})
	if err != nil {
		t.Fatalf("EncodeIndented: %v", err)
	}
	if !strings.Contains(string(got), "\n  ") {
		t.Errorf("not indented: %s", got)
	}
}
